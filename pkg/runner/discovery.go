package runner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// Discover expands opts.Paths into a sorted, deduplicated list of absolute
// file paths. Directories are walked for files with a matching extension,
// skipping hidden entries and excluded paths. Paths that name files, or do
// not exist, are kept as given so the caller reports them.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	excludes, err := compileExcludes(opts.Exclude)
	if err != nil {
		return nil, err
	}

	w := &walker{
		workDir:    workDir,
		extensions: opts.effectiveExtensions(),
		excludes:   excludes,
		seen:       make(map[string]struct{}),
	}

	for _, inputPath := range opts.effectivePaths() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		absPath := inputPath
		if !filepath.IsAbs(absPath) {
			absPath = filepath.Join(workDir, absPath)
		}
		absPath = filepath.Clean(absPath)

		info, err := os.Stat(absPath)
		if err != nil || !info.IsDir() {
			w.add(absPath)
			continue
		}
		if err := w.walk(ctx, absPath); err != nil {
			return nil, err
		}
	}

	slices.Sort(w.files)
	return w.files, nil
}

func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		return os.Getwd()
	}
	return filepath.Abs(workDir)
}

type walker struct {
	workDir    string
	extensions []string
	excludes   []glob.Glob
	seen       map[string]struct{}
	files      []string
}

func (w *walker) add(path string) {
	if _, ok := w.seen[path]; ok {
		return
	}
	w.seen[path] = struct{}{}
	w.files = append(w.files, path)
}

func (w *walker) walk(ctx context.Context, root string) error {
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}
		if path == root {
			return nil
		}

		hidden := strings.HasPrefix(entry.Name(), ".")
		if entry.IsDir() {
			if hidden || w.excluded(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden || !entry.Type().IsRegular() || !w.hasExtension(path) || w.excluded(path) {
			return nil
		}
		w.add(path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk directory %s: %w", root, err)
	}
	return nil
}

// excluded matches path, relative to the working directory, and its base
// name against the exclude patterns.
func (w *walker) excluded(path string) bool {
	rel, err := filepath.Rel(w.workDir, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	base := filepath.Base(path)
	for _, g := range w.excludes {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}

func (w *walker) hasExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(w.extensions, ext)
}
