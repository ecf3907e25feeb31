// Package runner processes batches of Markdown files concurrently.
package runner

import (
	"fmt"

	"github.com/gobwas/glob"
)

// Options controls discovery and processing of a batch.
type Options struct {
	// Paths are the files or directories to process. Defaults to ".".
	Paths []string

	// WorkingDir resolves relative Paths and Exclude patterns. Defaults
	// to the process working directory.
	WorkingDir string

	// Extensions selects the files found inside directories (lowercase,
	// with leading dot). Files named in Paths are always processed.
	// Defaults to DefaultExtensions().
	Extensions []string

	// Exclude holds glob patterns, relative to WorkingDir, of files and
	// directories to skip. "**" crosses directory boundaries.
	Exclude []string

	// Jobs is the number of concurrent workers. 0 or negative means
	// runtime.NumCPU().
	Jobs int
}

// DefaultExtensions returns the default set of Markdown file extensions.
func DefaultExtensions() []string {
	return []string{".md", ".markdown"}
}

func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}

// compileExcludes compiles the exclude patterns with '/' as separator.
func compileExcludes(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}
