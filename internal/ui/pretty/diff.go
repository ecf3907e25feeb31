package pretty

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const diffContextLines = 3

// FormatDiff renders a git-style unified diff from before to after, or ""
// when they are equal. path is shown relative to the working directory
// when possible.
func (s *Styles) FormatDiff(path, before, after string) (string, error) {
	if before == after {
		return "", nil
	}
	display := displayPath(path)

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(before),
		B:        splitLines(after),
		FromFile: "a/" + display,
		ToFile:   "b/" + display,
		Context:  diffContextLines,
	})
	if err != nil {
		return "", fmt.Errorf("diff %s: %w", path, err)
	}

	var builder strings.Builder
	builder.WriteString(s.DiffHeader.Render(fmt.Sprintf("diff --git a/%s b/%s", display, display)))
	builder.WriteString("\n")
	for line := range strings.Lines(diff) {
		line = strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			line = s.DiffHeader.Render(line)
		case strings.HasPrefix(line, "@@"):
			line = s.DiffHunk.Render(line)
		case strings.HasPrefix(line, "+"):
			line = s.DiffAdd.Render(line)
		case strings.HasPrefix(line, "-"):
			line = s.DiffRemove.Render(line)
		}
		builder.WriteString(line)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

// splitLines splits text after each newline, ending the last line with
// one when it has none.
func splitLines(text string) []string {
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	} else {
		lines[len(lines)-1] += "\n"
	}
	return lines
}

// displayPath returns path relative to the working directory when it lies
// inside it.
func displayPath(path string) string {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	if wd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(wd, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return strings.TrimPrefix(filepath.ToSlash(path), "/")
}
