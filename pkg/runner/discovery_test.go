package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/yaklabco/gomdedit/pkg/runner"
)

// makeTree creates files under dir and returns dir.
func makeTree(t *testing.T, files ...string) string {
	t.Helper()

	dir := t.TempDir()
	for _, f := range files {
		path := filepath.Join(dir, f)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("setup mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("# "+f), 0o600); err != nil {
			t.Fatalf("setup write: %v", err)
		}
	}
	return dir
}

func rel(t *testing.T, dir string, files []string) []string {
	t.Helper()

	out := make([]string, 0, len(files))
	for _, f := range files {
		r, err := filepath.Rel(dir, f)
		if err != nil {
			t.Fatalf("rel: %v", err)
		}
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	dir := makeTree(t,
		"readme.md",
		"docs/guide.md",
		"docs/api.markdown",
		"docs/vendor/skip.md",
		"src/main.go",
		"notes.txt",
		".hidden/secret.md",
		".draft.md",
	)

	tests := []struct {
		name string
		opts runner.Options
		want []string
	}{
		{
			name: "walks directory",
			opts: runner.Options{},
			want: []string{"docs/api.markdown", "docs/guide.md", "docs/vendor/skip.md", "readme.md"},
		},
		{
			name: "custom extensions",
			opts: runner.Options{Extensions: []string{".txt"}},
			want: []string{"notes.txt"},
		},
		{
			name: "exclude directory",
			opts: runner.Options{Exclude: []string{"**/vendor"}},
			want: []string{"docs/api.markdown", "docs/guide.md", "readme.md"},
		},
		{
			name: "exclude by base name",
			opts: runner.Options{Exclude: []string{"*.markdown"}},
			want: []string{"docs/guide.md", "docs/vendor/skip.md", "readme.md"},
		},
		{
			name: "explicit file bypasses filters",
			opts: runner.Options{Paths: []string{"notes.txt", "readme.md", "readme.md"}},
			want: []string{"notes.txt", "readme.md"},
		},
		{
			name: "missing file is kept",
			opts: runner.Options{Paths: []string{"gone.md"}},
			want: []string{"gone.md"},
		},
		{
			name: "several paths",
			opts: runner.Options{Paths: []string{"docs", "readme.md"}, Exclude: []string{"docs/vendor/**"}},
			want: []string{"docs/api.markdown", "docs/guide.md", "readme.md"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := tt.opts
			opts.WorkingDir = dir
			files, err := runner.Discover(context.Background(), opts)
			if err != nil {
				t.Fatalf("Discover() error = %v", err)
			}
			if got := rel(t, dir, files); !slices.Equal(got, tt.want) {
				t.Errorf("Discover() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiscover_BadPattern(t *testing.T) {
	t.Parallel()

	_, err := runner.Discover(context.Background(), runner.Options{
		WorkingDir: t.TempDir(),
		Exclude:    []string{"[unclosed"},
	})
	if err == nil {
		t.Fatal("expected error for malformed pattern")
	}
}

func TestDiscover_ContextCancellation(t *testing.T) {
	t.Parallel()

	dir := makeTree(t, "a.md")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := runner.Discover(ctx, runner.Options{WorkingDir: dir}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestDefaultExtensions(t *testing.T) {
	t.Parallel()

	if got := runner.DefaultExtensions(); !slices.Equal(got, []string{".md", ".markdown"}) {
		t.Errorf("DefaultExtensions() = %v", got)
	}
}
