package runner_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/yaklabco/gomdedit/pkg/runner"
)

// upper reports files with lowercase text as changed and returns their
// uppercased content.
func upper(_ context.Context, path string) (runner.FileOutcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return runner.FileOutcome{}, err
	}
	out := strings.ToUpper(string(data))
	return runner.FileOutcome{Changed: out != string(data), Output: out}, nil
}

func TestRunner_Run_NoFiles(t *testing.T) {
	t.Parallel()

	result, err := runner.New(upper).Run(context.Background(), runner.Options{WorkingDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Files) != 0 || result.Stats.FilesDiscovered != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestRunner_Run_OrderAndStats(t *testing.T) {
	t.Parallel()

	dir := makeTree(t, "c.md", "a.md", "b/d.md")
	if err := os.WriteFile(filepath.Join(dir, "a.md"), []byte("# A.MD"), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	for _, jobs := range []int{1, 4} {
		result, err := runner.New(upper).Run(context.Background(), runner.Options{
			WorkingDir: dir,
			Paths:      []string{".", "missing.md"},
			Jobs:       jobs,
		})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		var got []string
		for _, f := range result.Files {
			got = append(got, filepath.Base(f.Path))
		}
		if strings.Join(got, " ") != "a.md d.md c.md missing.md" {
			t.Errorf("jobs=%d: order = %v", jobs, got)
		}

		stats := result.Stats
		if stats.FilesDiscovered != 4 || stats.FilesProcessed != 3 || stats.FilesChanged != 2 || stats.FilesErrored != 1 {
			t.Errorf("jobs=%d: stats = %+v", jobs, stats)
		}
		if errs := result.Errors(); len(errs) != 1 || !errors.Is(errs[0], os.ErrNotExist) {
			t.Errorf("jobs=%d: errors = %v", jobs, errs)
		}
		if result.Files[1].Output != "# B/D.MD" {
			t.Errorf("jobs=%d: output = %q", jobs, result.Files[1].Output)
		}
	}
}

func TestRunner_Run_Concurrent(t *testing.T) {
	t.Parallel()

	var names []string
	for i := range 20 {
		names = append(names, filepath.Join("docs", string(rune('a'+i))+".md"))
	}
	dir := makeTree(t, names...)

	var calls atomic.Int32
	task := func(ctx context.Context, path string) (runner.FileOutcome, error) {
		calls.Add(1)
		return upper(ctx, path)
	}

	result, err := runner.New(task).Run(context.Background(), runner.Options{WorkingDir: dir, Jobs: 8})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if calls.Load() != 20 || result.Stats.FilesProcessed != 20 {
		t.Errorf("calls = %d, processed = %d", calls.Load(), result.Stats.FilesProcessed)
	}
}

func TestRunner_Run_ContextCancellation(t *testing.T) {
	t.Parallel()

	dir := makeTree(t, "a.md", "b.md")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := runner.New(upper).Run(ctx, runner.Options{WorkingDir: dir}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
