package fsutil_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/pkg/fsutil"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	return string(got)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	writeFile(t, path, "# Notes")

	text, snap, err := fsutil.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if text != "# Notes" {
		t.Errorf("text = %q, want %q", text, "# Notes")
	}
	if snap.Size != 7 || snap.Mode.Perm() != 0o600 {
		t.Errorf("snapshot = %+v", snap)
	}

	if _, _, err := fsutil.Load(context.Background(), filepath.Join(dir, "missing.md")); !errors.Is(err, fsutil.ErrNotFound) {
		t.Errorf("missing file error = %v, want ErrNotFound", err)
	}
	if _, _, err := fsutil.Load(context.Background(), dir); !errors.Is(err, fsutil.ErrIsDirectory) {
		t.Errorf("directory error = %v, want ErrIsDirectory", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := fsutil.Load(ctx, path); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled error = %v, want context.Canceled", err)
	}
}

func TestSnapshotChanged(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "notes.md")
	writeFile(t, path, "abc")

	_, snap, err := fsutil.Load(ctx, path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if changed, err := snap.Changed(ctx); err != nil || changed {
		t.Fatalf("Changed() = %v, %v; want false", changed, err)
	}

	writeFile(t, path, "xyz")
	if changed, err := snap.Changed(ctx); err != nil || !changed {
		t.Errorf("same-size rewrite: Changed() = %v, %v; want true", changed, err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if changed, err := snap.Changed(ctx); err != nil || !changed {
		t.Errorf("deleted: Changed() = %v, %v; want true", changed, err)
	}
}

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	t.Run("writes new file with default mode", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "new.md")
		if err := fsutil.WriteAtomic(context.Background(), path, []byte("hello"), 0); err != nil {
			t.Fatalf("WriteAtomic() error = %v", err)
		}
		if got := readFile(t, path); got != "hello" {
			t.Errorf("content = %q, want %q", got, "hello")
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != fsutil.DefaultFileMode {
			t.Errorf("mode = %v, want %v", info.Mode().Perm(), fsutil.DefaultFileMode)
		}
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "doc.md")
		writeFile(t, path, "old")
		if err := fsutil.WriteAtomic(context.Background(), path, []byte("new"), 0o600); err != nil {
			t.Fatalf("WriteAtomic() error = %v", err)
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("directory has %d entries, want 1", len(entries))
		}
	})

	t.Run("fails for missing directory", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "missing", "doc.md")
		if err := fsutil.WriteAtomic(context.Background(), path, []byte("x"), 0); err == nil {
			t.Error("WriteAtomic() error = nil, want error")
		}
	})
}

func TestBackupAndRestore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "doc.md")
	writeFile(t, path, "original")

	created, err := fsutil.Backup(ctx, path)
	if err != nil || !created {
		t.Fatalf("Backup() = %v, %v; want true", created, err)
	}
	writeFile(t, path, "edited")

	created, err = fsutil.Backup(ctx, path)
	if err != nil || created {
		t.Fatalf("second Backup() = %v, %v; want false", created, err)
	}
	if got := readFile(t, fsutil.BackupPath(path)); got != "original" {
		t.Errorf("backup = %q, want %q", got, "original")
	}

	restored, err := fsutil.Restore(ctx, path)
	if err != nil || !restored {
		t.Fatalf("Restore() = %v, %v; want true", restored, err)
	}
	if got := readFile(t, path); got != "original" {
		t.Errorf("restored = %q, want %q", got, "original")
	}
	if _, err := os.Stat(fsutil.BackupPath(path)); !os.IsNotExist(err) {
		t.Errorf("backup still present: %v", err)
	}

	restored, err = fsutil.Restore(ctx, path)
	if err != nil || restored {
		t.Errorf("Restore() without backup = %v, %v; want false", restored, err)
	}
}

func TestSaver(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "doc.md")
	writeFile(t, path, "a")

	_, snap, err := fsutil.Load(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	saver := fsutil.NewSaver(path, snap, fsutil.SaverOptions{Backup: true, Logger: logging.Discard()})

	if err := saver.Save(ctx, "a"); err != nil {
		t.Fatalf("Save(unchanged) error = %v", err)
	}
	if saver.Writes() != 0 {
		t.Errorf("Writes() = %d after unchanged save, want 0", saver.Writes())
	}

	for _, text := range []string{"ab", "abc"} {
		if err := saver.Save(ctx, text); err != nil {
			t.Fatalf("Save(%q) error = %v", text, err)
		}
	}
	if got := readFile(t, path); got != "abc" {
		t.Errorf("content = %q, want %q", got, "abc")
	}
	if got := readFile(t, fsutil.BackupPath(path)); got != "a" {
		t.Errorf("backup = %q, want %q", got, "a")
	}
	if saver.Writes() != 2 {
		t.Errorf("Writes() = %d, want 2", saver.Writes())
	}

	writeFile(t, path, "changed elsewhere")
	if err := saver.Save(ctx, "abcd"); !errors.Is(err, fsutil.ErrConflict) {
		t.Errorf("Save() after external edit error = %v, want ErrConflict", err)
	}
	if got := readFile(t, path); got != "changed elsewhere" {
		t.Errorf("content = %q, conflict must not overwrite", got)
	}
}

func TestSaverForceAndNewFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "new.md")

	saver := fsutil.NewSaver(path, nil, fsutil.SaverOptions{Force: true, Logger: logging.Discard()})
	if err := saver.Save(ctx, "first"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	writeFile(t, path, "other")
	if err := saver.Save(ctx, "second"); err != nil {
		t.Fatalf("forced Save() error = %v", err)
	}
	if got := readFile(t, path); got != "second" {
		t.Errorf("content = %q, want %q", got, "second")
	}
}
