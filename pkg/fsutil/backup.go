package fsutil

import (
	"context"
	"fmt"
	"os"
)

// BackupSuffix is appended to a document path to name its backup.
const BackupSuffix = ".gomdedit.bak"

// BackupPath returns the sidecar backup path for path.
func BackupPath(path string) string {
	return path + BackupSuffix
}

// Backup copies path to its sidecar backup unless one already exists, so
// repeated sessions keep the oldest original. It reports whether a backup
// was written. A missing original is not an error.
func Backup(ctx context.Context, path string) (bool, error) {
	backupPath := BackupPath(path)
	if _, err := os.Stat(backupPath); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat backup path: %w", err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat original for backup: %w", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read original for backup: %w", err)
	}

	if err := WriteAtomic(ctx, backupPath, content, stat.Mode()); err != nil {
		return false, fmt.Errorf("write backup: %w", err)
	}
	return true, nil
}

// Restore puts the sidecar backup of path back in place and removes it.
// It reports whether a backup existed.
func Restore(ctx context.Context, path string) (bool, error) {
	backupPath := BackupPath(path)
	stat, err := os.Stat(backupPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat backup: %w", err)
	}
	content, err := os.ReadFile(backupPath)
	if err != nil {
		return false, fmt.Errorf("read backup: %w", err)
	}

	if err := WriteAtomic(ctx, path, content, stat.Mode()); err != nil {
		return false, fmt.Errorf("restore from backup: %w", err)
	}
	if err := os.Remove(backupPath); err != nil {
		return true, fmt.Errorf("remove backup: %w", err)
	}
	return true, nil
}
