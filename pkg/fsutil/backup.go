package fsutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// DefaultBackupSuffix is appended to a file's path to name its backup.
const DefaultBackupSuffix = ".bak"

// BackupConfig controls the copy made before a file is rewritten.
type BackupConfig struct {
	Enabled bool

	// Suffix names the backup file. Empty means DefaultBackupSuffix.
	Suffix string
}

// DefaultBackupConfig has backups off.
func DefaultBackupConfig() BackupConfig {
	return BackupConfig{Suffix: DefaultBackupSuffix}
}

// BackupPath returns where the backup of path is written.
func BackupPath(path string, cfg BackupConfig) string {
	if cfg.Suffix == "" {
		return path + DefaultBackupSuffix
	}
	return path + cfg.Suffix
}

// CreateBackup copies path to its backup path and reports whether a copy was
// made. An existing backup is never overwritten, so it keeps the content from
// before the first fix.
func CreateBackup(ctx context.Context, path string, cfg BackupConfig) (bool, error) {
	if !cfg.Enabled {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("create backup: %w", err)
	}

	backup := BackupPath(path, cfg)
	if _, err := os.Stat(backup); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat backup: %w", err)
	}

	content, info, err := ReadFile(ctx, path)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("read original for backup: %w", err)
	}

	if err := WriteAtomic(ctx, backup, content, info.Mode); err != nil {
		return false, fmt.Errorf("write backup: %w", err)
	}
	return true, nil
}
