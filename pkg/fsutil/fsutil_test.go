package fsutil_test

import (
	"context"
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdtablefix/pkg/fsutil"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.md")
	writeFile(t, path, "| a |\n")

	content, info, err := fsutil.ReadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "| a |\n", string(content))
	assert.Equal(t, path, info.Path)
	assert.Equal(t, int64(6), info.Size)
	assert.Equal(t, os.FileMode(0o600), info.Mode.Perm())
	assert.Equal(t, sha256.Sum256(content), info.Hash)
}

func TestReadFileErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		ctx     func() context.Context
		wantErr error
	}{
		{name: "missing", path: filepath.Join(dir, "missing.md"), wantErr: fsutil.ErrNotFound},
		{name: "directory", path: dir, wantErr: fsutil.ErrIsDirectory},
		{
			name: "cancelled",
			path: filepath.Join(dir, "x.md"),
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			wantErr: context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			if tt.ctx != nil {
				ctx = tt.ctx()
			}
			_, info, err := fsutil.ReadFile(ctx, tt.path)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, info)
		})
	}
}

func TestCheckModified(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		change func(t *testing.T, path string)
		want   bool
	}{
		{name: "unchanged", change: func(*testing.T, string) {}},
		{
			name: "content and size",
			change: func(t *testing.T, path string) {
				t.Helper()
				writeFile(t, path, "something longer\n")
			},
			want: true,
		},
		{
			name: "same size, same mtime",
			change: func(t *testing.T, path string) {
				t.Helper()
				stat, err := os.Stat(path)
				require.NoError(t, err)
				writeFile(t, path, "ABCDE\n")
				require.NoError(t, os.Chtimes(path, stat.ModTime(), stat.ModTime()))
			},
			want: true,
		},
		{
			name: "deleted",
			change: func(t *testing.T, path string) {
				t.Helper()
				require.NoError(t, os.Remove(path))
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "a.md")
			writeFile(t, path, "abcde\n")

			_, info, err := fsutil.ReadFile(context.Background(), path)
			require.NoError(t, err)

			tt.change(t, path)

			modified, err := fsutil.CheckModified(context.Background(), info)
			require.NoError(t, err)
			assert.Equal(t, tt.want, modified)
		})
	}
}

func TestCheckModifiedQuickMissesSameSizeEdit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.md")
	writeFile(t, path, "abcde\n")

	_, info, err := fsutil.ReadFile(context.Background(), path)
	require.NoError(t, err)

	writeFile(t, path, "ABCDE\n")
	require.NoError(t, os.Chtimes(path, info.ModTime, info.ModTime))

	quick, err := fsutil.CheckModifiedQuick(context.Background(), info)
	require.NoError(t, err)
	assert.False(t, quick)

	strict, err := fsutil.CheckModified(context.Background(), info)
	require.NoError(t, err)
	assert.True(t, strict)
}

func TestCheckModifiedNilInfo(t *testing.T) {
	t.Parallel()

	_, err := fsutil.CheckModified(context.Background(), nil)
	require.ErrorIs(t, err, fsutil.ErrNilFileInfo)
	_, err = fsutil.CheckModifiedQuick(context.Background(), nil)
	require.ErrorIs(t, err, fsutil.ErrNilFileInfo)
}

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.md")
	writeFile(t, path, "old\n")

	require.NoError(t, fsutil.WriteAtomic(context.Background(), path, []byte("new\n"), 0o640))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(got))

	stat, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), stat.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestWriteAtomicDefaultMode(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "new.md")
	require.NoError(t, fsutil.WriteAtomic(context.Background(), path, []byte("x"), 0))

	stat, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, fsutil.DefaultFileMode, stat.Mode().Perm())
}

func TestWriteAtomicMissingDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nope", "a.md")
	require.Error(t, fsutil.WriteAtomic(context.Background(), path, []byte("x"), 0))
}

func TestWriteAtomicIfChanged(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.md")
	writeFile(t, path, "same\n")

	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(path, past, past))

	written, err := fsutil.WriteAtomicIfChanged(context.Background(), path, []byte("same\n"), 0)
	require.NoError(t, err)
	assert.False(t, written)

	stat, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, stat.ModTime().Equal(past))

	written, err = fsutil.WriteAtomicIfChanged(context.Background(), path, []byte("other\n"), 0)
	require.NoError(t, err)
	assert.True(t, written)

	fresh := filepath.Join(filepath.Dir(path), "fresh.md")
	written, err = fsutil.WriteAtomicIfChanged(context.Background(), fresh, []byte("x"), 0)
	require.NoError(t, err)
	assert.True(t, written)
}

func TestBackupPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "docs/a.md.bak", fsutil.BackupPath("docs/a.md", fsutil.DefaultBackupConfig()))
	assert.Equal(t, "a.md.bak", fsutil.BackupPath("a.md", fsutil.BackupConfig{}))
	assert.Equal(t, "a.md.orig", fsutil.BackupPath("a.md", fsutil.BackupConfig{Suffix: ".orig"}))
}

func TestCreateBackup(t *testing.T) {
	t.Parallel()

	cfg := fsutil.BackupConfig{Enabled: true, Suffix: ".bak"}

	t.Run("creates once", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "a.md")
		writeFile(t, path, "original\n")

		created, err := fsutil.CreateBackup(context.Background(), path, cfg)
		require.NoError(t, err)
		assert.True(t, created)

		writeFile(t, path, "fixed\n")
		created, err = fsutil.CreateBackup(context.Background(), path, cfg)
		require.NoError(t, err)
		assert.False(t, created)

		got, err := os.ReadFile(path + ".bak")
		require.NoError(t, err)
		assert.Equal(t, "original\n", string(got))
	})

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "a.md")
		writeFile(t, path, "x")

		created, err := fsutil.CreateBackup(context.Background(), path, fsutil.DefaultBackupConfig())
		require.NoError(t, err)
		assert.False(t, created)
		assert.NoFileExists(t, path+".bak")
	})

	t.Run("missing original", func(t *testing.T) {
		t.Parallel()

		created, err := fsutil.CreateBackup(context.Background(), filepath.Join(t.TempDir(), "gone.md"), cfg)
		require.NoError(t, err)
		assert.False(t, created)
	})
}
