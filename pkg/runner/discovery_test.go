package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdtablefix/pkg/runner"
)

func makeTree(t *testing.T, files ...string) string {
	t.Helper()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	for _, f := range files {
		path := filepath.Join(dir, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("# "+f+"\n"), 0o600))
	}
	return dir
}

func rel(t *testing.T, dir string, files []string) []string {
	t.Helper()

	out := make([]string, len(files))
	for i, f := range files {
		r, err := filepath.Rel(dir, f)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(r)
	}
	return out
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	tree := []string{
		"README.md",
		"docs/guide.md",
		"docs/api.markdown",
		"docs/UPPER.MD",
		"docs/drafts/wip.md",
		"vendor/lib/README.md",
		".github/PULL_REQUEST_TEMPLATE.md",
		"docs/.hidden.md",
		"src/main.go",
		"notes.txt",
	}

	tests := []struct {
		name  string
		paths []string
		opts  runner.Options
		want  []string
	}{
		{
			name: "whole tree",
			want: []string{
				"README.md",
				"docs/UPPER.MD",
				"docs/api.markdown",
				"docs/drafts/wip.md",
				"docs/guide.md",
				"vendor/lib/README.md",
			},
		},
		{
			name:  "subdirectory",
			paths: []string{"docs/drafts"},
			want:  []string{"docs/drafts/wip.md"},
		},
		{
			name:  "single file",
			paths: []string{"docs/guide.md"},
			want:  []string{"docs/guide.md"},
		},
		{
			name:  "non-markdown file",
			paths: []string{"notes.txt"},
			want:  []string{},
		},
		{
			name:  "hidden file named directly",
			paths: []string{"docs/.hidden.md"},
			want:  []string{"docs/.hidden.md"},
		},
		{
			name:  "overlapping paths",
			paths: []string{"docs", "docs/guide.md", "."},
			opts:  runner.Options{Ignore: []string{"vendor/**"}},
			want: []string{
				"README.md",
				"docs/UPPER.MD",
				"docs/api.markdown",
				"docs/drafts/wip.md",
				"docs/guide.md",
			},
		},
		{
			name:  "ignore directory anywhere",
			paths: []string{"."},
			opts:  runner.Options{Ignore: []string{"**/drafts", "vendor"}},
			want:  []string{"README.md", "docs/UPPER.MD", "docs/api.markdown", "docs/guide.md"},
		},
		{
			name:  "ignore by base name",
			paths: []string{"."},
			opts:  runner.Options{Ignore: []string{"README.md", "*.markdown"}},
			want:  []string{"docs/UPPER.MD", "docs/drafts/wip.md", "docs/guide.md"},
		},
		{
			name:  "custom extensions",
			paths: []string{"."},
			opts:  runner.Options{Extensions: []string{".markdown"}},
			want:  []string{"docs/api.markdown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := makeTree(t, tree...)
			opts := tt.opts
			opts.Paths = tt.paths
			opts.WorkingDir = dir

			files, err := runner.Discover(context.Background(), opts)
			require.NoError(t, err)
			if len(tt.want) == 0 {
				assert.Empty(t, files)
				return
			}
			assert.Equal(t, tt.want, rel(t, dir, files))
			for _, f := range files {
				assert.True(t, filepath.IsAbs(f))
			}
		})
	}
}

func TestDiscoverMissingPath(t *testing.T) {
	t.Parallel()

	_, err := runner.Discover(context.Background(), runner.Options{
		Paths:      []string{"missing"},
		WorkingDir: t.TempDir(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stat missing")
}

func TestDiscoverCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Discover(ctx, runner.Options{WorkingDir: makeTree(t, "a.md")})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDiscoverSymlinks(t *testing.T) {
	t.Parallel()

	dir := makeTree(t, "docs/a.md", "shared/b.md")
	require.NoError(t, os.Symlink(filepath.Join(dir, "shared"), filepath.Join(dir, "docs", "linked")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "docs", "a.md"), filepath.Join(dir, "docs", "alias.md")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "nowhere.md"), filepath.Join(dir, "docs", "broken.md")))

	opts := runner.Options{Paths: []string{"docs"}, WorkingDir: dir}

	files, err := runner.Discover(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/a.md", "docs/alias.md"}, rel(t, dir, files))

	opts.FollowSymlinks = true
	files, err = runner.Discover(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/a.md", "docs/alias.md", "shared/b.md"}, rel(t, dir, files))
}

func TestDefaultExtensions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{".md", ".markdown"}, runner.DefaultExtensions())
}
