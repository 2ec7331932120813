package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Discover returns the Markdown files under opts.Paths as sorted, absolute,
// de-duplicated paths. A path naming a file is returned as is when it has a
// Markdown extension and is not ignored; any other file yields nothing.
// Hidden directories below a walked root are skipped.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	d := &discoverer{opts: opts, workDir: workDir, exts: opts.extensions(), seen: make(map[string]bool)}

	for _, input := range opts.paths() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		path := input
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}
		path = filepath.Clean(path)

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", input, err)
		}
		if !info.IsDir() {
			d.add(path)
			continue
		}
		if err := d.walk(ctx, path); err != nil {
			return nil, err
		}
	}

	slices.Sort(d.files)
	return d.files, nil
}

type discoverer struct {
	opts    Options
	workDir string
	exts    []string
	seen    map[string]bool
	files   []string
}

func (d *discoverer) add(path string) {
	if d.seen[path] || !d.isMarkdown(path) || d.ignored(path) {
		return
	}
	d.seen[path] = true
	d.files = append(d.files, path)
}

func (d *discoverer) walk(ctx context.Context, root string) error {
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrPermission) {
				return nil
			}
			return walkErr
		}

		hidden := path != root && strings.HasPrefix(entry.Name(), ".")
		if entry.IsDir() {
			if hidden || d.ignored(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden {
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			return d.symlink(ctx, path)
		}
		d.add(path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk directory %s: %w", root, err)
	}
	return nil
}

// symlink adds a linked file, or walks a linked directory when
// FollowSymlinks is set. Broken links are skipped.
func (d *discoverer) symlink(ctx context.Context, path string) error {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil //nolint:nilerr // Broken links are skipped.
	}
	info, err := os.Stat(target)
	if err != nil {
		return nil //nolint:nilerr // Unreadable targets are skipped.
	}
	if !info.IsDir() {
		d.add(path)
		return nil
	}
	if !d.opts.FollowSymlinks {
		return nil
	}
	return d.walk(ctx, target)
}

func (d *discoverer) isMarkdown(path string) bool {
	return slices.Contains(d.exts, strings.ToLower(filepath.Ext(path)))
}

func (d *discoverer) ignored(path string) bool {
	rel, err := filepath.Rel(d.workDir, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range d.opts.Ignore {
		if matchGlob(rel, filepath.ToSlash(pattern)) {
			return true
		}
	}
	return false
}

func resolveWorkDir(dir string) (string, error) {
	if dir == "" {
		return os.Getwd()
	}
	return filepath.Abs(dir)
}

// matchGlob matches a slash-separated relative path against pattern.
//
// Supported forms:
//   - a path.Match pattern, tried against the whole path and its base name;
//   - "dir/**" for everything below dir;
//   - "**/name" for name at any depth;
//   - "**" for everything.
func matchGlob(path, pattern string) bool {
	switch {
	case pattern == "**":
		return true
	case strings.HasSuffix(pattern, "/**"):
		prefix := strings.TrimSuffix(pattern, "/**")
		if !strings.HasPrefix(prefix, "**/") {
			return path == prefix || strings.HasPrefix(path, prefix+"/") || matchAnyPrefix(path, prefix)
		}
		return matchAnyComponent(path, strings.TrimPrefix(prefix, "**/"))
	case strings.HasPrefix(pattern, "**/"):
		return matchAnyComponent(path, strings.TrimPrefix(pattern, "**/"))
	}

	if ok, _ := filepath.Match(pattern, path); ok {
		return true
	}
	ok, _ := filepath.Match(pattern, baseName(path))
	return ok
}

// matchAnyPrefix matches a wildcard prefix such as "docs/*" against the
// leading components of path.
func matchAnyPrefix(path, prefix string) bool {
	parts := strings.Split(path, "/")
	depth := strings.Count(prefix, "/") + 1
	if depth > len(parts) {
		return false
	}
	ok, _ := filepath.Match(prefix, strings.Join(parts[:depth], "/"))
	return ok
}

// matchAnyComponent reports whether name matches one component of path, or
// a run of trailing components when name has slashes.
func matchAnyComponent(path, name string) bool {
	parts := strings.Split(path, "/")
	width := strings.Count(name, "/") + 1
	for i := 0; i+width <= len(parts); i++ {
		if ok, _ := filepath.Match(name, strings.Join(parts[i:i+width], "/")); ok {
			return true
		}
	}
	return false
}

func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
