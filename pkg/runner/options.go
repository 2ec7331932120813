// Package runner discovers Markdown files and runs them through the lint
// pipeline on a pool of workers.
package runner

import (
	"github.com/yaklabco/mdtablefix/pkg/config"
	"github.com/yaklabco/mdtablefix/pkg/lint"
)

// Options controls a run.
type Options struct {
	// Paths are files or directories to process. Empty means ".".
	Paths []string

	// WorkingDir resolves relative Paths and ignore globs. Empty means the
	// process working directory.
	WorkingDir string

	// Extensions are the lower-case Markdown extensions, leading dot included.
	// Empty means DefaultExtensions.
	Extensions []string

	// Ignore holds glob patterns, relative to WorkingDir, for files and
	// directories to skip.
	Ignore []string

	// FollowSymlinks walks symlinked directories.
	FollowSymlinks bool

	// Jobs is the number of workers. Zero or less means one per CPU.
	Jobs int

	// Pipeline controls per-file processing.
	Pipeline lint.PipelineOptions
}

// DefaultExtensions returns the recognised Markdown extensions.
func DefaultExtensions() []string {
	return []string{".md", ".markdown"}
}

// OptionsFromConfig maps the tool configuration onto run options.
func OptionsFromConfig(cfg *config.Config, paths []string) Options {
	opts := Options{
		Paths:    paths,
		Pipeline: lint.PipelineOptionsFromConfig(cfg),
	}
	if cfg != nil {
		opts.Jobs = cfg.Jobs
		opts.Ignore = cfg.Ignore
	}
	return opts
}

func (o Options) extensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

func (o Options) paths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}
