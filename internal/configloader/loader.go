// Package configloader resolves configuration for mdtablefix.
//
// Two independent kinds of configuration are handled here. The tool's own
// settings come from defaults, an optional .mdtablefix.yaml found by searching
// upward, MDTABLEFIX_* environment variables and command-line flags. Rule
// activation for MD013 and MD060 comes from markdownlint config files next to
// each Markdown file and is answered by a Resolver.
package configloader

import (
	"context"
	"fmt"
	"os"

	"github.com/yaklabco/mdtablefix/pkg/config"
)

// LoadOptions controls configuration loading behavior.
type LoadOptions struct {
	// WorkingDir is the directory to search from for project config.
	// Defaults to the current working directory if empty.
	WorkingDir string

	// ExplicitPath is a config file given with --config.
	// If set, project config discovery is skipped.
	ExplicitPath string

	// IgnoreProjectConfig skips project config discovery.
	IgnoreProjectConfig bool

	// IgnoreEnv skips environment variables.
	IgnoreEnv bool

	// Overrides applies command-line flags. It runs last.
	Overrides func(cfg *config.Config)
}

// LoadResult contains the resolved configuration and metadata.
type LoadResult struct {
	Config *config.Config

	// LoadedFrom lists the config files that were read, in order.
	LoadedFrom []string
}

// Load resolves the final configuration.
// Precedence (highest to lowest):
//  1. Overrides (CLI flags)
//  2. Environment variables (MDTABLEFIX_*)
//  3. Explicit or discovered project config file
//  4. Defaults
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	result := &LoadResult{Config: config.NewConfig()}

	path := opts.ExplicitPath
	if path == "" && !opts.IgnoreProjectConfig {
		found, err := FindProjectConfig(ctx, opts.WorkingDir)
		if err != nil {
			return nil, fmt.Errorf("discover project config: %w", err)
		}
		path = found
	}

	if path != "" {
		if err := applyConfigFile(result.Config, path); err != nil {
			return nil, err
		}
		result.LoadedFrom = append(result.LoadedFrom, path)
	}

	if !opts.IgnoreEnv {
		if err := LoadFromEnv(result.Config); err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
	}

	if opts.Overrides != nil {
		opts.Overrides(result.Config)
	}

	if err := result.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return result, nil
}

func applyConfigFile(cfg *config.Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := cfg.ApplyYAML(data); err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	return nil
}
