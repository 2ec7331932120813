// Package config defines the configuration model for mdtablefix.
// These are plain data types; discovery and merging live in internal/configloader.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultMaxLineLength is the line length above which a row is reported
// under MD013 and bracketed with a suppression comment when fixed.
const DefaultMaxLineLength = 80

// DefaultJobs is the default number of concurrent file workers.
const DefaultJobs = 4

// DefaultGitHubURL is the REST endpoint used when none is configured.
const DefaultGitHubURL = "https://api.github.com"

// OutputFormat specifies how results are printed.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatDiff OutputFormat = "diff"
)

// IsValid reports whether f is a known format.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatText, FormatJSON, FormatDiff:
		return true
	default:
		return false
	}
}

// GitHubConfig controls the pull-request integration.
type GitHubConfig struct {
	// BaseURL is the REST API root.
	BaseURL string `yaml:"base_url"`

	// IncludeDrafts includes draft pull requests in organization scans.
	IncludeDrafts bool `yaml:"include_drafts"`

	// Comment posts a summary comment on pull requests that were fixed.
	Comment bool `yaml:"comment"`
}

// Config is the root configuration structure.
type Config struct {
	// MaxLineLength is the MD013 limit.
	MaxLineLength int `yaml:"max_line_length"`

	// Fix rewrites misformatted tables in place.
	Fix bool `yaml:"fix"`

	// DryRun computes fixes without writing them.
	DryRun bool `yaml:"dry_run"`

	// Format selects the reporter.
	Format OutputFormat `yaml:"format"`

	// Jobs is the number of concurrent workers. 0 means one per CPU.
	Jobs int `yaml:"jobs"`

	// Ignore holds glob patterns excluded from discovery.
	Ignore []string `yaml:"ignore"`

	// FailOnError makes the lint command exit non-zero while issues remain.
	FailOnError bool `yaml:"fail_on_error"`

	// Backups writes a .bak copy before a file is rewritten.
	Backups bool `yaml:"backups"`

	GitHub GitHubConfig `yaml:"github"`
}

// NewConfig returns a configuration populated with defaults.
func NewConfig() *Config {
	return &Config{
		MaxLineLength: DefaultMaxLineLength,
		Fix:           true,
		Format:        FormatText,
		Jobs:          DefaultJobs,
		FailOnError:   true,
		GitHub: GitHubConfig{
			BaseURL: DefaultGitHubURL,
			Comment: true,
		},
	}
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.MaxLineLength < 1 {
		return fmt.Errorf("max_line_length must be positive, got %d", c.MaxLineLength)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", c.Jobs)
	}
	if !c.Format.IsValid() {
		return fmt.Errorf("unknown format %q; valid formats: text, json, diff", c.Format)
	}
	if strings.TrimSpace(c.GitHub.BaseURL) == "" {
		return errors.New("github.base_url must not be empty")
	}
	return nil
}
