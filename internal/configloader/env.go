package configloader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/yaklabco/mdtablefix/pkg/config"
)

// envVarPrefix is the prefix for all mdtablefix environment variables.
const envVarPrefix = "MDTABLEFIX_"

// envSetter applies one environment value to the configuration.
type envSetter func(cfg *config.Config, value string) error

// envMappings maps variable names (without prefix) to setters.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envSetter{
	"MAX_LINE_LENGTH": intSetter(func(c *config.Config, v int) { c.MaxLineLength = v }),
	"JOBS":            intSetter(func(c *config.Config, v int) { c.Jobs = v }),
	"FIX":             boolSetter(func(c *config.Config, v bool) { c.Fix = v }),
	"DRY_RUN":         boolSetter(func(c *config.Config, v bool) { c.DryRun = v }),
	"FAIL_ON_ERROR":   boolSetter(func(c *config.Config, v bool) { c.FailOnError = v }),
	"BACKUPS":         boolSetter(func(c *config.Config, v bool) { c.Backups = v }),
	"INCLUDE_DRAFTS":  boolSetter(func(c *config.Config, v bool) { c.GitHub.IncludeDrafts = v }),
	"FORMAT": func(c *config.Config, v string) error {
		c.Format = config.OutputFormat(strings.ToLower(v))
		return nil
	},
	"GITHUB_URL": func(c *config.Config, v string) error {
		c.GitHub.BaseURL = v
		return nil
	},
	"IGNORE": func(c *config.Config, v string) error {
		c.Ignore = parseSliceValue(v)
		return nil
	},
}

// LoadFromEnv applies MDTABLEFIX_* environment variables to cfg.
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for suffix, set := range envMappings {
		name := envVarPrefix + suffix
		value := os.Getenv(name)
		if value == "" {
			continue
		}
		if err := set(cfg, value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// EnvVarNames returns the supported variable names, for help output.
func EnvVarNames() []string {
	names := make([]string, 0, len(envMappings))
	for suffix := range envMappings {
		names = append(names, envVarPrefix+suffix)
	}
	return names
}

func intSetter(apply func(*config.Config, int)) envSetter {
	return func(cfg *config.Config, value string) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer %q: %w", value, err)
		}
		apply(cfg, n)
		return nil
	}
}

func boolSetter(apply func(*config.Config, bool)) envSetter {
	return func(cfg *config.Config, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q: %w", value, err)
		}
		apply(cfg, b)
		return nil
	}
}

// parseSliceValue splits a comma-separated list, dropping empty items.
func parseSliceValue(value string) []string {
	var out []string
	for part := range strings.SplitSeq(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
