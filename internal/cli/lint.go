package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdtablefix/internal/configloader"
	"github.com/yaklabco/mdtablefix/internal/logging"
	"github.com/yaklabco/mdtablefix/pkg/config"
	"github.com/yaklabco/mdtablefix/pkg/lint"
	"github.com/yaklabco/mdtablefix/pkg/reporter"
	"github.com/yaklabco/mdtablefix/pkg/runner"
)

// ErrIssuesFound is returned when table issues remain after a run with
// fail-on-error set. It carries no message worth logging; it only selects
// the exit code.
var ErrIssuesFound = errors.New("table issues found")

type lintFlags struct {
	logFlags

	fix           bool
	noFix         bool
	dryRun        bool
	format        string
	jobs          int
	maxLineLength int
	failOnError   bool
	ignore        []string
	backups       bool
	maxPerFile    int
}

func newLintCommand(global *globalFlags) *cobra.Command {
	flags := &lintFlags{}

	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Check and fix Markdown tables",
		Long: `Check the pipe tables of Markdown files and fix them in place.

With no paths, every .md and .markdown file under the current directory is
processed. Hidden directories are skipped.`,
		Example: `  mdtablefix lint                     # fix tables under the current directory
  mdtablefix lint docs/ README.md     # fix specific paths
  mdtablefix lint --no-fix            # report only
  mdtablefix lint --dry-run --format diff
  mdtablefix lint --format json -q`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, args, global, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.fix, "fix", true, "rewrite misformatted tables")
	cmd.Flags().BoolVar(&flags.noFix, "no-fix", false, "only report issues")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "compute fixes without writing them")
	cmd.Flags().StringVar(&flags.format, "format", string(config.FormatText), "output format: text, json, diff")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", config.DefaultJobs, "number of parallel workers (0 = one per CPU)")
	cmd.Flags().IntVarP(&flags.maxLineLength, "max-line-length", "l", config.DefaultMaxLineLength,
		"MD013 line length limit")
	cmd.Flags().BoolVar(&flags.failOnError, "fail-on-error", true, "exit 1 while issues remain")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to skip")
	cmd.Flags().BoolVar(&flags.backups, "backups", false, "write a .bak copy before rewriting a file")
	cmd.Flags().IntVar(&flags.maxPerFile, "max-per-file", 0, "list at most this many violations per file (0 = all)")
	cmd.MarkFlagsMutuallyExclusive("fix", "no-fix")
	flags.register(cmd)

	return cmd
}

// overrides applies the flags the user actually set, so config file and
// environment values survive flag defaults.
func (f *lintFlags) overrides(cmd *cobra.Command) func(*config.Config) {
	changed := cmd.Flags().Changed
	return func(cfg *config.Config) {
		if changed("fix") {
			cfg.Fix = f.fix
		}
		if changed("no-fix") && f.noFix {
			cfg.Fix = false
		}
		if changed("dry-run") {
			cfg.DryRun = f.dryRun
		}
		if changed("format") {
			cfg.Format = config.OutputFormat(f.format)
		}
		if changed("jobs") {
			cfg.Jobs = f.jobs
		}
		if changed("max-line-length") {
			cfg.MaxLineLength = f.maxLineLength
		}
		if changed("fail-on-error") {
			cfg.FailOnError = f.failOnError
		}
		if changed("ignore") {
			cfg.Ignore = append(cfg.Ignore, f.ignore...)
		}
		if changed("backups") {
			cfg.Backups = f.backups
		}
	}
}

func runLint(cmd *cobra.Command, args []string, global *globalFlags, flags *lintFlags) error {
	ctx, logger := commandContext(cmd, flags.level(global))

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	loaded, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: global.configPath,
		Overrides:    flags.overrides(cmd),
	})
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	cfg := loaded.Config

	if len(loaded.LoadedFrom) > 0 {
		logger.Debug("loaded configuration", logging.FieldConfig, loaded.LoadedFrom)
	}
	logger.Debug("configuration",
		logging.FieldFix, cfg.Fix,
		logging.FieldDryRun, cfg.DryRun,
		logging.FieldJobs, cfg.Jobs,
		logging.FieldMaxLineLength, cfg.MaxLineLength)

	format, err := reporter.ParseFormat(string(cfg.Format))
	if err != nil {
		return err
	}

	opts := runner.OptionsFromConfig(cfg, args)
	opts.WorkingDir = workDir
	opts.Extensions = runner.DefaultExtensions()

	logger.Debug("starting run", logging.FieldPaths, opts.Paths, logging.FieldWorkingDir, workDir)

	result, err := runner.New(lint.NewPipeline(configloader.NewResolver())).Run(ctx, opts)
	if err != nil {
		return fmt.Errorf("lint run failed: %w", err)
	}

	rep, err := reporter.New(reporter.Options{
		Writer:     cmd.OutOrStdout(),
		Format:     format,
		Color:      global.color,
		Quiet:      flags.quiet,
		Fixing:     cfg.Fix && !cfg.DryRun,
		MaxPerFile: flags.maxPerFile,
		WorkingDir: workDir,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}
	if _, err := rep.Report(ctx, result); err != nil {
		return fmt.Errorf("report results: %w", err)
	}

	if ExitCodeFromResult(result, cfg.FailOnError) != ExitSuccess {
		return ErrIssuesFound
	}
	return nil
}
