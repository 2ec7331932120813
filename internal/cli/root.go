// Package cli provides the Cobra command structure for mdtablefix.
package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/mdtablefix/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	debug      bool
	configPath string
	color      string
}

// NewRootCommand creates the root mdtablefix command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	global := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "mdtablefix",
		Short: "Check and fix the formatting of Markdown pipe tables",
		Long: `mdtablefix finds Markdown pipe tables whose pipes do not line up, whose
cells are padded inconsistently or whose separator rows are malformed, and
rewrites them in place.

Results follow markdownlint's MD060 (table column style) and MD013 (line
length) rules. Both honour .markdownlint.* configuration files and inline
markdownlint-disable comments. Tables left longer than the line limit after
fixing are wrapped in MD013 disable comments.

The github command applies the same fixes to open pull requests.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&global.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&global.configPath, "config", "", "path to a .mdtablefix.yaml config file")
	rootCmd.PersistentFlags().StringVar(&global.color, "color", "auto", "colorize output: auto, always, never")

	rootCmd.AddCommand(newLintCommand(global))
	rootCmd.AddCommand(newGitHubCommand(global))
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	NewHelpFormatter("auto", nil).ApplyToCommand(rootCmd)

	return rootCmd
}

// logFlags choose the log level of a subcommand.
type logFlags struct {
	verbose  bool
	quiet    bool
	logLevel string
}

func (f *logFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "enable verbose (debug) logging")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "only print errors and a one-line result")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")
}

// level resolves the flags to a level name. --debug and --verbose win over
// --quiet, which wins over --log-level.
func (f *logFlags) level(global *globalFlags) string {
	switch {
	case global.debug || f.verbose:
		return "debug"
	case f.quiet:
		return "error"
	default:
		return f.logLevel
	}
}

// commandContext returns the command's context carrying a logger that writes
// to the command's stderr.
func commandContext(cmd *cobra.Command, level string) (context.Context, *log.Logger) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), level)
	return logging.WithLogger(ctx, logger), logger
}
