package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdtablefix/internal/logging"
	"github.com/yaklabco/mdtablefix/pkg/config"
)

// configFilePermissions is the mode of a generated config file.
const configFilePermissions = 0o644

// defaultConfigName is the file written by init.
const defaultConfigName = ".mdtablefix.yaml"

const configHeader = `# mdtablefix configuration.
# Every key is optional; absent keys keep their defaults.
# MDTABLEFIX_* environment variables and command-line flags override this file.
# Rule activation (MD013, MD060) is read from .markdownlint.* files instead.
`

type initFlags struct {
	force  bool
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default " + defaultConfigName,
		Long: `Write a ` + defaultConfigName + ` file holding the default settings, ready to edit.

An existing file is left alone unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "overwrite an existing file")
	cmd.Flags().StringVarP(&flags.output, "output", "o", defaultConfigName, "file to write")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	_, logger := commandContext(cmd, "info")

	path, err := filepath.Abs(flags.output)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil && !flags.force:
		return fmt.Errorf("%s already exists; use --force to overwrite", flags.output)
	case statErr == nil:
		logger.Warn("overwriting existing file", logging.FieldPath, flags.output)
	case !errors.Is(statErr, fs.ErrNotExist):
		return fmt.Errorf("check %s: %w", flags.output, statErr)
	}

	body, err := config.NewConfig().ToYAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append([]byte(configHeader), body...), configFilePermissions); err != nil {
		return fmt.Errorf("write %s: %w", flags.output, err)
	}

	logger.Info("created configuration file", logging.FieldPath, flags.output)
	return nil
}
