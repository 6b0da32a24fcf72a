package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/shelfview/internal/config"
	"github.com/rshade/shelfview/internal/logging"
)

// logger is the package-level logger for CLI operations; baseLogger is the
// same logger without the component field, for the packages the CLI wires up.
//
//nolint:gochecknoglobals // Required for zerolog context integration
var (
	logger     zerolog.Logger
	baseLogger zerolog.Logger
)

// annotationSkipConfig marks commands that must run even when config.yaml is broken.
const annotationSkipConfig = "shelfview/skip-config"

// NewRootCmd creates the root Cobra command for the shelfview CLI.
// It loads configuration, wires up logging and tracing, and registers the
// subcommands. Running it without a subcommand opens the library browser.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult

	browse := NewBrowseCmd()

	cmd := &cobra.Command{
		Use:     "shelfview",
		Short:   "Browse and manage an e-book library",
		Long:    "shelfview: browse your e-book library and inspect book metadata in the terminal",
		Version: ver,
		Example: rootCmdExample,
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}
			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return cleanupLogging(logResult)
		},
		RunE: browse.RunE,
	}
	cmd.SilenceUsage = true

	cmd.PersistentFlags().String("config", "", "path to config.yaml (default ~/.shelfview/config.yaml)")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging to stderr")
	cmd.PersistentFlags().Bool("plain", false, "plain text output, no interactive views")
	cmd.PersistentFlags().Bool("no-color", false, "disable colors")
	cmd.AddCommand(browse, NewShowCmd(), NewDeleteCmd(), NewAddCmd(), newCacheCmd(), newConfigCmd())

	return cmd
}

const rootCmdExample = `  # Open the library browser
  shelfview

  # Show the details of one book (hash or unique hash prefix)
  shelfview show 3f2a9c

  # Add an EPUB to the library
  shelfview add ~/Books/dune.epub

  # Delete a book without prompting
  shelfview delete 3f2a9c --yes

  # Print the library as plain text
  shelfview browse --plain

  # Initialize configuration
  shelfview config init`

// loadConfig reads config.yaml and makes it the process configuration.
func loadConfig(cmd *cobra.Command) error {
	if cmd.Annotations[annotationSkipConfig] == "true" {
		return nil
	}
	path := configPath(cmd)
	cfg, err := config.Load(path)
	if err != nil {
		return &ExitError{Code: ExitCodeConfig, Err: fmt.Errorf("loading configuration: %w", err)}
	}
	config.SetGlobalConfig(cfg)
	return nil
}

// configPath returns the --config flag or the default location.
func configPath(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path
	}
	return config.DefaultPath()
}

// newConfigCmd creates the config command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigValidateCmd())
	return cmd
}

// newCacheCmd creates the cache command group.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "Metadata cache commands"}
	cmd.AddCommand(NewCacheCleanCmd())
	return cmd
}
