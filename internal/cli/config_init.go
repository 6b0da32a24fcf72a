package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/shelfview/internal/config"
)

// NewConfigInitCmd creates the config init command for initializing configuration.
func NewConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates ~/.shelfview/config.yaml (or the file named by --config) with default values.
An existing file is kept unless --force is given.`,
		Example: `  # Create configuration
  shelfview config init

  # Create configuration, overwriting existing
  shelfview config init --force`,
		Annotations: map[string]string{annotationSkipConfig: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := configPath(cmd)
			cfg := config.Default(config.HomeDir())
			if err := cfg.Save(path, force); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}
			cmd.Printf("Configuration initialized successfully\n")
			cmd.Printf("Configuration file: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")

	return cmd
}
