package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/shelfview/internal/config"
)

// NewConfigValidateCmd creates the config validate command.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Loads the configuration file with environment overrides applied and checks
value ranges: library backend, Open Library rate and retries, cache TTL and
loading delay.`,
		Example: `  # Validate current configuration
  shelfview config validate

  # Validate and show the effective values
  shelfview config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The root command already loaded and validated the file.
			cfg := config.GetGlobalConfig()
			cmd.Println("Configuration is valid")
			if verbose {
				cmd.Printf("  Library:      %s (%s)\n", cfg.Library.Path, cfg.Library.Backend)
				cmd.Printf("  Open Library: enabled=%t url=%s rps=%d retries=%d\n",
					cfg.Metadata.OpenLibrary.Enabled, cfg.Metadata.OpenLibrary.BaseURL,
					cfg.Metadata.OpenLibrary.RequestsPerSecond, cfg.Metadata.OpenLibrary.MaxRetries)
				cmd.Printf("  Cache:        enabled=%t dir=%s ttl=%ds\n",
					cfg.Metadata.Cache.Enabled, cfg.Metadata.Cache.Directory, cfg.Metadata.Cache.TTLSeconds)
				cmd.Printf("  UI:           locale=%s loading_delay=%s\n", cfg.UI.Locale, cfg.UI.LoadingDelay)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show the effective configuration")

	return cmd
}
