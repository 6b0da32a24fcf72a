package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/shelfview/internal/config"
	"github.com/rshade/shelfview/internal/metadata/cache"
)

// NewCacheCleanCmd creates the cache clean command, which removes expired entries.
func NewCacheCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove expired metadata cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := config.GetGlobalConfig().Metadata.Cache
			store, err := cache.NewFileStore(c.Directory, c.Enabled, time.Duration(c.TTLSeconds)*time.Second)
			if err != nil {
				return err
			}
			removed, err := store.CleanupExpired()
			if errors.Is(err, cache.ErrCacheDisabled) {
				cmd.Println("Metadata cache is disabled")
				return nil
			}
			if err != nil {
				return fmt.Errorf("cleaning metadata cache: %w", err)
			}
			remaining, err := store.Count()
			if err != nil {
				return fmt.Errorf("counting cache entries: %w", err)
			}
			logger.Info().Ctx(cmd.Context()).Int("removed", removed).Int("remaining", remaining).
				Msg("metadata cache cleaned")
			cmd.Printf("Removed %d expired entries, %d remaining\n", removed, remaining)
			return nil
		},
	}
}
