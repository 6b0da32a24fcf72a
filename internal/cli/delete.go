package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/rshade/shelfview/internal/config"
	"github.com/rshade/shelfview/internal/tui"
)

// ErrConfirmationRequired is returned when delete cannot prompt and --yes was not given.
var ErrConfirmationRequired = errors.New("refusing to delete without confirmation: stdin is not a terminal, pass --yes")

// NewDeleteCmd creates the delete command.
func NewDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <hash>",
		Short: "Delete a book from the library",
		Long: `Deletes the book with the given hash or unique hash prefix after a y/N prompt.

The record is soft deleted. With library.remove_files set in config.yaml the
book file is removed as well.`,
		Example: `  shelfview delete 3f2a9c
  shelfview delete 3f2a9c --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, args[0], yes, tui.IsInputTTY())
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without prompting")
	return cmd
}

func runDelete(cmd *cobra.Command, hash string, yes, interactive bool) error {
	ctx := cmd.Context()
	a, err := newApp(config.GetGlobalConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	book, err := a.resolveBook(ctx, hash)
	if err != nil {
		return err
	}

	if !yes {
		if !interactive {
			return &ExitError{Code: ExitCodeUsage, Err: ErrConfirmationRequired}
		}
		result := ConfirmDelete(cmd.OutOrStdout(), cmd.InOrStdin(), book.Title)
		if !result.Accepted {
			cmd.Println("Aborted.")
			return nil
		}
	}

	deleter := storeDeleter{store: a.store, service: a.service}
	if deleteErr := deleter.Delete(ctx, book); deleteErr != nil {
		logger.Error().Ctx(ctx).Err(deleteErr).Str("hash", book.Hash).Msg("delete failed")
		return deleteErr
	}
	logger.Info().Ctx(ctx).Str("hash", book.Hash).Msg("book deleted")
	cmd.Printf("Deleted %q\n", book.Title)
	return nil
}
