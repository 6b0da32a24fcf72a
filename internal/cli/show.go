package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/shelfview/internal/config"
	"github.com/rshade/shelfview/internal/i18n"
	"github.com/rshade/shelfview/internal/library"
	"github.com/rshade/shelfview/internal/metadata"
	"github.com/rshade/shelfview/internal/tui"
	"github.com/rshade/shelfview/internal/tui/detail"
)

// NewShowCmd creates the show command, which opens the detail view of one book.
func NewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <hash>",
		Short: "Show the details of a book",
		Long: `Opens the detail view for the book with the given hash or unique hash prefix.
The book can be deleted from the view with 'd'.

When stdout is not a terminal, or with --plain, the details are printed as text.`,
		Example: `  shelfview show 3f2a9c
  shelfview show 3f2a9c --plain`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(config.GetGlobalConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	book, err := a.resolveBook(ctx, args[0])
	if err != nil {
		return err
	}

	if outputMode(cmd) != tui.OutputModeInteractive {
		meta, fetchErr := a.service.Fetch(ctx, book)
		if fetchErr != nil {
			logger.Warn().Ctx(ctx).Err(fetchErr).Str("hash", book.Hash).Msg("metadata unavailable")
		}
		return renderDetails(cmd.OutOrStdout(), book, meta, fetchErr, a.tr, a.format)
	}

	model := tui.NewDetailProgramModel(book, a.detailDeps(ctx))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, runErr := p.Run(); runErr != nil {
		return fmt.Errorf("running detail view: %w", runErr)
	}

	if deleted := model.Deleted(); deleted != nil {
		if deleted.Err != nil {
			return deleted.Err
		}
		cmd.Printf("Deleted %q\n", deleted.Book.Title)
	}
	return nil
}

// renderDetails prints the same rows the detail view shows. A fetch error is
// reported in place of the rows, like the view does.
func renderDetails(
	w io.Writer,
	book library.Book,
	meta *metadata.Metadata,
	fetchErr error,
	tr i18n.Translator,
	format i18n.Formatters,
) error {
	title, author := detail.Header(book, tr)
	fmt.Fprintf(w, "%s\n%s\n\n", title, author)

	if fetchErr != nil {
		fmt.Fprintf(w, "%s: %v\n", tr(i18n.MsgLoadFailed), fetchErr)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for _, row := range detail.Rows(book, meta, tr, format) {
		fmt.Fprintf(tw, "%s\t%s\n", row.Label, row.Value)
	}
	return tw.Flush()
}
