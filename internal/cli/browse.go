package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/shelfview/internal/config"
	"github.com/rshade/shelfview/internal/library"
	"github.com/rshade/shelfview/internal/tui"
)

// NewBrowseCmd creates the browse command, which is also what the bare
// root command runs.
func NewBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the library",
		Long: `Opens the library browser. Select a book and press enter to see its details.

When stdout is not a terminal, or with --plain, the library is printed as a table.`,
		Example: `  # Open the browser
  shelfview browse

  # List books as plain text
  shelfview browse --plain | grep Herbert`,
		Args: cobra.NoArgs,
		RunE: runBrowse,
	}
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(config.GetGlobalConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	if outputMode(cmd) != tui.OutputModeInteractive {
		books, listErr := a.store.List(ctx)
		if listErr != nil {
			return listErr
		}
		return renderBookTable(cmd.OutOrStdout(), books)
	}

	model := tui.NewLibraryModel(ctx, a.store, a.detailDeps(ctx))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, runErr := p.Run(); runErr != nil {
		return fmt.Errorf("running library browser: %w", runErr)
	}
	return nil
}

// outputMode reads --plain and --no-color and detects the terminal.
func outputMode(cmd *cobra.Command) tui.OutputMode {
	plain, _ := cmd.Flags().GetBool("plain")
	noColor, _ := cmd.Flags().GetBool("no-color")
	return tui.DetectOutputMode(false, noColor, plain)
}

// renderBookTable prints books as tab-aligned columns.
func renderBookTable(w io.Writer, books []library.Book) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "HASH\tTITLE\tAUTHOR\tUPDATED")
	for _, b := range books {
		updated := ""
		if !b.UpdatedAt.IsZero() {
			updated = b.UpdatedAt.Local().Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", shortHash(b.Hash), b.Title, b.Author, updated)
	}
	return tw.Flush()
}

// shortHash returns the first 12 characters of hash.
func shortHash(hash string) string {
	const n = 12
	if len(hash) <= n {
		return hash
	}
	return hash[:n]
}
