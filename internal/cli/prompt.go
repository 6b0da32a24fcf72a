package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PromptResult contains the result of a user prompt interaction.
type PromptResult struct {
	// Accepted is true if the user typed "y" or "yes".
	Accepted bool
	// Cancelled is true if reading the answer failed.
	Cancelled bool
}

// ConfirmDelete asks the user whether title should be deleted.
//
// The prompt defaults to "No" when the user presses Enter without input or
// closes stdin. Callers must not prompt when stdin is not a terminal.
func ConfirmDelete(writer io.Writer, reader io.Reader, title string) PromptResult {
	fmt.Fprintf(writer, "? Delete %q from the library? [y/N] ", title)

	scanner := bufio.NewScanner(reader)
	if !scanner.Scan() {
		if scanner.Err() != nil {
			return PromptResult{Cancelled: true}
		}
		return PromptResult{Accepted: false}
	}

	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "y", "yes":
		return PromptResult{Accepted: true}
	default:
		return PromptResult{Accepted: false}
	}
}
