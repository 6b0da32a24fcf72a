// Package detail implements the book detail view: a modal that loads a book's
// metadata on demand and offers a confirmed delete.
//
// The view keeps the TUI responsive while metadata is resolved:
//   - The fetch runs as a tea.Cmd; its result re-enters Update as a message.
//   - The spinner appears only when the fetch outlives the loading delay, so
//     fast lookups never flicker.
//   - Every fetch and debounce message carries the generation that issued it.
//     Messages from an older generation are dropped, so a result is never
//     shown next to a book other than the one it was requested for.
//   - A failed fetch shows an inline error with a retry key ('r').
//   - Delete asks for confirmation first and closes the view once confirmed.
package detail
