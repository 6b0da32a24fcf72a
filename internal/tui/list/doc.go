// Package listview provides a scrolling list for Bubble Tea programs.
//
// Only the rows inside the viewport are rendered, so large libraries open
// immediately. Navigation uses arrow keys, vim keys (j/k), page keys and
// home/end; the selection always stays inside the viewport.
package listview
