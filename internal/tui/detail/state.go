package detail

import (
	"github.com/rshade/shelfview/internal/library"
	"github.com/rshade/shelfview/internal/metadata"
)

// Phase is the loading phase of the view.
type Phase int

const (
	// PhaseClosed means no book is shown.
	PhaseClosed Phase = iota
	// PhaseFetching means a fetch is in flight and the spinner is still hidden.
	PhaseFetching
	// PhaseSpinning means a fetch is in flight past the loading delay.
	PhaseSpinning
	// PhaseLoaded means metadata for the current book is available.
	PhaseLoaded
	// PhaseFailed means the last fetch for the current book failed.
	PhaseFailed
)

// String returns a lowercase name for logs.
func (p Phase) String() string {
	switch p {
	case PhaseClosed:
		return "closed"
	case PhaseFetching:
		return "fetching"
	case PhaseSpinning:
		return "spinning"
	case PhaseLoaded:
		return "loaded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Loading reports whether a fetch is in flight.
func (p Phase) Loading() bool {
	return p == PhaseFetching || p == PhaseSpinning
}

// DeleteState tracks the two-step delete confirmation.
type DeleteState int

const (
	// DeleteIdle means no delete has been requested.
	DeleteIdle DeleteState = iota
	// DeleteConfirmPending means the confirmation box is shown.
	DeleteConfirmPending
	// DeleteDone means the delete was confirmed and dispatched. The view
	// closes in the same update, which returns the state to DeleteIdle.
	DeleteDone
)

// String returns a lowercase name for logs.
func (d DeleteState) String() string {
	switch d {
	case DeleteIdle:
		return "idle"
	case DeleteConfirmPending:
		return "confirm_pending"
	case DeleteDone:
		return "done"
	default:
		return "unknown"
	}
}

// fetchResultMsg carries a finished fetch back into Update.
type fetchResultMsg struct {
	generation uint64
	meta       *metadata.Metadata
	err        error
}

// showSpinnerMsg fires when the loading delay elapses.
type showSpinnerMsg struct {
	generation uint64
}

// OpenMsg asks the view to show book. Parents may send it or call Open.
type OpenMsg struct {
	Book library.Book
}

// ClosedMsg is emitted after the view closes.
type ClosedMsg struct {
	Book library.Book
	// Deleted is true when the view closed because a delete was confirmed.
	Deleted bool
}

// DeletedMsg reports the outcome of a confirmed delete. The view itself does
// not act on it; parents use it to refresh their listing.
type DeletedMsg struct {
	Book library.Book
	Err  error
}
