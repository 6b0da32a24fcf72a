package detail

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/rshade/shelfview/internal/i18n"
	"github.com/rshade/shelfview/internal/library"
	"github.com/rshade/shelfview/internal/metadata"
)

// DefaultLoadingDelay is how long a fetch may run before the spinner shows.
const DefaultLoadingDelay = 300 * time.Millisecond

// Fetcher resolves metadata for a book.
type Fetcher interface {
	Fetch(ctx context.Context, book library.Book) (*metadata.Metadata, error)
}

// Deleter removes a book from the library.
type Deleter interface {
	Delete(ctx context.Context, book library.Book) error
}

// Deps are the collaborators of the view.
type Deps struct {
	Fetcher   Fetcher
	Deleter   Deleter
	Translate i18n.Translator
	Format    i18n.Formatters
	// LoadingDelay defaults to DefaultLoadingDelay when zero. A negative
	// value shows the spinner as soon as a fetch starts.
	LoadingDelay time.Duration
	Logger       zerolog.Logger
	// Context is the parent of every fetch and delete; it carries the trace ID.
	Context context.Context
}

// Model is the Bubble Tea model for the detail view.
type Model struct {
	deps    Deps
	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	logger  zerolog.Logger

	book        library.Book
	meta        *metadata.Metadata
	err         error
	phase       Phase
	deleteState DeleteState

	// generation identifies the current open; it advances on every open,
	// retry and close.
	generation uint64
	cancel     context.CancelFunc

	width  int
	height int
}

// New creates a closed detail view.
func New(deps Deps) *Model {
	if deps.Translate == nil {
		deps.Translate = i18n.Identity
	}
	if deps.LoadingDelay == 0 {
		deps.LoadingDelay = DefaultLoadingDelay
	}
	if deps.Context == nil {
		deps.Context = context.Background()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return &Model{
		deps:    deps,
		keys:    NewKeyMap(deps.Translate),
		help:    help.New(),
		spinner: s,
		logger:  deps.Logger.With().Str("component", "detail").Logger(),
		width:   defaultWidth,
		height:  defaultHeight,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Open shows book and starts fetching its metadata. Opening while another
// book is shown re-targets the view; results for the previous book are
// discarded.
func (m *Model) Open(book library.Book) tea.Cmd {
	m.reset()
	m.book = book
	return m.startFetch()
}

// Close hides the view, drops metadata and confirmation state, and emits
// ClosedMsg. Closing a closed view is a no-op.
func (m *Model) Close() tea.Cmd {
	if m.phase == PhaseClosed {
		return nil
	}
	book := m.book
	deleted := m.deleteState == DeleteDone
	m.reset()
	m.phase = PhaseClosed
	m.book = library.Book{}

	m.logger.Debug().Ctx(m.deps.Context).Str("book_hash", book.Hash).Bool("deleted", deleted).Msg("detail view closed")
	return func() tea.Msg { return ClosedMsg{Book: book, Deleted: deleted} }
}

// reset advances the generation and clears per-book state.
func (m *Model) reset() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.generation++
	m.meta = nil
	m.err = nil
	m.deleteState = DeleteIdle
}

func (m *Model) startFetch() tea.Cmd {
	ctx, cancel := context.WithCancel(m.deps.Context)
	m.cancel = cancel

	gen := m.generation
	book := m.book
	fetcher := m.deps.Fetcher

	fetch := func() tea.Msg {
		if fetcher == nil {
			return fetchResultMsg{generation: gen, err: metadata.ErrNoMetadata}
		}
		meta, err := fetcher.Fetch(ctx, book)
		return fetchResultMsg{generation: gen, meta: meta, err: err}
	}

	m.logger.Debug().Ctx(ctx).Str("book_hash", book.Hash).Uint64("generation", gen).Msg("fetching metadata")

	if m.deps.LoadingDelay < 0 {
		m.phase = PhaseSpinning
		return tea.Batch(fetch, m.spinner.Tick)
	}
	m.phase = PhaseFetching
	return tea.Batch(fetch, tea.Tick(m.deps.LoadingDelay, func(time.Time) tea.Msg {
		return showSpinnerMsg{generation: gen}
	}))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case OpenMsg:
		return m, m.Open(msg.Book)

	case fetchResultMsg:
		return m, m.handleFetchResult(msg)

	case showSpinnerMsg:
		if msg.generation != m.generation || m.phase != PhaseFetching {
			return m, nil
		}
		m.phase = PhaseSpinning
		return m, m.spinner.Tick

	case spinner.TickMsg:
		if m.phase != PhaseSpinning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleFetchResult(msg fetchResultMsg) tea.Cmd {
	if msg.generation != m.generation || !m.phase.Loading() {
		m.logger.Debug().
			Uint64("generation", msg.generation).
			Uint64("current", m.generation).
			Msg("discarding stale metadata result")
		return nil
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}

	if msg.err != nil {
		m.phase = PhaseFailed
		m.err = msg.err
		m.logger.Warn().Ctx(m.deps.Context).Err(msg.err).Str("book_hash", m.book.Hash).Msg("metadata fetch failed")
		return nil
	}

	m.meta = msg.meta
	if m.meta == nil {
		m.meta = &metadata.Metadata{}
	}
	m.phase = PhaseLoaded
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		return tea.Quit
	}
	if m.phase == PhaseClosed {
		return nil
	}
	m.keys.sync(m.phase, m.deleteState)

	switch {
	case key.Matches(msg, m.keys.Confirm):
		return m.confirmDelete()
	case key.Matches(msg, m.keys.Cancel):
		m.deleteState = DeleteIdle
		return nil
	case key.Matches(msg, m.keys.Delete):
		m.deleteState = DeleteConfirmPending
		return nil
	case key.Matches(msg, m.keys.Retry):
		m.reset()
		return m.startFetch()
	case key.Matches(msg, m.keys.Close):
		return m.Close()
	}
	return nil
}

// confirmDelete dispatches the delete for the current book and closes the view.
func (m *Model) confirmDelete() tea.Cmd {
	m.deleteState = DeleteDone
	return tea.Batch(m.deleteCmd(m.book), m.Close())
}

func (m *Model) deleteCmd(book library.Book) tea.Cmd {
	ctx := m.deps.Context
	deleter := m.deps.Deleter
	logger := m.logger

	return func() tea.Msg {
		if deleter == nil {
			return DeletedMsg{Book: book}
		}
		err := deleter.Delete(ctx, book)
		if err != nil {
			logger.Error().Ctx(ctx).Err(err).Str("book_hash", book.Hash).Msg("book delete failed")
		} else {
			logger.Info().Ctx(ctx).Str("book_hash", book.Hash).Str("title", book.Title).Msg("book deleted")
		}
		return DeletedMsg{Book: book, Err: err}
	}
}

// IsOpen reports whether a book is shown.
func (m *Model) IsOpen() bool {
	return m.phase != PhaseClosed
}

// Phase returns the loading phase.
func (m *Model) Phase() Phase {
	return m.phase
}

// DeleteState returns the delete confirmation state.
func (m *Model) DeleteState() DeleteState {
	return m.deleteState
}

// Book returns the book shown, the zero Book when closed.
func (m *Model) Book() library.Book {
	return m.book
}

// Metadata returns the metadata of the shown book, nil until loaded.
func (m *Model) Metadata() *metadata.Metadata {
	return m.meta
}

// Err returns the last fetch error for the shown book.
func (m *Model) Err() error {
	return m.err
}

// SpinnerVisible reports whether the loading indicator is on screen.
func (m *Model) SpinnerVisible() bool {
	return m.phase == PhaseSpinning
}
