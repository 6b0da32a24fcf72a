package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/rshade/shelfview/internal/i18n"
	"github.com/rshade/shelfview/internal/library"
	"github.com/rshade/shelfview/internal/tui/detail"
	listview "github.com/rshade/shelfview/internal/tui/list"
)

// Column widths of the library list.
const (
	colWidthTitle   = 40
	colWidthAuthor  = 25
	colWidthUpdated = 12
	libHeaderHeight = 4
)

// Lister loads the books shown by the browser.
type Lister interface {
	List(ctx context.Context) ([]library.Book, error)
}

// booksLoadedMsg carries the result of a library load.
type booksLoadedMsg struct {
	books []library.Book
	err   error
}

// LibraryModel is the library browser: a list of books with the detail view
// on top of it.
type LibraryModel struct {
	ctx    context.Context
	lister Lister
	tr     i18n.Translator
	logger zerolog.Logger

	state   ViewState
	books   []library.Book
	list    *listview.VirtualList[library.Book]
	detail  *detail.Model
	loading *LoadingState

	// status is a one-line notice under the list, e.g. a failed delete.
	status string
	err    error

	width  int
	height int
}

// NewLibraryModel creates a browser that loads its books from lister and
// opens them in a detail view built from deps.
func NewLibraryModel(ctx context.Context, lister Lister, deps detail.Deps) *LibraryModel {
	if deps.Translate == nil {
		deps.Translate = i18n.Identity
	}
	if deps.Context == nil {
		deps.Context = ctx
	}
	loading := NewLoadingState()
	loading.SetMessage(deps.Translate(i18n.MsgLoading))

	m := &LibraryModel{
		ctx:     ctx,
		lister:  lister,
		tr:      deps.Translate,
		logger:  deps.Logger.With().Str("component", "browser").Logger(),
		state:   ViewStateLoading,
		detail:  detail.New(deps),
		loading: loading,
		width:   defaultWidth,
		height:  defaultHeight,
	}
	m.rebuildList()
	return m
}

// Init starts the spinner and the first load.
func (m *LibraryModel) Init() tea.Cmd {
	return tea.Batch(m.loading.Init(), m.loadCmd())
}

func (m *LibraryModel) loadCmd() tea.Cmd {
	ctx, lister := m.ctx, m.lister
	return func() tea.Msg {
		books, err := lister.List(ctx)
		return booksLoadedMsg{books: books, err: err}
	}
}

// Update implements tea.Model.
func (m *LibraryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rebuildList()
		_, cmd := m.detail.Update(msg)
		return m, cmd

	case booksLoadedMsg:
		return m.handleBooksLoaded(msg)

	case detail.ClosedMsg:
		m.state = ViewStateList
		if msg.Deleted {
			return m, nil
		}
		return m, m.loadCmd()

	case detail.DeletedMsg:
		if msg.Err != nil {
			m.status = fmt.Sprintf("%s %q: %v", m.tr(i18n.MsgDelete), msg.Book.Title, msg.Err)
		} else {
			m.status = ""
		}
		return m, m.loadCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Fetch results, debounce ticks and spinner ticks belong to the children.
	// The loading spinner stops ticking once it is no longer shown.
	var loadingCmd tea.Cmd
	if m.state == ViewStateLoading {
		loadingCmd = m.loading.Update(msg)
	}
	_, detailCmd := m.detail.Update(msg)
	return m, tea.Batch(loadingCmd, detailCmd)
}

func (m *LibraryModel) handleBooksLoaded(msg booksLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Error().Ctx(m.ctx).Err(msg.err).Msg("loading library failed")
		m.err = msg.err
		m.state = ViewStateError
		return m, nil
	}
	m.books = msg.books
	m.list.SetItems(m.books)
	if m.state == ViewStateLoading || m.state == ViewStateError {
		m.state = ViewStateList
	}
	m.logger.Debug().Ctx(m.ctx).Int("books", len(m.books)).Msg("library loaded")
	return m, nil
}

func (m *LibraryModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == keyCtrlC {
		m.state = ViewStateQuitting
		return m, tea.Quit
	}

	switch m.state {
	case ViewStateDetail:
		_, cmd := m.detail.Update(msg)
		return m, cmd

	case ViewStateList:
		switch msg.String() {
		case keyQuit:
			m.state = ViewStateQuitting
			return m, tea.Quit
		case keyEnter:
			book, ok := m.list.SelectedItem()
			if !ok {
				return m, nil
			}
			m.state = ViewStateDetail
			m.status = ""
			return m, m.detail.Open(book)
		case keyReload:
			return m, m.loadCmd()
		}
		_, cmd := m.list.Update(msg)
		return m, cmd

	case ViewStateError:
		switch msg.String() {
		case keyQuit:
			m.state = ViewStateQuitting
			return m, tea.Quit
		case keyReload:
			m.state = ViewStateLoading
			return m, tea.Batch(m.loading.Init(), m.loadCmd())
		}

	case ViewStateLoading, ViewStateQuitting:
		if msg.String() == keyQuit {
			m.state = ViewStateQuitting
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *LibraryModel) rebuildList() {
	height := max(m.height-libHeaderHeight-borderPadding, minHeight)
	if m.list == nil {
		m.list = listview.New(m.books, height, m.width, renderBook)
		return
	}
	m.list.SetSize(m.width, height)
}

// renderBook formats one list row.
func renderBook(book library.Book, selected bool) string {
	updated := ""
	if !book.UpdatedAt.IsZero() {
		updated = book.UpdatedAt.Local().Format("2006-01-02")
	}
	row := fmt.Sprintf("%-*s  %-*s  %-*s",
		colWidthTitle, truncate(book.Title, colWidthTitle),
		colWidthAuthor, truncate(book.Author, colWidthAuthor),
		colWidthUpdated, updated,
	)
	if selected {
		return SelectedStyle.Render(row)
	}
	return row
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

// View implements tea.Model.
func (m *LibraryModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateLoading:
		return RenderLoading(m.loading)
	case ViewStateError:
		return CriticalStyle.Render(fmt.Sprintf("%s: %v", m.tr(i18n.MsgError), m.err)) + "\n\n" +
			SubtleStyle.Render(fmt.Sprintf("[r] %s  [q] %s", m.tr(i18n.MsgRetry), m.tr(i18n.MsgQuit)))
	case ViewStateDetail:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.detail.View())
	case ViewStateList:
	}
	return m.renderList()
}

func (m *LibraryModel) renderList() string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%s (%d)", m.tr(i18n.MsgLibrary), len(m.books))))
	b.WriteString("\n\n")

	if len(m.books) == 0 {
		b.WriteString(InfoStyle.Render(m.tr(i18n.MsgEmptyLibrary)))
	} else {
		header := fmt.Sprintf("%-*s  %-*s  %-*s",
			colWidthTitle, m.tr(i18n.MsgTitle),
			colWidthAuthor, m.tr(i18n.MsgAuthor),
			colWidthUpdated, strings.TrimSuffix(m.tr(i18n.MsgUpdated), ":"),
		)
		b.WriteString(TableHeaderStyle.Render(header))
		b.WriteString("\n")
		b.WriteString(m.list.View())
	}

	if m.status != "" {
		b.WriteString("\n\n")
		b.WriteString(CriticalStyle.Render(m.status))
	}

	b.WriteString("\n\n")
	b.WriteString(SubtleStyle.Render(fmt.Sprintf("[↑↓/jk] %s  [enter] %s  [r] %s  [q] %s",
		m.tr(i18n.MsgNavigate), m.tr(i18n.MsgOpen), m.tr(i18n.MsgReload), m.tr(i18n.MsgQuit))))
	return b.String()
}

// State returns the current view state.
func (m *LibraryModel) State() ViewState {
	return m.state
}

// Books returns the loaded books.
func (m *LibraryModel) Books() []library.Book {
	return m.books
}

// Detail returns the embedded detail view.
func (m *LibraryModel) Detail() *detail.Model {
	return m.detail
}
