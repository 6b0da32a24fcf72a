package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/shelfview/internal/library"
	"github.com/rshade/shelfview/internal/tui/detail"
)

// DetailProgramModel runs the detail view for a single book and exits when
// the view closes.
type DetailProgramModel struct {
	book   library.Book
	detail *detail.Model

	closed  bool
	deleted *detail.DeletedMsg

	width  int
	height int
}

// NewDetailProgramModel wraps a detail view built from deps for book.
func NewDetailProgramModel(book library.Book, deps detail.Deps) *DetailProgramModel {
	return &DetailProgramModel{
		book:   book,
		detail: detail.New(deps),
		width:  defaultWidth,
		height: defaultHeight,
	}
}

// Init opens the book.
func (m *DetailProgramModel) Init() tea.Cmd {
	return m.detail.Open(m.book)
}

// Update implements tea.Model.
func (m *DetailProgramModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case detail.DeletedMsg:
		m.deleted = &msg
		if m.closed {
			return m, tea.Quit
		}
		return m, nil
	case detail.ClosedMsg:
		m.closed = true
		// A confirmed delete is still running; wait for its outcome.
		if msg.Deleted && m.deleted == nil {
			return m, nil
		}
		return m, tea.Quit
	}
	_, cmd := m.detail.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *DetailProgramModel) View() string {
	if m.closed {
		return ""
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.detail.View())
}

// Deleted returns the outcome of a delete confirmed in the view, nil when
// none was confirmed.
func (m *DetailProgramModel) Deleted() *detail.DeletedMsg {
	return m.deleted
}
