package tui

import "github.com/charmbracelet/lipgloss"

// Layout defaults shared by the models.
const (
	defaultWidth  = 100
	defaultHeight = 30
	minHeight     = 5
	borderPadding = 2
)

// Key strings matched by the list views.
const (
	keyQuit   = "q"
	keyCtrlC  = "ctrl+c"
	keyEnter  = "enter"
	keyEsc    = "esc"
	keyReload = "r"
)

// Palette.
const (
	colorAccent = lipgloss.Color("62")
	colorSubtle = lipgloss.Color("241")
	colorError  = lipgloss.Color("196")
	colorOK     = lipgloss.Color("42")
	colorSelFg  = lipgloss.Color("229")
	colorSelBg  = lipgloss.Color("57")
)

// Shared styles.
//
//nolint:gochecknoglobals // Styles are immutable values reused across renders.
var (
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	LabelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	ValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	SubtleStyle = lipgloss.NewStyle().Foreground(colorSubtle)
	InfoStyle   = lipgloss.NewStyle().Foreground(colorAccent).Italic(true)
	OKStyle     = lipgloss.NewStyle().Foreground(colorOK)

	CriticalStyle = lipgloss.NewStyle().Foreground(colorError).Bold(true)

	SelectedStyle = lipgloss.NewStyle().Foreground(colorSelFg).Background(colorSelBg)

	TableHeaderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240")).
				BorderBottom(true).
				Bold(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)
)

// ViewState is the top-level state of a list view.
type ViewState int

const (
	// ViewStateLoading means the list is being loaded.
	ViewStateLoading ViewState = iota
	// ViewStateList means the list has focus.
	ViewStateList
	// ViewStateDetail means the detail view has focus.
	ViewStateDetail
	// ViewStateQuitting means the program is exiting.
	ViewStateQuitting
	// ViewStateError means loading failed.
	ViewStateError
)
