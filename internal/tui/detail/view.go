package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/shelfview/internal/i18n"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// dialogMaxWidth caps the dialog on wide terminals.
	dialogMaxWidth = 72
	dialogMargin   = 4
)

//nolint:gochecknoglobals // Shared styles are read-only.
var (
	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
	authorStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("252"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	confirmStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(0, 2)
	confirmTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	confirmTextStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// View implements tea.Model. A closed view renders nothing.
func (m *Model) View() string {
	if m.phase == PhaseClosed {
		return ""
	}
	tr := m.deps.Translate
	width := m.dialogWidth()

	var b strings.Builder
	b.WriteString(headingStyle.Render(tr(i18n.MsgBookDetails)))
	b.WriteString("\n\n")

	title, author := Header(m.book, tr)
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(authorStyle.Render(author))
	b.WriteString("\n")
	if cover := m.coverURL(); cover != "" {
		b.WriteString(subtleStyle.Render(cover))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.renderBody())

	if m.deleteState == DeleteConfirmPending {
		b.WriteString("\n\n")
		b.WriteString(m.renderConfirm(width - dialogMargin))
	}

	m.keys.sync(m.phase, m.deleteState)
	m.help.Width = width - dialogMargin
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))

	return dialogStyle.Width(width).Render(b.String())
}

func (m *Model) renderBody() string {
	tr := m.deps.Translate
	switch m.phase {
	case PhaseSpinning:
		return fmt.Sprintf("%s %s", m.spinner.View(), tr(i18n.MsgLoading))
	case PhaseFailed:
		return errorStyle.Render(tr(i18n.MsgLoadFailed)) + "\n" + subtleStyle.Render(m.err.Error())
	case PhaseLoaded:
		return renderRows(Rows(m.book, m.meta, tr, m.deps.Format))
	case PhaseFetching, PhaseClosed:
	}
	// Hold the body height while the spinner is still hidden.
	return strings.Repeat("\n", len(Rows(m.book, nil, tr, m.deps.Format))-1)
}

func renderRows(rows []Row) string {
	labelWidth := 0
	for _, r := range rows {
		labelWidth = max(labelWidth, lipgloss.Width(r.Label))
	}
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		label := labelStyle.Width(labelWidth + 1).Render(r.Label)
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, label, valueStyle.Render(r.Value)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderConfirm(width int) string {
	tr := m.deps.Translate
	var b strings.Builder
	b.WriteString(confirmTitleStyle.Render(tr(i18n.MsgConfirmDeletion)))
	b.WriteString("\n")
	b.WriteString(confirmTextStyle.Width(width - dialogMargin).Render(tr(i18n.MsgConfirmMessage)))
	return confirmStyle.Render(b.String())
}

func (m *Model) coverURL() string {
	if m.book.CoverImageURL != "" {
		return m.book.CoverImageURL
	}
	if m.meta != nil {
		return m.meta.CoverURL
	}
	return ""
}

func (m *Model) dialogWidth() int {
	w := m.width - dialogMargin
	if w > dialogMaxWidth {
		w = dialogMaxWidth
	}
	if w < dialogMargin*4 {
		w = dialogMargin * 4
	}
	return w
}
