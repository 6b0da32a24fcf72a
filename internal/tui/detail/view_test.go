package detail

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestView_Loaded(t *testing.T) {
	m, _, _ := newTestModel(t)
	fetched, _ := splitOpen(t, m.Open(bookA))
	send(m, fetched)

	out := m.View()
	assert.Contains(t, out, "Book Details")
	assert.Contains(t, out, "Dune")
	assert.Contains(t, out, "Frank Herbert")
	assert.Contains(t, out, "Publisher:")
	assert.Contains(t, out, "Chilton")
	assert.NotContains(t, out, "Loading book details...")
}

func TestView_FetchingHidesRows(t *testing.T) {
	m, _, _ := newTestModel(t)
	_, _ = splitOpen(t, m.Open(bookA))

	out := m.View()
	assert.Contains(t, out, "Dune")
	assert.NotContains(t, out, "Publisher:")
	assert.NotContains(t, out, "Loading book details...")
}

func TestView_CoverURL(t *testing.T) {
	m, _, _ := newTestModel(t)
	book := bookA
	book.CoverImageURL = "https://covers.example/dune.jpg"
	_, _ = splitOpen(t, m.Open(book))
	assert.Contains(t, m.View(), "https://covers.example/dune.jpg")
}

func TestView_HelpFollowsState(t *testing.T) {
	m, _, _ := newTestModel(t)
	send(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	fetched, _ := splitOpen(t, m.Open(bookA))
	send(m, fetched)

	out := m.View()
	assert.Contains(t, out, "Delete")
	assert.NotContains(t, out, "Retry")

	send(m, keyRunes("d"))
	out = m.View()
	assert.Contains(t, out, "Confirm")
	assert.Contains(t, out, "Cancel")
	assert.Contains(t, out, "Are you sure to delete the selected books?")
}

func TestView_Width(t *testing.T) {
	m, _, _ := newTestModel(t)
	send(m, tea.WindowSizeMsg{Width: 200, Height: 40})
	assert.Equal(t, dialogMaxWidth, m.dialogWidth())

	send(m, tea.WindowSizeMsg{Width: 10, Height: 40})
	assert.Equal(t, dialogMargin*4, m.dialogWidth())
}
