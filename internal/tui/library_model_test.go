package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/shelfview/internal/i18n"
	"github.com/rshade/shelfview/internal/library"
	"github.com/rshade/shelfview/internal/metadata"
	"github.com/rshade/shelfview/internal/tui/detail"
)

type fakeLister struct {
	books []library.Book
	err   error
	calls int
}

func (f *fakeLister) List(context.Context) ([]library.Book, error) {
	f.calls++
	return f.books, f.err
}

type stubFetcher struct{}

func (stubFetcher) Fetch(context.Context, library.Book) (*metadata.Metadata, error) {
	return &metadata.Metadata{Publisher: "Ace"}, nil
}

type recordingDeleter struct {
	deleted []string
	err     error
}

func (d *recordingDeleter) Delete(_ context.Context, b library.Book) error {
	d.deleted = append(d.deleted, b.Hash)
	return d.err
}

var testBooks = []library.Book{
	{Hash: "a", Title: "Dune", Author: "Frank Herbert", UpdatedAt: time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)},
	{Hash: "b", Title: "Emma", Author: "Jane Austen"},
}

func newLibraryModel(t *testing.T, lister *fakeLister, deleter *recordingDeleter) *LibraryModel {
	t.Helper()
	m := NewLibraryModel(context.Background(), lister, detail.Deps{
		Fetcher:      stubFetcher{},
		Deleter:      deleter,
		Translate:    i18n.Identity,
		Format:       i18n.NewFormatters("en"),
		LoadingDelay: time.Hour,
	})
	return m
}

// load runs the model's load command and feeds the result back.
func load(t *testing.T, m *LibraryModel) {
	t.Helper()
	_, _ = m.Update(m.loadCmd()())
}

// deliverFetch runs the fetch half of an Open batch through the browser.
func deliverFetch(t *testing.T, m *LibraryModel, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	_, _ = m.Update(batch[0]())
}

func TestLibraryModel_LoadAndList(t *testing.T) {
	lister := &fakeLister{books: testBooks}
	m := newLibraryModel(t, lister, &recordingDeleter{})
	assert.Equal(t, ViewStateLoading, m.State())
	require.NotNil(t, m.Init())

	load(t, m)
	assert.Equal(t, ViewStateList, m.State())
	assert.Len(t, m.Books(), 2)

	out := m.View()
	assert.Contains(t, out, "Library (2)")
	assert.Contains(t, out, "Dune")
	assert.Contains(t, out, "Jane Austen")
	assert.Contains(t, out, "2026-01-02")
}

func TestLibraryModel_LoadingSpinnerStopsAfterLoad(t *testing.T) {
	m := newLibraryModel(t, &fakeLister{books: testBooks}, &recordingDeleter{})
	_, cmd := m.Update(spinner.TickMsg{})
	assert.NotNil(t, cmd, "spinner ticks while loading")

	load(t, m)
	_, cmd = m.Update(spinner.TickMsg{})
	assert.Nil(t, cmd, "no redraws once the list is shown")
}

func TestLibraryModel_EmptyLibrary(t *testing.T) {
	m := newLibraryModel(t, &fakeLister{}, &recordingDeleter{})
	load(t, m)
	assert.Contains(t, m.View(), "Your library is empty")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, ViewStateList, m.State())
}

func TestLibraryModel_LoadError(t *testing.T) {
	lister := &fakeLister{err: errors.New("corrupt")}
	m := newLibraryModel(t, lister, &recordingDeleter{})
	load(t, m)

	assert.Equal(t, ViewStateError, m.State())
	assert.Contains(t, m.View(), "corrupt")

	lister.err = nil
	lister.books = testBooks
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.NotNil(t, cmd)
	assert.Equal(t, ViewStateLoading, m.State())
	load(t, m)
	assert.Equal(t, ViewStateList, m.State())
}

func TestLibraryModel_TranslatedChrome(t *testing.T) {
	lister := &fakeLister{books: testBooks}
	m := NewLibraryModel(context.Background(), lister, detail.Deps{
		Fetcher:      stubFetcher{},
		Deleter:      &recordingDeleter{},
		Translate:    i18n.New("de"),
		Format:       i18n.NewFormatters("de"),
		LoadingDelay: time.Hour,
	})
	load(t, m)
	out := m.View()
	assert.Contains(t, out, "Titel")
	assert.Contains(t, out, "Autor")
	assert.Contains(t, out, "[r] neu laden")
	assert.NotContains(t, out, "Author")

	lister.err = errors.New("corrupt")
	load(t, m)
	require.Equal(t, ViewStateError, m.State())
	out = m.View()
	assert.Contains(t, out, "Fehler: corrupt")
	assert.Contains(t, out, "[r] Erneut versuchen  [q] Beenden")
}

func TestLibraryModel_OpenAndCloseDetail(t *testing.T) {
	lister := &fakeLister{books: testBooks}
	m := newLibraryModel(t, lister, &recordingDeleter{})
	load(t, m)

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ViewStateDetail, m.State())
	assert.Equal(t, "b", m.Detail().Book().Hash)

	deliverFetch(t, m, cmd)
	assert.Equal(t, detail.PhaseLoaded, m.Detail().Phase())
	assert.Contains(t, m.View(), "Ace")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	closed, ok := cmd().(detail.ClosedMsg)
	require.True(t, ok)

	calls := lister.calls
	_, cmd = m.Update(closed)
	assert.Equal(t, ViewStateList, m.State())
	require.NotNil(t, cmd, "closing reloads the list")
	_, _ = m.Update(cmd())
	assert.Equal(t, calls+1, lister.calls)
}

func TestLibraryModel_DeleteFromDetail(t *testing.T) {
	lister := &fakeLister{books: testBooks}
	deleter := &recordingDeleter{}
	m := newLibraryModel(t, lister, deleter)
	load(t, m)

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	require.NotNil(t, cmd)

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	lister.books = testBooks[1:]

	for _, c := range batch {
		_, next := m.Update(c())
		if next != nil {
			_, _ = m.Update(next())
		}
	}

	assert.Equal(t, []string{"a"}, deleter.deleted)
	assert.Equal(t, ViewStateList, m.State())
	assert.Len(t, m.Books(), 1)
	assert.NotContains(t, m.View(), "Dune")
}

func TestLibraryModel_DeleteFailureShowsStatus(t *testing.T) {
	m := newLibraryModel(t, &fakeLister{books: testBooks}, &recordingDeleter{})
	load(t, m)

	_, cmd := m.Update(detail.DeletedMsg{Book: testBooks[0], Err: errors.New("read-only")})
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "read-only")
}

func TestLibraryModel_Quit(t *testing.T) {
	m := newLibraryModel(t, &fakeLister{books: testBooks}, &recordingDeleter{})
	load(t, m)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Equal(t, ViewStateQuitting, m.State())
	assert.Empty(t, m.View())
}

func TestLibraryModel_QInDetailClosesInsteadOfQuitting(t *testing.T) {
	m := newLibraryModel(t, &fakeLister{books: testBooks}, &recordingDeleter{})
	load(t, m)
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	_, isClosed := cmd().(detail.ClosedMsg)
	assert.True(t, isClosed)
}

func TestLibraryModel_Resize(t *testing.T) {
	m := newLibraryModel(t, &fakeLister{books: testBooks}, &recordingDeleter{})
	_, _ = m.Update(tea.WindowSizeMsg{Width: 140, Height: 50})
	assert.Equal(t, 140, m.list.Width())
}

func TestRenderBook(t *testing.T) {
	row := renderBook(library.Book{Title: "A very long title that keeps going and going past the column", Author: "X"}, false)
	assert.Contains(t, row, "…")
	assert.NotContains(t, row, "past the column")
}
