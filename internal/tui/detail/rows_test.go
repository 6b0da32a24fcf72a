package detail

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/shelfview/internal/i18n"
	"github.com/rshade/shelfview/internal/library"
	"github.com/rshade/shelfview/internal/metadata"
)

func TestRows_AllFieldsPresent(t *testing.T) {
	book := library.Book{
		Hash:      "h",
		UpdatedAt: time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC),
	}
	meta := &metadata.Metadata{
		Publisher:  "Penguin  Books ;",
		Published:  "1965-08-01",
		Language:   "eng",
		Identifier: "9780441172719",
		Subjects:   []string{"Fiction", "fiction", "Ecology"},
	}

	rows := Rows(book, meta, i18n.Identity, i18n.NewFormatters("en"))

	assert.Equal(t, []Row{
		{Label: "Publisher:", Value: "Penguin Books"},
		{Label: "Published:", Value: "August 1, 1965"},
		{Label: "Updated:", Value: "February 29, 2024"},
		{Label: "Language:", Value: "English"},
		{Label: "Identifier:", Value: "9780441172719"},
		{Label: "Subjects:", Value: "Fiction, Ecology"},
	}, rows)
}

func TestRows_Fallbacks(t *testing.T) {
	for name, meta := range map[string]*metadata.Metadata{"nil": nil, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			rows := Rows(library.Book{}, meta, i18n.Identity, i18n.NewFormatters("en"))
			values := make([]string, 0, len(rows))
			for _, r := range rows {
				values = append(values, r.Value)
			}
			assert.Equal(t, []string{"Unknown", "Unknown", "", "Unknown", "N/A", "Unknown"}, values)
		})
	}
}

func TestRows_Translated(t *testing.T) {
	rows := Rows(library.Book{}, nil, i18n.New("de"), i18n.NewFormatters("de"))
	assert.Equal(t, "Verlag:", rows[0].Label)
	assert.Equal(t, "Unbekannt", rows[0].Value)
}

func TestRows_FormattersInjected(t *testing.T) {
	upper := i18n.Formatters{
		Date:      strings.ToUpper,
		Language:  strings.ToUpper,
		Publisher: strings.ToUpper,
		Subject:   func(s []string) string { return strings.Join(s, "|") },
	}
	meta := &metadata.Metadata{Publisher: "ace", Published: "may", Language: "en", Subjects: []string{"a", "b"}}

	rows := Rows(library.Book{}, meta, i18n.Identity, upper)
	assert.Equal(t, "ACE", rows[0].Value)
	assert.Equal(t, "MAY", rows[1].Value)
	assert.Equal(t, "EN", rows[3].Value)
	assert.Equal(t, "a|b", rows[5].Value)
}

func TestRows_ZeroFormatters(t *testing.T) {
	meta := &metadata.Metadata{Publisher: "Ace", Subjects: []string{"A", "B"}}
	rows := Rows(library.Book{}, meta, i18n.Identity, i18n.Formatters{})
	assert.Equal(t, "Ace", rows[0].Value)
	assert.Equal(t, "A, B", rows[5].Value)
}

func TestHeader(t *testing.T) {
	title, author := Header(library.Book{}, i18n.Identity)
	assert.Equal(t, "Untitled", title)
	assert.Equal(t, "Unknown", author)

	title, author = Header(library.Book{Title: "Dune", Author: "Frank Herbert"}, i18n.Identity)
	assert.Equal(t, "Dune", title)
	assert.Equal(t, "Frank Herbert", author)
}
