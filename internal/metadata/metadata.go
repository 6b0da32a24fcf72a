// Package metadata resolves descriptive metadata for library books.
//
// Values come from the book file itself (EPUB package documents) and from the
// Open Library API. Service merges the sources, caches the result and
// collapses concurrent lookups for the same book.
package metadata

import (
	"context"
	"errors"
	"strings"

	"github.com/rshade/shelfview/internal/library"
)

// Errors returned by sources and by Service.
var (
	// ErrNotFound means a source had nothing for the book.
	ErrNotFound = errors.New("no metadata found")
	// ErrNoMetadata means every source was consulted and none produced a value.
	ErrNoMetadata = errors.New("no metadata available for book")
)

// Metadata describes a book. Empty fields are unknown.
type Metadata struct {
	Title       string   `json:"title,omitempty"`
	Author      string   `json:"author,omitempty"`
	Publisher   string   `json:"publisher,omitempty"`
	Published   string   `json:"published,omitempty"`
	Language    string   `json:"language,omitempty"`
	Identifier  string   `json:"identifier,omitempty"`
	Subjects    []string `json:"subjects,omitempty"`
	Description string   `json:"description,omitempty"`
	CoverURL    string   `json:"cover_url,omitempty"`
	// Sources names the sources that contributed, in merge order.
	Sources []string `json:"sources,omitempty"`
}

// IsEmpty reports whether no descriptive field is set.
func (m *Metadata) IsEmpty() bool {
	if m == nil {
		return true
	}
	return m.Title == "" && m.Author == "" && m.Publisher == "" && m.Published == "" &&
		m.Language == "" && m.Identifier == "" && len(m.Subjects) == 0 &&
		m.Description == "" && m.CoverURL == ""
}

// IsComplete reports whether every field shown in the detail view is set, in
// which case remote sources are not consulted.
func (m *Metadata) IsComplete() bool {
	return m != nil && m.Publisher != "" && m.Published != "" && m.Language != "" &&
		m.Identifier != "" && len(m.Subjects) > 0
}

// Merge fills the empty fields of m from other. Existing values win.
func (m *Metadata) Merge(other *Metadata, source string) {
	if other == nil || other.IsEmpty() {
		return
	}
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = strings.TrimSpace(src)
		}
	}
	fill(&m.Title, other.Title)
	fill(&m.Author, other.Author)
	fill(&m.Publisher, other.Publisher)
	fill(&m.Published, other.Published)
	fill(&m.Language, other.Language)
	fill(&m.Identifier, other.Identifier)
	fill(&m.Description, other.Description)
	fill(&m.CoverURL, other.CoverURL)
	if len(m.Subjects) == 0 && len(other.Subjects) > 0 {
		m.Subjects = append([]string(nil), other.Subjects...)
	}
	if source != "" {
		m.Sources = append(m.Sources, source)
	}
}

// Source looks up metadata for a book. Implementations return ErrNotFound
// when they have nothing for it.
type Source interface {
	Name() string
	Lookup(ctx context.Context, book library.Book) (*Metadata, error)
}

// NormalizeISBN strips separators and an "urn:isbn:" or "ISBN" prefix.
// It returns "" when the result is not a 10 or 13 character ISBN.
func NormalizeISBN(raw string) string {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)
	for _, prefix := range []string{"urn:isbn:", "isbn:", "isbn"} {
		if strings.HasPrefix(lower, prefix) {
			s = s[len(prefix):]
			break
		}
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'X' || r == 'x':
			b.WriteRune('X')
		case r == '-' || r == ' ':
		default:
			return ""
		}
	}
	out := b.String()
	if len(out) != 10 && len(out) != 13 {
		return ""
	}
	if strings.Contains(out[:len(out)-1], "X") {
		return ""
	}
	return out
}
