package detail

import (
	"time"

	"github.com/rshade/shelfview/internal/i18n"
	"github.com/rshade/shelfview/internal/library"
	"github.com/rshade/shelfview/internal/metadata"
)

// Row is one labeled line of the detail body.
type Row struct {
	Label string
	Value string
}

// Rows maps book and its metadata to the detail rows, in display order.
// meta may be nil, in which case every row shows its fallback.
func Rows(book library.Book, meta *metadata.Metadata, tr i18n.Translator, f i18n.Formatters) []Row {
	if meta == nil {
		meta = &metadata.Metadata{}
	}
	unknown := tr(i18n.MsgUnknown)

	updated := ""
	if !book.UpdatedAt.IsZero() {
		updated = apply(f.Date, book.UpdatedAt.Format(time.RFC3339))
	}

	return []Row{
		{Label: tr(i18n.MsgPublisher), Value: orDefault(apply(f.Publisher, meta.Publisher), unknown)},
		{Label: tr(i18n.MsgPublished), Value: orDefault(apply(f.Date, meta.Published), unknown)},
		{Label: tr(i18n.MsgUpdated), Value: updated},
		{Label: tr(i18n.MsgLanguage), Value: orDefault(apply(f.Language, meta.Language), unknown)},
		{Label: tr(i18n.MsgIdentifier), Value: orDefault(meta.Identifier, tr(i18n.MsgNotAvailable))},
		{Label: tr(i18n.MsgSubjects), Value: orDefault(applySubjects(f.Subject, meta.Subjects), unknown)},
	}
}

// Header returns the title and author lines shown above the rows.
func Header(book library.Book, tr i18n.Translator) (string, string) {
	return orDefault(book.Title, tr(i18n.MsgUntitled)), orDefault(book.Author, tr(i18n.MsgUnknown))
}

func apply(fn func(string) string, v string) string {
	if v == "" {
		return ""
	}
	if fn == nil {
		return v
	}
	return fn(v)
}

func applySubjects(fn func([]string) string, v []string) string {
	if len(v) == 0 {
		return ""
	}
	if fn == nil {
		return i18n.FormatSubject(v)
	}
	return fn(v)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
