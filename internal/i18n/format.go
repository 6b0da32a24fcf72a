package i18n

import (
	"strings"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Formatters turn raw metadata values into display strings. Each returns ""
// when it has nothing to show, which lets callers apply their own fallback.
type Formatters struct {
	Date      func(raw string) string
	Language  func(code string) string
	Publisher func(publisher string) string
	Subject   func(subjects []string) string
}

// NewFormatters returns the formatters for locale.
func NewFormatters(locale string) Formatters {
	tag := MatchLocale(locale)
	return Formatters{
		Date:      func(raw string) string { return FormatDate(tag, raw) },
		Language:  func(code string) string { return FormatLanguage(tag, code) },
		Publisher: FormatPublisher,
		Subject:   FormatSubject,
	}
}

// dateLayouts are tried in order; the index tells how precise the value is.
//
//nolint:gochecknoglobals // Static parse table.
var dateLayouts = []struct {
	layout    string
	precision datePrecision
}{
	{time.RFC3339Nano, precisionDay},
	{time.RFC3339, precisionDay},
	{"2006-01-02T15:04:05", precisionDay},
	{"2006-01-02", precisionDay},
	{"January 2, 2006", precisionDay},
	{"Jan 2, 2006", precisionDay},
	{"2 January 2006", precisionDay},
	{"2006-01", precisionMonth},
	{"January 2006", precisionMonth},
	{"Jan 2006", precisionMonth},
	{"2006", precisionYear},
}

type datePrecision int

const (
	precisionYear datePrecision = iota
	precisionMonth
	precisionDay
)

// dateFormats maps a language to its monday locale and long-form layouts.
// The layouts use Go reference names; monday translates month names.
//
//nolint:gochecknoglobals // Static layout table.
var dateFormats = map[language.Tag]struct {
	locale monday.Locale
	day    string
	month  string
}{
	language.English: {monday.LocaleEnUS, "January 2, 2006", "January 2006"},
	language.German:  {monday.LocaleDeDE, "2. January 2006", "January 2006"},
	language.French:  {monday.LocaleFrFR, "2 January 2006", "January 2006"},
	language.Spanish: {monday.LocaleEsES, "2 de January de 2006", "January 2006"},
}

// FormatDate renders raw as a long-form date in the tag's language. Values
// that do not parse are returned trimmed but otherwise untouched.
func FormatDate(tag language.Tag, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	for _, l := range dateLayouts {
		t, err := time.Parse(l.layout, raw)
		if err != nil {
			continue
		}
		return formatParsedDate(tag, t, l.precision)
	}
	return raw
}

func formatParsedDate(tag language.Tag, t time.Time, precision datePrecision) string {
	f, ok := dateFormats[tag]
	if !ok {
		f = dateFormats[language.English]
	}
	switch precision {
	case precisionYear:
		return t.Format("2006")
	case precisionMonth:
		return monday.Format(t, f.month, f.locale)
	default:
		return monday.Format(t, f.day, f.locale)
	}
}

// FormatLanguage renders a BCP 47 or ISO 639-2 code as a language name in the
// tag's language, e.g. "eng" -> "English", "fr" -> "Französisch" for German.
func FormatLanguage(tag language.Tag, code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	parsed, err := language.Parse(code)
	if err != nil {
		return code
	}
	name := display.Tags(tag).Name(parsed)
	if name == "" {
		return code
	}
	return name
}

// FormatPublisher collapses whitespace and strips trailing separators that
// catalog records often carry ("Penguin Books ;").
func FormatPublisher(publisher string) string {
	publisher = strings.Join(strings.Fields(publisher), " ")
	return strings.TrimRight(publisher, " ,;:/")
}

// FormatSubject joins distinct, non-empty subjects with ", ".
func FormatSubject(subjects []string) string {
	seen := make(map[string]bool, len(subjects))
	out := make([]string, 0, len(subjects))
	for _, s := range subjects {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return strings.Join(out, ", ")
}
