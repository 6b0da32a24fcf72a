package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestMatchLocale(t *testing.T) {
	tests := []struct {
		locale string
		want   language.Tag
	}{
		{"", language.English},
		{"en-US", language.English},
		{"de", language.German},
		{"de-AT", language.German},
		{"fr-CA", language.French},
		{"es-419", language.Spanish},
		{"not a locale!", language.English},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchLocale(tt.locale))
		})
	}
}

func TestTranslator(t *testing.T) {
	de := New("de")
	assert.Equal(t, "Unbekannt", de(MsgUnknown))
	assert.Equal(t, "Verlag:", de(MsgPublisher))

	en := New("en")
	assert.Equal(t, "Unknown", en(MsgUnknown))

	// Keys without a translation fall back to the key itself.
	assert.Equal(t, "Some new string", de("Some new string"))
	assert.Equal(t, "anything", Identity("anything"))
}

func TestEveryKeyTranslated(t *testing.T) {
	english := []string{
		MsgBookDetails, MsgUntitled, MsgUnknown, MsgNotAvailable, MsgPublisher, MsgPublished,
		MsgUpdated, MsgLanguage, MsgIdentifier, MsgSubjects, MsgDelete, MsgClose, MsgRetry,
		MsgConfirmDeletion, MsgConfirmMessage, MsgConfirm, MsgCancel, MsgLoading, MsgLoadFailed,
		MsgLibrary, MsgEmptyLibrary, MsgOpen, MsgQuit, MsgTitle, MsgAuthor, MsgNavigate, MsgReload, MsgError,
	}
	for tag, table := range translations {
		for _, key := range english {
			assert.NotEmpty(t, table[key], "%s missing %q", tag, key)
		}
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name string
		tag  language.Tag
		raw  string
		want string
	}{
		{"empty", language.English, "  ", ""},
		{"iso day", language.English, "1965-08-01", "August 1, 1965"},
		{"rfc3339", language.English, "2024-02-29T10:00:00Z", "February 29, 2024"},
		{"month only", language.English, "1965-08", "August 1965"},
		{"year only", language.English, "1965", "1965"},
		{"open library style", language.English, "Aug 1965", "August 1965"},
		{"german day", language.German, "1965-08-01", "1. August 1965"},
		{"french day", language.French, "1965-03-01", "1 mars 1965"},
		{"spanish day", language.Spanish, "1965-03-01", "1 de marzo de 1965"},
		{"german month", language.German, "1965-03", "März 1965"},
		{"unknown locale falls back to english", language.Japanese, "1965-08-01", "August 1, 1965"},
		{"unparsable kept", language.English, "circa 1850", "circa 1850"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(tt.tag, tt.raw))
		})
	}
}

func TestFormatLanguage(t *testing.T) {
	assert.Equal(t, "English", FormatLanguage(language.English, "en"))
	assert.Equal(t, "English", FormatLanguage(language.English, "eng"))
	assert.Equal(t, "French", FormatLanguage(language.English, "fr"))
	assert.Equal(t, "Englisch", FormatLanguage(language.German, "en"))
	assert.Equal(t, "", FormatLanguage(language.English, ""))
	assert.Equal(t, "!!", FormatLanguage(language.English, "!!"))
}

func TestFormatPublisher(t *testing.T) {
	assert.Equal(t, "Penguin Books", FormatPublisher("  Penguin   Books ;"))
	assert.Equal(t, "Ace", FormatPublisher("Ace,"))
	assert.Equal(t, "", FormatPublisher("   "))
}

func TestFormatSubject(t *testing.T) {
	assert.Equal(t, "Fiction, Science Fiction",
		FormatSubject([]string{"Fiction", " ", "Science Fiction", "fiction"}))
	assert.Equal(t, "", FormatSubject(nil))
}

func TestNewFormatters(t *testing.T) {
	f := NewFormatters("de")
	assert.Equal(t, "1. August 1965", f.Date("1965-08-01"))
	assert.Equal(t, "Englisch", f.Language("en"))
	assert.Equal(t, "Ace", f.Publisher("Ace "))
	assert.Equal(t, "A, B", f.Subject([]string{"A", "B"}))
}
