// Package i18n provides the translator and display formatters used by the
// TUI. Message keys are the English strings themselves, so a missing
// translation degrades to English.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Translator maps a message key to localized text.
type Translator func(key string) string

// Message keys used by the detail view and the library browser.
const (
	MsgBookDetails     = "Book Details"
	MsgUntitled        = "Untitled"
	MsgUnknown         = "Unknown"
	MsgNotAvailable    = "N/A"
	MsgPublisher       = "Publisher:"
	MsgPublished       = "Published:"
	MsgUpdated         = "Updated:"
	MsgLanguage        = "Language:"
	MsgIdentifier      = "Identifier:"
	MsgSubjects        = "Subjects:"
	MsgDelete          = "Delete"
	MsgClose           = "Close"
	MsgRetry           = "Retry"
	MsgConfirmDeletion = "Confirm Deletion"
	MsgConfirmMessage  = "Are you sure to delete the selected books?"
	MsgConfirm         = "Confirm"
	MsgCancel          = "Cancel"
	MsgLoading         = "Loading book details..."
	MsgLoadFailed      = "Failed to load book details"
	MsgLibrary         = "Library"
	MsgEmptyLibrary    = "Your library is empty"
	MsgOpen            = "Open"
	MsgQuit            = "Quit"
	MsgTitle           = "Title"
	MsgAuthor          = "Author"
	MsgNavigate        = "navigate"
	MsgReload          = "reload"
	MsgError           = "Error"
)

//nolint:gochecknoglobals // Static translation tables.
var translations = map[language.Tag]map[string]string{
	language.German: {
		MsgBookDetails:     "Buchdetails",
		MsgUntitled:        "Ohne Titel",
		MsgUnknown:         "Unbekannt",
		MsgNotAvailable:    "k. A.",
		MsgPublisher:       "Verlag:",
		MsgPublished:       "Veröffentlicht:",
		MsgUpdated:         "Aktualisiert:",
		MsgLanguage:        "Sprache:",
		MsgIdentifier:      "Kennung:",
		MsgSubjects:        "Themen:",
		MsgDelete:          "Löschen",
		MsgClose:           "Schließen",
		MsgRetry:           "Erneut versuchen",
		MsgConfirmDeletion: "Löschen bestätigen",
		MsgConfirmMessage:  "Möchten Sie die ausgewählten Bücher wirklich löschen?",
		MsgConfirm:         "Bestätigen",
		MsgCancel:          "Abbrechen",
		MsgLoading:         "Buchdetails werden geladen...",
		MsgLoadFailed:      "Buchdetails konnten nicht geladen werden",
		MsgLibrary:         "Bibliothek",
		MsgEmptyLibrary:    "Ihre Bibliothek ist leer",
		MsgOpen:            "Öffnen",
		MsgQuit:            "Beenden",
		MsgTitle:           "Titel",
		MsgAuthor:          "Autor",
		MsgNavigate:        "navigieren",
		MsgReload:          "neu laden",
		MsgError:           "Fehler",
	},
	language.French: {
		MsgBookDetails:     "Détails du livre",
		MsgUntitled:        "Sans titre",
		MsgUnknown:         "Inconnu",
		MsgNotAvailable:    "N/D",
		MsgPublisher:       "Éditeur :",
		MsgPublished:       "Publié :",
		MsgUpdated:         "Mis à jour :",
		MsgLanguage:        "Langue :",
		MsgIdentifier:      "Identifiant :",
		MsgSubjects:        "Sujets :",
		MsgDelete:          "Supprimer",
		MsgClose:           "Fermer",
		MsgRetry:           "Réessayer",
		MsgConfirmDeletion: "Confirmer la suppression",
		MsgConfirmMessage:  "Voulez-vous vraiment supprimer les livres sélectionnés ?",
		MsgConfirm:         "Confirmer",
		MsgCancel:          "Annuler",
		MsgLoading:         "Chargement des détails du livre...",
		MsgLoadFailed:      "Impossible de charger les détails du livre",
		MsgLibrary:         "Bibliothèque",
		MsgEmptyLibrary:    "Votre bibliothèque est vide",
		MsgOpen:            "Ouvrir",
		MsgQuit:            "Quitter",
		MsgTitle:           "Titre",
		MsgAuthor:          "Auteur",
		MsgNavigate:        "naviguer",
		MsgReload:          "recharger",
		MsgError:           "Erreur",
	},
	language.Spanish: {
		MsgBookDetails:     "Detalles del libro",
		MsgUntitled:        "Sin título",
		MsgUnknown:         "Desconocido",
		MsgNotAvailable:    "N/D",
		MsgPublisher:       "Editorial:",
		MsgPublished:       "Publicado:",
		MsgUpdated:         "Actualizado:",
		MsgLanguage:        "Idioma:",
		MsgIdentifier:      "Identificador:",
		MsgSubjects:        "Temas:",
		MsgDelete:          "Eliminar",
		MsgClose:           "Cerrar",
		MsgRetry:           "Reintentar",
		MsgConfirmDeletion: "Confirmar eliminación",
		MsgConfirmMessage:  "¿Seguro que desea eliminar los libros seleccionados?",
		MsgConfirm:         "Confirmar",
		MsgCancel:          "Cancelar",
		MsgLoading:         "Cargando detalles del libro...",
		MsgLoadFailed:      "No se pudieron cargar los detalles del libro",
		MsgLibrary:         "Biblioteca",
		MsgEmptyLibrary:    "Tu biblioteca está vacía",
		MsgOpen:            "Abrir",
		MsgQuit:            "Salir",
		MsgTitle:           "Título",
		MsgAuthor:          "Autor",
		MsgNavigate:        "navegar",
		MsgReload:          "recargar",
		MsgError:           "Error",
	},
}

//nolint:gochecknoglobals // Built once from the static tables.
var (
	supported = []language.Tag{language.English, language.German, language.French, language.Spanish}
	matcher   = language.NewMatcher(supported)
	messages  = buildCatalog()
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, table := range translations {
		for key, text := range table {
			// SetString only fails on malformed tags, which the tables never contain.
			_ = b.SetString(tag, key, text)
		}
	}
	return b
}

// MatchLocale returns the supported tag closest to locale, English when
// locale is empty or unparsable.
func MatchLocale(locale string) language.Tag {
	if locale == "" {
		return language.English
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return language.English
	}
	return supported[index]
}

// New returns a Translator for locale.
func New(locale string) Translator {
	printer := message.NewPrinter(MatchLocale(locale), message.Catalog(messages))
	return func(key string) string {
		return printer.Sprintf(key)
	}
}

// Identity returns keys unchanged. Useful in tests.
func Identity(key string) string {
	return key
}
