package metadata

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/rshade/shelfview/internal/library"
)

const (
	containerPath = "META-INF/container.xml"
	// maxPackageSize bounds the package document read into memory.
	maxPackageSize = 4 << 20
)

type container struct {
	Rootfiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Version  string      `xml:"version,attr"`
	Metadata opfMetadata `xml:"metadata"`
}

type opfMetadata struct {
	Titles      []string        `xml:"title"`
	Creators    []opfCreator    `xml:"creator"`
	Publishers  []string        `xml:"publisher"`
	Dates       []opfDate       `xml:"date"`
	Languages   []string        `xml:"language"`
	Identifiers []opfIdentifier `xml:"identifier"`
	Subjects    []string        `xml:"subject"`
	Description string          `xml:"description"`
}

type opfCreator struct {
	Name string `xml:",chardata"`
	Role string `xml:"role,attr"`
}

type opfDate struct {
	Value string `xml:",chardata"`
	Event string `xml:"event,attr"`
}

type opfIdentifier struct {
	Value  string `xml:",chardata"`
	Scheme string `xml:"scheme,attr"`
}

// EPUBSource reads the package document embedded in a book's EPUB file.
type EPUBSource struct{}

// NewEPUBSource returns the local EPUB source.
func NewEPUBSource() *EPUBSource {
	return &EPUBSource{}
}

// Name implements Source.
func (s *EPUBSource) Name() string {
	return "epub"
}

// Lookup implements Source. Books without an EPUB file on disk yield
// ErrNotFound.
func (s *EPUBSource) Lookup(ctx context.Context, book library.Book) (*Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if book.FilePath == "" || !isEPUB(book) {
		return nil, ErrNotFound
	}
	meta, err := ReadEPUB(book.FilePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return meta, err
}

func isEPUB(book library.Book) bool {
	if strings.EqualFold(book.Format, "epub") {
		return true
	}
	return strings.EqualFold(filepath.Ext(book.FilePath), ".epub")
}

// ReadEPUB extracts metadata from the EPUB file at filePath.
func ReadEPUB(filePath string) (*Metadata, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("opening epub %s: %w", filePath, err)
	}
	defer zr.Close()

	var c container
	if decodeErr := decodeZipXML(&zr.Reader, containerPath, &c); decodeErr != nil {
		return nil, fmt.Errorf("reading container: %w", decodeErr)
	}
	rootfile := ""
	for _, rf := range c.Rootfiles {
		if rf.MediaType == "" || rf.MediaType == "application/oebps-package+xml" {
			rootfile = rf.FullPath
			break
		}
	}
	if rootfile == "" {
		return nil, fmt.Errorf("%w: container lists no package document", ErrNotFound)
	}

	var pkg opfPackage
	if decodeErr := decodeZipXML(&zr.Reader, path.Clean(rootfile), &pkg); decodeErr != nil {
		return nil, fmt.Errorf("reading package document: %w", decodeErr)
	}

	meta := pkg.Metadata.toMetadata()
	if meta.IsEmpty() {
		return nil, ErrNotFound
	}
	return meta, nil
}

func decodeZipXML(zr *zip.Reader, name string, v any) error {
	f, err := zr.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := xml.NewDecoder(io.LimitReader(f, maxPackageSize))
	dec.Strict = false
	return dec.Decode(v)
}

func (m opfMetadata) toMetadata() *Metadata {
	out := &Metadata{
		Title:       firstNonEmpty(m.Titles),
		Publisher:   firstNonEmpty(m.Publishers),
		Language:    firstNonEmpty(m.Languages),
		Description: strings.TrimSpace(m.Description),
	}

	var authors []string
	for _, c := range m.Creators {
		name := strings.TrimSpace(c.Name)
		if name != "" && (c.Role == "" || c.Role == "aut") {
			authors = append(authors, name)
		}
	}
	out.Author = strings.Join(authors, ", ")

	for _, d := range m.Dates {
		v := strings.TrimSpace(d.Value)
		if v == "" {
			continue
		}
		if d.Event == "publication" || d.Event == "" {
			out.Published = v
			break
		}
		if out.Published == "" && d.Event != "modification" {
			out.Published = v
		}
	}

	for _, id := range m.Identifiers {
		if isbn := NormalizeISBN(id.Value); isbn != "" &&
			(strings.EqualFold(id.Scheme, "isbn") || strings.HasPrefix(strings.ToLower(id.Value), "urn:isbn:")) {
			out.Identifier = isbn
			break
		}
	}
	if out.Identifier == "" {
		out.Identifier = firstNonEmpty(identifierValues(m.Identifiers))
	}

	for _, s := range m.Subjects {
		if s = strings.TrimSpace(s); s != "" {
			out.Subjects = append(out.Subjects, s)
		}
	}
	return out
}

func identifierValues(ids []opfIdentifier) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Value)
	}
	return out
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
