package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Masterminds/semver/v3"
)

// FileStoreVersion is the schema version written to new library files.
const FileStoreVersion = "1.1.0"

// supportedVersions accepts any 1.x file. Older minors only lack optional fields.
const supportedVersions = "^1.0.0"

// legacyVersion is assumed for files written before the version field existed.
const legacyVersion = "1.0.0"

type fileStoreData struct {
	Version string `json:"version"`
	Books   []Book `json:"books"`
}

// FileStore keeps the library in a single JSON file.
// Every operation reloads the file under a cross-process lock, so several
// shelfview processes can share one library.
type FileStore struct {
	mu   sync.Mutex
	path string
	opts options
}

// NewFileStore returns a store backed by path. The file is created lazily.
func NewFileStore(path string, opts ...Option) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("library path cannot be empty")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &FileStore{path: path, opts: o}, nil
}

// List implements Store.
func (s *FileStore) List(_ context.Context) ([]Book, error) {
	var books []Book
	err := s.withData(false, func(d *fileStoreData) error {
		for _, b := range d.Books {
			if !b.IsDeleted() {
				books = append(books, b)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortBooks(books)
	return books, nil
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, hash string) (Book, error) {
	var found Book
	err := s.withData(false, func(d *fileStoreData) error {
		i := indexOf(d.Books, hash)
		if i < 0 || d.Books[i].IsDeleted() {
			return fmt.Errorf("%w: %s", ErrBookNotFound, hash)
		}
		found = d.Books[i]
		return nil
	})
	return found, err
}

// Put implements Store.
func (s *FileStore) Put(_ context.Context, book Book) error {
	if err := validateBook(book); err != nil {
		return err
	}
	now := s.opts.now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	if book.UpdatedAt.IsZero() {
		book.UpdatedAt = now
	}
	return s.withData(true, func(d *fileStoreData) error {
		if i := indexOf(d.Books, book.Hash); i >= 0 {
			d.Books[i] = book
			return nil
		}
		d.Books = append(d.Books, book)
		return nil
	})
}

// Delete implements Store.
func (s *FileStore) Delete(_ context.Context, hash string) error {
	var deleted Book
	err := s.withData(true, func(d *fileStoreData) error {
		i := indexOf(d.Books, hash)
		if i < 0 || d.Books[i].IsDeleted() {
			return fmt.Errorf("%w: %s", ErrBookNotFound, hash)
		}
		now := s.opts.now()
		d.Books[i].DeletedAt = &now
		d.Books[i].UpdatedAt = now
		deleted = d.Books[i]
		return nil
	})
	if err != nil {
		return err
	}
	// The record is committed before the file goes, so a failed save never
	// leaves a listed book without its file.
	if s.opts.removeFiles {
		return removeBookFile(deleted)
	}
	return nil
}

// Close implements Store. The file store holds no open handles.
func (s *FileStore) Close() error {
	return nil
}

// withData loads the file under lock, runs fn, and saves when write is set
// and fn succeeded.
func (s *FileStore) withData(write bool, fn func(*fileStoreData) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := acquireFileLock(s.path)
	if err != nil {
		return fmt.Errorf("acquiring file lock: %w", err)
	}
	defer unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	if fnErr := fn(data); fnErr != nil {
		return fnErr
	}
	if !write {
		return nil
	}
	return s.save(data)
}

func (s *FileStore) load() (*fileStoreData, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &fileStoreData{Version: FileStoreVersion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading library file: %w", err)
	}

	var data fileStoreData
	if unmarshalErr := json.Unmarshal(raw, &data); unmarshalErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrStoreCorrupted, s.path, unmarshalErr)
	}
	if data.Version == "" {
		data.Version = legacyVersion
	}
	if versionErr := checkVersion(data.Version); versionErr != nil {
		return nil, versionErr
	}
	return &data, nil
}

func (s *FileStore) save(data *fileStoreData) error {
	data.Version = FileStoreVersion

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding library file: %w", err)
	}
	if mkdirErr := os.MkdirAll(filepath.Dir(s.path), 0o750); mkdirErr != nil {
		return fmt.Errorf("creating library directory: %w", mkdirErr)
	}

	tmp := s.path + ".tmp"
	if writeErr := os.WriteFile(tmp, raw, 0o600); writeErr != nil {
		return fmt.Errorf("writing library file: %w", writeErr)
	}
	if renameErr := os.Rename(tmp, s.path); renameErr != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing library file: %w", renameErr)
	}
	return nil
}

func checkVersion(v string) error {
	version, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrUnsupportedVersion, v, err)
	}
	constraint, err := semver.NewConstraint(supportedVersions)
	if err != nil {
		return fmt.Errorf("parsing version constraint: %w", err)
	}
	if !constraint.Check(version) {
		return fmt.Errorf("%w: %s (supported %s)", ErrUnsupportedVersion, v, supportedVersions)
	}
	return nil
}

func indexOf(books []Book, hash string) int {
	for i := range books {
		if books[i].Hash == hash {
			return i
		}
	}
	return -1
}

func sortBooks(books []Book) {
	sort.SliceStable(books, func(i, j int) bool {
		if !books[i].UpdatedAt.Equal(books[j].UpdatedAt) {
			return books[i].UpdatedAt.After(books[j].UpdatedAt)
		}
		return books[i].Title < books[j].Title
	})
}
