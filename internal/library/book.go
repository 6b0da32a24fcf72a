// Package library persists the user's book collection.
//
// Two backends implement Store: a JSON document guarded by a lockfile and a
// SQLite database. Deletion is soft: the record keeps a DeletedAt timestamp and
// disappears from List and Get.
package library

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// Book identifies a single book in the library.
type Book struct {
	Hash          string     `json:"hash"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	Format        string     `json:"format,omitempty"`
	FilePath      string     `json:"file_path,omitempty"`
	CoverImageURL string     `json:"cover_image_url,omitempty"`
	ISBN          string     `json:"isbn,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the book has been soft deleted.
func (b Book) IsDeleted() bool {
	return b.DeletedAt != nil
}

// Store errors.
var (
	ErrBookNotFound       = errors.New("book not found")
	ErrStoreCorrupted     = errors.New("library file corrupted")
	ErrUnsupportedVersion = errors.New("unsupported library file version")
	ErrInvalidBook        = errors.New("invalid book")
	// ErrFileNotRemoved means the book was deleted but its file stayed on disk.
	ErrFileNotRemoved     = errors.New("book deleted but file not removed")
)

// Store is the persistence contract shared by the backends.
type Store interface {
	// List returns all books that are not deleted, most recently updated first.
	List(ctx context.Context) ([]Book, error)
	// Get returns a non-deleted book by hash or ErrBookNotFound.
	Get(ctx context.Context, hash string) (Book, error)
	// Put inserts or replaces a book.
	Put(ctx context.Context, book Book) error
	// Delete soft-deletes a book by hash.
	Delete(ctx context.Context, hash string) error
	Close() error
}

// Option configures a store.
type Option func(*options)

type options struct {
	removeFiles bool
	now         func() time.Time
}

func defaultOptions() options {
	return options{now: time.Now}
}

// WithRemoveFiles makes Delete also remove the book's file from disk.
func WithRemoveFiles(remove bool) Option {
	return func(o *options) { o.removeFiles = remove }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// HashFile returns the content hash used as a book's identity.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, copyErr := io.Copy(h, f); copyErr != nil {
		return "", fmt.Errorf("hashing %s: %w", path, copyErr)
	}
	return hex.EncodeToString(h.Sum(nil))[:32], nil
}

func validateBook(book Book) error {
	if book.Hash == "" {
		return fmt.Errorf("%w: hash is required", ErrInvalidBook)
	}
	return nil
}

// removeBookFile deletes the file behind book, ignoring files already gone.
func removeBookFile(book Book) error {
	if book.FilePath == "" {
		return nil
	}
	if err := os.Remove(book.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: removing %s: %w", ErrFileNotRemoved, book.FilePath, err)
	}
	return nil
}
