package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const bookColumns = `hash, title, author, format, file_path, cover_image_url, isbn,
	created_at, updated_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// SQLiteStore implements Store on top of SQLite.
type SQLiteStore struct {
	db   *sql.DB
	opts options
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if pingErr := db.Ping(); pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", pingErr)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	store := &SQLiteStore{db: db, opts: o}
	if tableErr := store.createTables(); tableErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", tableErr)
	}
	return store, nil
}

func (s *SQLiteStore) createTables() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS books (
		hash TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		author TEXT NOT NULL DEFAULT '',
		format TEXT NOT NULL DEFAULT '',
		file_path TEXT NOT NULL DEFAULT '',
		cover_image_url TEXT NOT NULL DEFAULT '',
		isbn TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		deleted_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_books_updated ON books(updated_at);
	`)
	return err
}

func scanBook(scanner rowScanner) (Book, error) {
	var (
		book      Book
		deletedAt sql.NullTime
	)
	err := scanner.Scan(
		&book.Hash, &book.Title, &book.Author, &book.Format, &book.FilePath,
		&book.CoverImageURL, &book.ISBN, &book.CreatedAt, &book.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return Book{}, err
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		book.DeletedAt = &t
	}
	return book, nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context) ([]Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE deleted_at IS NULL ORDER BY updated_at DESC, title ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		book, scanErr := scanBook(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scanning book: %w", scanErr)
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, hash string) (Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE hash = ? AND deleted_at IS NULL`, hash)
	book, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Book{}, fmt.Errorf("%w: %s", ErrBookNotFound, hash)
	}
	if err != nil {
		return Book{}, fmt.Errorf("loading book %s: %w", hash, err)
	}
	return book, nil
}

// Put implements Store.
func (s *SQLiteStore) Put(ctx context.Context, book Book) error {
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

	var deletedAt any
	if book.DeletedAt != nil {
		deletedAt = *book.DeletedAt
	}

	_, err := s.db.ExecContext(ctx, `
	INSERT INTO books (`+bookColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(hash) DO UPDATE SET
		title = excluded.title,
		author = excluded.author,
		format = excluded.format,
		file_path = excluded.file_path,
		cover_image_url = excluded.cover_image_url,
		isbn = excluded.isbn,
		created_at = excluded.created_at,
		updated_at = excluded.updated_at,
		deleted_at = excluded.deleted_at`,
		book.Hash, book.Title, book.Author, book.Format, book.FilePath, book.CoverImageURL,
		book.ISBN, book.CreatedAt, book.UpdatedAt, deletedAt,
	)
	if err != nil {
		return fmt.Errorf("saving book %s: %w", book.Hash, err)
	}
	return nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, hash string) error {
	book, err := s.Get(ctx, hash)
	if err != nil {
		return err
	}
	now := s.opts.now()
	result, err := s.db.ExecContext(ctx,
		`UPDATE books SET deleted_at = ?, updated_at = ? WHERE hash = ? AND deleted_at IS NULL`,
		now, now, hash)
	if err != nil {
		return fmt.Errorf("deleting book %s: %w", hash, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrBookNotFound, hash)
	}
	if s.opts.removeFiles {
		return removeBookFile(book)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
