package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// storeFactories lets the contract tests run against every backend.
func storeFactories() map[string]func(t *testing.T, opts ...Option) Store {
	return map[string]func(t *testing.T, opts ...Option) Store{
		"file": func(t *testing.T, opts ...Option) Store {
			s, err := NewFileStore(filepath.Join(t.TempDir(), "library.json"), opts...)
			require.NoError(t, err)
			return s
		},
		"sqlite": func(t *testing.T, opts ...Option) Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "library.db"), opts...)
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func TestStore_PutGetList(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t, WithClock(fixedClock))

			older := Book{Hash: "a1", Title: "Dune", Author: "Frank Herbert", UpdatedAt: fixedNow.Add(-time.Hour)}
			newer := Book{Hash: "b2", Title: "Emma", Author: "Jane Austen", ISBN: "9780141439587"}
			require.NoError(t, store.Put(ctx, older))
			require.NoError(t, store.Put(ctx, newer))

			got, err := store.Get(ctx, "b2")
			require.NoError(t, err)
			assert.Equal(t, "Emma", got.Title)
			assert.Equal(t, "9780141439587", got.ISBN)
			assert.True(t, fixedNow.Equal(got.UpdatedAt))

			books, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, books, 2)
			assert.Equal(t, "b2", books[0].Hash, "most recently updated first")
			assert.Equal(t, "a1", books[1].Hash)

			older.Title = "Dune Messiah"
			require.NoError(t, store.Put(ctx, older))
			got, err = store.Get(ctx, "a1")
			require.NoError(t, err)
			assert.Equal(t, "Dune Messiah", got.Title)
		})
	}
}

func TestStore_DeleteIsSoftAndHidesBook(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t, WithClock(fixedClock))

			require.NoError(t, store.Put(ctx, Book{Hash: "a1", Title: "Dune"}))
			require.NoError(t, store.Delete(ctx, "a1"))

			_, err := store.Get(ctx, "a1")
			require.ErrorIs(t, err, ErrBookNotFound)

			books, err := store.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, books)

			require.ErrorIs(t, store.Delete(ctx, "a1"), ErrBookNotFound, "second delete")
			require.ErrorIs(t, store.Delete(ctx, "missing"), ErrBookNotFound)
		})
	}
}

func TestStore_DeleteRemovesFileWhenConfigured(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			bookPath := filepath.Join(t.TempDir(), "dune.epub")
			require.NoError(t, os.WriteFile(bookPath, []byte("epub"), 0o600))

			store := newStore(t, WithRemoveFiles(true))
			require.NoError(t, store.Put(ctx, Book{Hash: "a1", FilePath: bookPath}))
			require.NoError(t, store.Delete(ctx, "a1"))

			_, err := os.Stat(bookPath)
			assert.ErrorIs(t, err, os.ErrNotExist)
		})
	}
}

func TestStore_DeleteCommitsBeforeRemovingFile(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			// A non-empty directory cannot be removed, so the record is
			// deleted while the "file" stays.
			bookPath := filepath.Join(t.TempDir(), "dune.epub")
			require.NoError(t, os.MkdirAll(filepath.Join(bookPath, "OEBPS"), 0o750))

			store := newStore(t, WithRemoveFiles(true))
			require.NoError(t, store.Put(ctx, Book{Hash: "a1", FilePath: bookPath}))

			err := store.Delete(ctx, "a1")
			require.ErrorIs(t, err, ErrFileNotRemoved)
			_, getErr := store.Get(ctx, "a1")
			assert.ErrorIs(t, getErr, ErrBookNotFound, "record is deleted")
		})
	}
}

func TestFileStore_FailedSaveKeepsBookFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	bookPath := filepath.Join(dir, "dune.epub")
	require.NoError(t, os.WriteFile(bookPath, []byte("epub"), 0o600))

	libPath := filepath.Join(dir, "library.json")
	store, err := NewFileStore(libPath, WithRemoveFiles(true))
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, Book{Hash: "a1", Title: "Dune", FilePath: bookPath}))

	// The atomic write goes through library.json.tmp; a directory there makes it fail.
	require.NoError(t, os.Mkdir(libPath+".tmp", 0o750))
	require.Error(t, store.Delete(ctx, "a1"))

	assert.FileExists(t, bookPath)
	got, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)

	require.NoError(t, os.Remove(libPath+".tmp"))
	require.NoError(t, store.Delete(ctx, "a1"))
	assert.NoFileExists(t, bookPath)
}

func TestSQLiteStore_FailedUpdateKeepsBookFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	bookPath := filepath.Join(dir, "dune.epub")
	require.NoError(t, os.WriteFile(bookPath, []byte("epub"), 0o600))

	store, err := NewSQLiteStore(filepath.Join(dir, "library.db"), WithRemoveFiles(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Put(ctx, Book{Hash: "a1", Title: "Dune", FilePath: bookPath}))

	_, err = store.db.ExecContext(ctx, `CREATE TRIGGER read_only BEFORE UPDATE ON books
		BEGIN SELECT RAISE(ABORT, 'read-only library'); END`)
	require.NoError(t, err)

	err = store.Delete(ctx, "a1")
	require.ErrorContains(t, err, "read-only library")
	assert.FileExists(t, bookPath)
	_, err = store.Get(ctx, "a1")
	require.NoError(t, err)
}

func TestStore_PutRequiresHash(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			err := newStore(t).Put(context.Background(), Book{Title: "No hash"})
			require.ErrorIs(t, err, ErrInvalidBook)
		})
	}
}

func TestFileStore_Versioning(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "legacy file without version", content: `{"books":[{"hash":"a1","title":"Dune"}]}`},
		{name: "older minor", content: `{"version":"1.0.3","books":[]}`},
		{name: "newer major", content: `{"version":"2.0.0","books":[]}`, wantErr: ErrUnsupportedVersion},
		{name: "garbage version", content: `{"version":"banana","books":[]}`, wantErr: ErrUnsupportedVersion},
		{name: "corrupted json", content: `{"books":`, wantErr: ErrStoreCorrupted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "library.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			store, err := NewFileStore(path)
			require.NoError(t, err)

			_, err = store.List(context.Background())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestFileStore_WriteUpgradesVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"books":[{"hash":"a1"}]}`), 0o600))

	store, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), Book{Hash: "b2"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"version": "`+FileStoreVersion+`"`)

	_, err = os.Stat(path + ".lock")
	assert.ErrorIs(t, err, os.ErrNotExist, "lock released")
}

func TestRemoveStaleLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "library.json.lock")
	require.NoError(t, os.WriteFile(lockPath, []byte("999999999"), 0o600))

	assert.False(t, removeStaleLock(lockPath), "fresh lock is kept")

	old := time.Now().Add(-2 * staleLockAge)
	require.NoError(t, os.Chtimes(lockPath, old, old))
	assert.True(t, removeStaleLock(lockPath), "old lock of dead pid is removed")

	_, err := os.Stat(lockPath)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(BackendFile, filepath.Join(dir, "library.json"))
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(BackendSQLite, filepath.Join(dir, "library.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open("postgres", "x")
	require.Error(t, err)
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.epub")
	require.NoError(t, os.WriteFile(path, []byte("same bytes"), 0o600))

	h1, err := HashFile(path)
	require.NoError(t, err)
	h2, err := HashFile(path)
	require.NoError(t, err)

	assert.Len(t, h1, 32)
	assert.Equal(t, h1, h2)

	_, err = HashFile(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
