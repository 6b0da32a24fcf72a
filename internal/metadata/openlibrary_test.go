package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/shelfview/internal/library"
)

const booksResponse = `{
  "ISBN:9780441172719": {
    "title": "Dune",
    "publishers": [{"name": "Ace"}],
    "publish_date": "1990",
    "authors": [{"name": "Frank Herbert", "url": "https://openlibrary.org/authors/OL79034A"}],
    "subjects": [{"name": "Science Fiction"}, {"name": "Ecology"}],
    "identifiers": {"isbn_13": ["9780441172719"], "isbn_10": ["0441172717"]},
    "cover": {"large": "https://covers.openlibrary.org/b/id/1-L.jpg"}
  }
}`

const searchResponse = `{
  "numFound": 1,
  "docs": [{
    "key": "/works/OL893415W",
    "title": "Dune",
    "author_name": ["Frank Herbert"],
    "publisher": ["Chilton"],
    "first_publish_year": 1965,
    "language": ["eng"],
    "subject": ["Fiction"],
    "isbn": ["0441172717", "9780441172719"],
    "cover_i": 42
  }]
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *OpenLibraryClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewOpenLibraryClient(
		OpenLibraryConfig{BaseURL: srv.URL, MaxRetries: 2},
		WithBackoffBase(time.Millisecond),
	)
}

func TestOpenLibrary_LookupByISBN(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		assert.Contains(t, r.Header.Get("User-Agent"), "shelfview/")
		switch r.URL.Path {
		case "/api/books":
			assert.Equal(t, "ISBN:9780441172719", r.URL.Query().Get("bibkeys"))
			assert.Equal(t, "data", r.URL.Query().Get("jscmd"))
			_, _ = w.Write([]byte(booksResponse))
		case "/search.json":
			assert.Equal(t, "9780441172719", r.URL.Query().Get("isbn"))
			_, _ = w.Write([]byte(searchResponse))
		default:
			http.NotFound(w, r)
		}
	})

	meta, err := client.Lookup(context.Background(), library.Book{Hash: "h", ISBN: "978-0-441-17271-9"})
	require.NoError(t, err)

	assert.Equal(t, []string{"/api/books", "/search.json"}, paths, "search fills the missing language")
	assert.Equal(t, "Ace", meta.Publisher, "books API wins over search")
	assert.Equal(t, "1990", meta.Published)
	assert.Equal(t, "eng", meta.Language)
	assert.Equal(t, "9780441172719", meta.Identifier)
	assert.Equal(t, []string{"Science Fiction", "Ecology"}, meta.Subjects)
	assert.Equal(t, "Frank Herbert", meta.Author)
}

func TestOpenLibrary_LookupByTitle(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "Dune", r.URL.Query().Get("title"))
		assert.Equal(t, "Frank Herbert", r.URL.Query().Get("author"))
		_, _ = w.Write([]byte(searchResponse))
	})

	meta, err := client.Lookup(context.Background(), library.Book{Hash: "h", Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)
	assert.Equal(t, "Chilton", meta.Publisher)
	assert.Equal(t, "1965", meta.Published)
	assert.Equal(t, "9780441172719", meta.Identifier, "ISBN-13 preferred")
	assert.Equal(t, "https://covers.openlibrary.org/b/id/42-L.jpg", meta.CoverURL)
}

func TestOpenLibrary_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/books":
			_, _ = w.Write([]byte(`{}`))
		default:
			_, _ = w.Write([]byte(`{"numFound":0,"docs":[]}`))
		}
	})

	_, err := client.Lookup(context.Background(), library.Book{Hash: "h", ISBN: "9780441172719"})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = client.Lookup(context.Background(), library.Book{Hash: "h"})
	require.ErrorIs(t, err, ErrNotFound, "no ISBN and no title")
}

func TestOpenLibrary_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(searchResponse))
	})

	doc, err := client.Search(context.Background(), url.Values{"title": {"Dune"}})
	require.NoError(t, err)
	assert.Equal(t, "Dune", doc.Title)
	assert.Equal(t, int32(3), calls.Load())
}

func TestOpenLibrary_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Search(context.Background(), url.Values{"title": {"Dune"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 retries")
	assert.Equal(t, int32(3), calls.Load())
}

func TestOpenLibrary_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad query"))
	})

	_, err := client.Search(context.Background(), url.Values{"title": {"Dune"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad query")
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenLibrary_ContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Search(ctx, url.Values{"title": {"Dune"}})
	require.ErrorIs(t, err, context.Canceled)
}
