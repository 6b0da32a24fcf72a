package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/rshade/shelfview/internal/library"
	"github.com/rshade/shelfview/pkg/version"
)

const (
	defaultBaseURL     = "https://openlibrary.org"
	defaultTimeout     = 15 * time.Second
	defaultBackoffBase = time.Second
	searchFields       = "key,title,author_name,publisher,first_publish_year,publish_date,language,subject,isbn,cover_i"
	coverURLPattern    = "https://covers.openlibrary.org/b/id/%d-L.jpg"
	maxErrorBodyBytes  = 512
)

// errRetryable marks responses worth another attempt (429 and 5xx).
var errRetryable = errors.New("retryable response")

// OpenLibraryConfig configures OpenLibraryClient.
type OpenLibraryConfig struct {
	BaseURL           string
	RequestsPerSecond int
	MaxRetries        int
	Timeout           time.Duration
	UserAgent         string
}

// OpenLibraryClient queries the Open Library books and search APIs.
type OpenLibraryClient struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	limiter     *rate.Limiter
	maxRetries  int
	backoffBase time.Duration
	logger      zerolog.Logger
}

// OpenLibraryOption customizes an OpenLibraryClient.
type OpenLibraryOption func(*OpenLibraryClient)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) OpenLibraryOption {
	return func(ol *OpenLibraryClient) { ol.httpClient = c }
}

// WithBackoffBase sets the first retry delay; later retries double it.
func WithBackoffBase(d time.Duration) OpenLibraryOption {
	return func(ol *OpenLibraryClient) { ol.backoffBase = d }
}

// WithLogger attaches a logger.
func WithLogger(l zerolog.Logger) OpenLibraryOption {
	return func(ol *OpenLibraryClient) { ol.logger = l }
}

// NewOpenLibraryClient builds a client. Zero config values take defaults; a
// non-positive rate disables limiting.
func NewOpenLibraryClient(cfg OpenLibraryConfig, opts ...OpenLibraryOption) *OpenLibraryClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "shelfview/" + version.GetVersion()
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Every(time.Second / time.Duration(cfg.RequestsPerSecond))
	}

	c := &OpenLibraryClient{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:   cfg.UserAgent,
		limiter:     rate.NewLimiter(limit, 1),
		maxRetries:  max(cfg.MaxRetries, 0),
		backoffBase: defaultBackoffBase,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements Source.
func (c *OpenLibraryClient) Name() string {
	return "openlibrary"
}

// Lookup implements Source. Books with an ISBN are resolved through the books
// API; missing fields (and books without an ISBN) fall back to search.
func (c *OpenLibraryClient) Lookup(ctx context.Context, book library.Book) (*Metadata, error) {
	isbn := NormalizeISBN(book.ISBN)
	meta := &Metadata{}

	if isbn != "" {
		details, err := c.BookByISBN(ctx, isbn)
		switch {
		case err == nil:
			meta.Merge(details.toMetadata(isbn), "")
		case !errors.Is(err, ErrNotFound):
			return nil, err
		}
		if meta.IsComplete() {
			return meta, nil
		}
	}

	query := url.Values{}
	switch {
	case isbn != "":
		query.Set("isbn", isbn)
	case book.Title != "":
		query.Set("title", book.Title)
		if book.Author != "" {
			query.Set("author", book.Author)
		}
	default:
		return nil, ErrNotFound
	}

	doc, err := c.Search(ctx, query)
	switch {
	case err == nil:
		meta.Merge(doc.toMetadata(), "")
	case errors.Is(err, ErrNotFound):
	default:
		if meta.IsEmpty() {
			return nil, err
		}
		c.logger.Warn().Err(err).Str("isbn", isbn).Msg("open library search failed, using books API result")
	}

	if meta.IsEmpty() {
		return nil, ErrNotFound
	}
	return meta, nil
}

// BookDetails is one entry of api/books?jscmd=data.
type BookDetails struct {
	Title       string      `json:"title"`
	Subtitle    string      `json:"subtitle"`
	Publishers  []namedItem `json:"publishers"`
	PublishDate string      `json:"publish_date"`
	Authors     []namedItem `json:"authors"`
	Subjects    []namedItem `json:"subjects"`
	Identifiers struct {
		ISBN13 []string `json:"isbn_13"`
		ISBN10 []string `json:"isbn_10"`
	} `json:"identifiers"`
	Cover struct {
		Large  string `json:"large"`
		Medium string `json:"medium"`
	} `json:"cover"`
}

type namedItem struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

func (d *BookDetails) toMetadata(isbn string) *Metadata {
	m := &Metadata{
		Title:     d.Title,
		Published: d.PublishDate,
		CoverURL:  d.Cover.Large,
	}
	if d.Subtitle != "" {
		m.Title += ": " + d.Subtitle
	}
	if len(d.Publishers) > 0 {
		m.Publisher = d.Publishers[0].Name
	}
	m.Author = joinNames(d.Authors)
	for _, s := range d.Subjects {
		if s.Name != "" {
			m.Subjects = append(m.Subjects, s.Name)
		}
	}
	switch {
	case len(d.Identifiers.ISBN13) > 0:
		m.Identifier = d.Identifiers.ISBN13[0]
	case len(d.Identifiers.ISBN10) > 0:
		m.Identifier = d.Identifiers.ISBN10[0]
	default:
		m.Identifier = isbn
	}
	if m.CoverURL == "" {
		m.CoverURL = d.Cover.Medium
	}
	return m
}

func joinNames(items []namedItem) string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		if it.Name != "" {
			names = append(names, it.Name)
		}
	}
	return strings.Join(names, ", ")
}

// SearchDoc is one document of search.json.
type SearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorNames      []string `json:"author_name"`
	Publishers       []string `json:"publisher"`
	FirstPublishYear int      `json:"first_publish_year"`
	PublishDates     []string `json:"publish_date"`
	Languages        []string `json:"language"`
	Subjects         []string `json:"subject"`
	ISBN             []string `json:"isbn"`
	CoverID          int      `json:"cover_i"`
}

// SearchResponse matches search.json.
type SearchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []SearchDoc `json:"docs"`
}

func (d *SearchDoc) toMetadata() *Metadata {
	m := &Metadata{
		Title:    d.Title,
		Author:   strings.Join(d.AuthorNames, ", "),
		Subjects: d.Subjects,
	}
	if len(d.Publishers) > 0 {
		m.Publisher = d.Publishers[0]
	}
	switch {
	case len(d.PublishDates) > 0:
		m.Published = d.PublishDates[0]
	case d.FirstPublishYear > 0:
		m.Published = strconv.Itoa(d.FirstPublishYear)
	}
	if len(d.Languages) > 0 {
		m.Language = strings.TrimPrefix(d.Languages[0], "/languages/")
	}
	for _, raw := range d.ISBN {
		if isbn := NormalizeISBN(raw); len(isbn) == 13 {
			m.Identifier = isbn
			break
		}
	}
	if m.Identifier == "" && len(d.ISBN) > 0 {
		m.Identifier = d.ISBN[0]
	}
	if d.CoverID > 0 {
		m.CoverURL = fmt.Sprintf(coverURLPattern, d.CoverID)
	}
	return m
}

// BookByISBN fetches api/books?bibkeys=ISBN:<isbn>&jscmd=data.
func (c *OpenLibraryClient) BookByISBN(ctx context.Context, isbn string) (*BookDetails, error) {
	bibkey := "ISBN:" + isbn
	u := fmt.Sprintf("%s/api/books?bibkeys=%s&jscmd=data&format=json", c.baseURL, url.QueryEscape(bibkey))

	var res map[string]BookDetails
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}
	details, ok := res[bibkey]
	if !ok {
		return nil, ErrNotFound
	}
	return &details, nil
}

// Search returns the first search.json document for query.
func (c *OpenLibraryClient) Search(ctx context.Context, query url.Values) (*SearchDoc, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("fields", searchFields)
	q.Set("limit", "1")

	var res SearchResponse
	if err := c.get(ctx, c.baseURL+"/search.json?"+q.Encode(), &res); err != nil {
		return nil, err
	}
	if len(res.Docs) == 0 {
		return nil, ErrNotFound
	}
	return &res.Docs[0], nil
}

// get performs a rate-limited GET with exponential backoff on transport
// errors, 429 and 5xx responses.
func (c *OpenLibraryClient) get(ctx context.Context, u string, target any) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.backoffBase << (attempt - 1)
			c.logger.Debug().
				Ctx(ctx).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Err(lastErr).
				Msg("retrying open library request")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		err := c.do(ctx, u, target)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !errors.Is(err, errRetryable) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("open library request failed after %d retries: %w", c.maxRetries, lastErr)
}

func (c *OpenLibraryClient) do(ctx context.Context, u string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", errRetryable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d", errRetryable, resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("open library returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if decodeErr := json.NewDecoder(resp.Body).Decode(target); decodeErr != nil {
		return fmt.Errorf("decoding open library response: %w", decodeErr)
	}
	return nil
}
