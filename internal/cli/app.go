package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rshade/shelfview/internal/config"
	"github.com/rshade/shelfview/internal/i18n"
	"github.com/rshade/shelfview/internal/library"
	"github.com/rshade/shelfview/internal/logging"
	"github.com/rshade/shelfview/internal/metadata"
	"github.com/rshade/shelfview/internal/metadata/cache"
	"github.com/rshade/shelfview/internal/tui/detail"
	"github.com/rshade/shelfview/pkg/version"
)

// ErrAmbiguousHash is returned when a hash prefix matches more than one book.
var ErrAmbiguousHash = errors.New("hash prefix matches more than one book")

// app holds the collaborators shared by the commands.
type app struct {
	cfg     *config.Config
	store   library.Store
	cache   *cache.FileStore
	service *metadata.Service
	tr      i18n.Translator
	format  i18n.Formatters
}

// newApp opens the library store and builds the metadata service from cfg.
func newApp(cfg *config.Config) (*app, error) {
	store, err := library.Open(cfg.Library.Backend, cfg.Library.Path,
		library.WithRemoveFiles(cfg.Library.RemoveFiles))
	if err != nil {
		return nil, fmt.Errorf("opening library: %w", err)
	}

	cacheCfg := cfg.Metadata.Cache
	metaCache, err := cache.NewFileStore(cacheCfg.Directory, cacheCfg.Enabled,
		time.Duration(cacheCfg.TTLSeconds)*time.Second)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("opening metadata cache: %w", err)
	}

	sources := []metadata.Source{metadata.NewEPUBSource()}
	if ol := cfg.Metadata.OpenLibrary; ol.Enabled {
		sources = append(sources, metadata.NewOpenLibraryClient(metadata.OpenLibraryConfig{
			BaseURL:           ol.BaseURL,
			RequestsPerSecond: ol.RequestsPerSecond,
			MaxRetries:        ol.MaxRetries,
			Timeout:           ol.Timeout,
			UserAgent:         "shelfview/" + version.GetVersion(),
		}, metadata.WithLogger(logging.ComponentLogger(baseLogger, "openlibrary"))))
	}

	return &app{
		cfg:   cfg,
		store: store,
		cache: metaCache,
		service: metadata.NewService(sources,
			metadata.WithCache(metaCache),
			metadata.WithServiceLogger(logging.ComponentLogger(baseLogger, "metadata"))),
		tr:     i18n.New(cfg.UI.Locale),
		format: i18n.NewFormatters(cfg.UI.Locale),
	}, nil
}

// Close releases the library store.
func (a *app) Close() error {
	return a.store.Close()
}

// detailDeps returns the collaborators of the detail view.
func (a *app) detailDeps(ctx context.Context) detail.Deps {
	return detail.Deps{
		Fetcher:      a.service,
		Deleter:      storeDeleter{store: a.store, service: a.service},
		Translate:    a.tr,
		Format:       a.format,
		LoadingDelay: a.cfg.UI.LoadingDelay,
		Logger:       baseLogger,
		Context:      ctx,
	}
}

// resolveBook finds a book by full hash or by a unique hash prefix.
func (a *app) resolveBook(ctx context.Context, hash string) (library.Book, error) {
	book, err := a.store.Get(ctx, hash)
	if err == nil || !errors.Is(err, library.ErrBookNotFound) {
		return book, err
	}

	books, err := a.store.List(ctx)
	if err != nil {
		return library.Book{}, err
	}
	var matches []library.Book
	for _, b := range books {
		if strings.HasPrefix(b.Hash, hash) {
			matches = append(matches, b)
		}
	}
	switch len(matches) {
	case 0:
		return library.Book{}, fmt.Errorf("%w: %s", library.ErrBookNotFound, hash)
	case 1:
		return matches[0], nil
	default:
		return library.Book{}, &ExitError{
			Code: ExitCodeUsage,
			Err:  fmt.Errorf("%w: %s (%d books)", ErrAmbiguousHash, hash, len(matches)),
		}
	}
}

// storeDeleter deletes books from the store and drops their cached metadata.
type storeDeleter struct {
	store   library.Store
	service *metadata.Service
}

// Delete implements detail.Deleter.
func (d storeDeleter) Delete(ctx context.Context, book library.Book) error {
	log := logging.FromContext(ctx)
	err := d.store.Delete(ctx, book.Hash)
	switch {
	case errors.Is(err, library.ErrFileNotRemoved):
		log.Warn().Ctx(ctx).Err(err).Str("hash", book.Hash).Msg("book deleted, file kept")
	case err != nil:
		return fmt.Errorf("deleting %s: %w", book.Hash, err)
	}
	if invalidateErr := d.service.Invalidate(book); invalidateErr != nil {
		log.Warn().Ctx(ctx).Err(invalidateErr).Str("hash", book.Hash).
			Msg("dropping cached metadata failed")
	}
	return nil
}
