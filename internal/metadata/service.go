package metadata

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/rshade/shelfview/internal/library"
	"github.com/rshade/shelfview/internal/metadata/cache"
)

// Cache is the subset of the file cache used by Service.
type Cache interface {
	Load(key string, v any) error
	Save(key string, v any) error
	Delete(key string) error
}

// Service resolves metadata from an ordered list of sources. Earlier sources
// win; later ones fill the gaps and are skipped once every displayed field is
// known.
type Service struct {
	sources []Source
	cache   Cache
	logger  zerolog.Logger
	group   singleflight.Group
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithCache stores resolved metadata in c. A nil cache disables caching.
func WithCache(c Cache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

// WithServiceLogger attaches a logger.
func WithServiceLogger(l zerolog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// NewService builds a Service over sources, consulted in order.
func NewService(sources []Source, opts ...ServiceOption) *Service {
	s := &Service{
		sources: sources,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch returns the merged metadata for book.
//
// Concurrent calls for the same book share one lookup. The shared lookup is
// detached from the caller's cancellation so a caller that gives up does not
// fail the others; each caller still returns as soon as its own ctx is done.
func (s *Service) Fetch(ctx context.Context, book library.Book) (*Metadata, error) {
	if book.Hash == "" {
		return nil, fmt.Errorf("%w: book has no hash", library.ErrInvalidBook)
	}
	key := cacheKey(book)
	log := s.logger.With().Str("book_hash", book.Hash).Logger()

	if meta, ok := s.fromCache(ctx, key, log); ok {
		return meta, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		return s.resolve(shared, book, key, log)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			log.Debug().Ctx(ctx).Msg("metadata lookup shared with concurrent caller")
		}
		meta, _ := res.Val.(*Metadata)
		return meta.clone(), nil
	}
}

// Invalidate drops the cached metadata for book.
func (s *Service) Invalidate(book library.Book) error {
	if s.cache == nil {
		return nil
	}
	err := s.cache.Delete(cacheKey(book))
	if errors.Is(err, cache.ErrCacheDisabled) {
		return nil
	}
	return err
}

func (s *Service) fromCache(ctx context.Context, key string, log zerolog.Logger) (*Metadata, bool) {
	if s.cache == nil {
		return nil, false
	}
	var meta Metadata
	err := s.cache.Load(key, &meta)
	switch {
	case err == nil:
		log.Debug().Ctx(ctx).Msg("metadata cache hit")
		return &meta, true
	case errors.Is(err, cache.ErrCacheNotFound), errors.Is(err, cache.ErrCacheExpired),
		errors.Is(err, cache.ErrCacheDisabled):
	default:
		log.Warn().Ctx(ctx).Err(err).Msg("metadata cache read failed")
	}
	return nil, false
}

func (s *Service) resolve(ctx context.Context, book library.Book, key string, log zerolog.Logger) (*Metadata, error) {
	merged := &Metadata{}
	var errs []error

	for _, src := range s.sources {
		if merged.IsComplete() {
			break
		}
		meta, err := src.Lookup(ctx, book)
		switch {
		case err == nil:
			merged.Merge(meta, src.Name())
			log.Debug().Ctx(ctx).Str("source", src.Name()).Msg("metadata source answered")
		case errors.Is(err, ErrNotFound):
			log.Debug().Ctx(ctx).Str("source", src.Name()).Msg("metadata source had nothing")
		default:
			log.Warn().Ctx(ctx).Err(err).Str("source", src.Name()).Msg("metadata source failed")
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
		}
	}

	if merged.IsEmpty() {
		if len(errs) > 0 {
			return nil, errors.Join(errs...)
		}
		return nil, ErrNoMetadata
	}

	if s.cache != nil {
		if err := s.cache.Save(key, merged); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
			log.Warn().Ctx(ctx).Err(err).Msg("metadata cache write failed")
		}
	}
	return merged, nil
}

// cacheKey changes whenever the book record changes, so edits to the book
// (a new ISBN, a replaced file) bypass stale entries.
func cacheKey(book library.Book) string {
	return "book:" + book.Hash + ":" + strconv.FormatInt(book.UpdatedAt.UnixNano(), 10)
}

func (m *Metadata) clone() *Metadata {
	if m == nil {
		return nil
	}
	out := *m
	out.Subjects = append([]string(nil), m.Subjects...)
	out.Sources = append([]string(nil), m.Sources...)
	return &out
}
