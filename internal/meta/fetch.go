package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"stremsync/internal/addon"
	"stremsync/internal/logging"
)

// ErrUnavailable marks lookups no installed addon could answer.
var ErrUnavailable = errors.New("metadata unavailable")

const defaultCacheAge = 24 * time.Hour

// Source is the slice of the Stremio client the fetcher needs.
type Source interface {
	AddonCollection(ctx context.Context, refresh bool) ([]*addon.Addon, error)
	Get(ctx context.Context, url string, out any) error
}

// Cache persists fetched metadata between runs. A typed nil is fine;
// the fetcher also runs without one.
type Cache interface {
	Get(ctx context.Context, id string, maxAge time.Duration) ([]byte, bool, error)
	Put(ctx context.Context, id, mediaType string, payload []byte) error
}

// Fetcher resolves metadata ids against every installed addon that
// declares the meta resource for the requested type and id.
type Fetcher struct {
	source   Source
	cache    Cache
	cacheAge time.Duration
	logger   *slog.Logger
}

type Option func(*Fetcher)

// WithCache serves cached responses younger than maxAge and stores
// every merged fetch. A maxAge of zero keeps the default.
func WithCache(cache Cache, maxAge time.Duration) Option {
	return func(f *Fetcher) {
		f.cache = cache
		if maxAge > 0 {
			f.cacheAge = maxAge
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logging.NewComponentLogger(logger, "meta")
		}
	}
}

func NewFetcher(source Source, opts ...Option) *Fetcher {
	f := &Fetcher{
		source:   source,
		cacheAge: defaultCacheAge,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the merged metadata for id. Addons are queried
// concurrently and their responses merged in collection order, so the
// user's addon priority decides conflicting fields. refresh skips the
// cache read, re-pulls the addon collection, and still refills the
// cache.
func (f *Fetcher) Fetch(ctx context.Context, id, mediaType string, refresh bool) (*Meta, error) {
	if !refresh {
		if cached := f.fromCache(ctx, id); cached != nil {
			return cached, nil
		}
	}

	addons, err := f.source.AddonCollection(ctx, refresh)
	if err != nil {
		return nil, err
	}
	serving := addon.Filter(addons, "meta", mediaType, id)
	if len(serving) == 0 {
		return nil, fmt.Errorf("%w: no installed addon serves meta for %s/%s", ErrUnavailable, mediaType, id)
	}

	responses := make([]*Meta, len(serving))
	var wg sync.WaitGroup
	for i, a := range serving {
		wg.Add(1)
		go func(idx int, a *addon.Addon) {
			defer wg.Done()
			var out struct {
				Meta *Meta `json:"meta"`
			}
			url := fmt.Sprintf("%s/meta/%s/%s.json", a.BaseURL(), mediaType, id)
			if err := f.source.Get(ctx, url, &out); err != nil {
				f.logger.Warn("meta addon request failed",
					logging.String("addon", a.Manifest.ID),
					logging.String(logging.FieldItemID, id),
					logging.Error(err))
				return
			}
			responses[idx] = out.Meta
		}(i, a)
	}
	wg.Wait()

	merged := mergeResponses(responses)
	if merged == nil {
		return nil, fmt.Errorf("%w: all %d meta addons failed for %s/%s", ErrUnavailable, len(serving), mediaType, id)
	}
	f.toCache(ctx, id, mediaType, merged)
	return merged, nil
}

// mergeResponses folds the per-addon responses in priority order,
// earliest first. Failed fetches arrive as nil entries and are
// skipped.
func mergeResponses(responses []*Meta) *Meta {
	var merged *Meta
	for _, r := range responses {
		if r == nil {
			continue
		}
		if merged == nil {
			clone := *r
			merged = &clone
			continue
		}
		merged.fillFrom(r)
	}
	return merged
}

func (f *Fetcher) fromCache(ctx context.Context, id string) *Meta {
	if f.cache == nil {
		return nil
	}
	payload, ok, err := f.cache.Get(ctx, id, f.cacheAge)
	if err != nil {
		f.logger.Warn("metadata cache read failed", logging.String(logging.FieldItemID, id), logging.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	var m Meta
	if err := json.Unmarshal(payload, &m); err != nil {
		f.logger.Warn("discarding undecodable cached metadata", logging.String(logging.FieldItemID, id), logging.Error(err))
		return nil
	}
	return &m
}

func (f *Fetcher) toCache(ctx context.Context, id, mediaType string, m *Meta) {
	if f.cache == nil {
		return
	}
	payload, err := json.Marshal(m)
	if err != nil {
		f.logger.Warn("metadata cache encode failed", logging.String(logging.FieldItemID, id), logging.Error(err))
		return
	}
	if err := f.cache.Put(ctx, id, mediaType, payload); err != nil {
		f.logger.Warn("metadata cache write failed", logging.String(logging.FieldItemID, id), logging.Error(err))
	}
}
