package sqlite

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/crux"
)

// DefaultTTL is how long a cached page is served before it is refetched.
const DefaultTTL = 24 * time.Hour

// Ensure CachingFetcher implements crux.Fetcher at compile time.
var _ crux.Fetcher = (*CachingFetcher)(nil)

// CachingFetcher serves pages from a PageCache and falls back to another
// Fetcher for missing or stale entries. Failed fetches are not cached.
type CachingFetcher struct {
	next   crux.Fetcher
	cache  *PageCache
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// FetcherOption configures a CachingFetcher.
type FetcherOption func(*CachingFetcher)

// WithTTL sets how long entries stay fresh. Zero keeps entries forever.
func WithTTL(ttl time.Duration) FetcherOption {
	return func(f *CachingFetcher) {
		f.ttl = ttl
	}
}

// WithClock sets the time source used for freshness checks.
func WithClock(now func() time.Time) FetcherOption {
	return func(f *CachingFetcher) {
		f.now = now
	}
}

// WithLogger sets the logger reporting failed cache writes.
func WithLogger(logger *slog.Logger) FetcherOption {
	return func(f *CachingFetcher) {
		f.logger = logger
	}
}

// NewCachingFetcher creates a new CachingFetcher.
func NewCachingFetcher(next crux.Fetcher, cache *PageCache, opts ...FetcherOption) *CachingFetcher {
	f := &CachingFetcher{
		next:   next,
		cache:  cache,
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the cached page for url when it is fresh and fetches and
// stores it otherwise. A failed write is logged and the fetched page is
// still returned.
func (f *CachingFetcher) Fetch(ctx context.Context, url string) (*crux.Page, error) {
	cached, err := f.cache.FindPage(ctx, url)
	switch {
	case err == nil && f.fresh(cached):
		page := cached.Page
		return &page, nil
	case err != nil && crux.ErrorCode(err) != crux.ENOTFOUND:
		return nil, err
	}

	page, err := f.next.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if _, err := f.cache.SavePage(ctx, url, page, f.now()); err != nil {
		f.logger.Warn("cache save", "url", url, "err", err)
	}
	return page, nil
}

func (f *CachingFetcher) fresh(p *CachedPage) bool {
	return f.ttl <= 0 || f.now().Sub(p.FetchedAt) < f.ttl
}
