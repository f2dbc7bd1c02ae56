package batch

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/fwojciec/crux"
	"golang.org/x/time/rate"
)

// DefaultRequestsPerSecond is the per-domain request rate.
const DefaultRequestsPerSecond = 2.0

// DomainLimiter provides per-domain rate limiting using token buckets.
// Requests to different domains proceed independently.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewDomainLimiter creates a new DomainLimiter allowing rps requests per
// second to each domain with a burst of 1.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until the rate limit allows a request to the domain.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

// Ensure LimitedFetcher implements crux.Fetcher at compile time.
var _ crux.Fetcher = (*LimitedFetcher)(nil)

// LimitedFetcher waits for a DomainLimiter before each fetch.
type LimitedFetcher struct {
	next    crux.Fetcher
	limiter *DomainLimiter
}

// NewLimitedFetcher creates a new LimitedFetcher.
func NewLimitedFetcher(next crux.Fetcher, limiter *DomainLimiter) *LimitedFetcher {
	return &LimitedFetcher{next: next, limiter: limiter}
}

// Fetch waits for the domain of rawURL and then delegates.
func (f *LimitedFetcher) Fetch(ctx context.Context, rawURL string) (*crux.Page, error) {
	if err := f.limiter.Wait(ctx, domainOf(rawURL)); err != nil {
		return nil, crux.WrapError(crux.EFETCH, err, "rate limit wait for %s", rawURL)
	}
	return f.next.Fetch(ctx, rawURL)
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
