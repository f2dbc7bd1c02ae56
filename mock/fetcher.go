package mock

import (
	"context"

	"github.com/fwojciec/crux"
)

var _ crux.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of crux.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*crux.Page, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*crux.Page, error) {
	return f.FetchFn(ctx, url)
}
