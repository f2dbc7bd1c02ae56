package batch

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fwojciec/crux"
)

const (
	// DefaultRetries is the number of retries after a failed fetch.
	DefaultRetries = 3

	// DefaultInitialInterval is the first retry delay.
	DefaultInitialInterval = 500 * time.Millisecond

	// DefaultMaxInterval caps the retry delay.
	DefaultMaxInterval = 5 * time.Second
)

// Ensure RetryFetcher implements crux.Fetcher at compile time.
var _ crux.Fetcher = (*RetryFetcher)(nil)

// RetryFetcher retries transient fetch failures with exponential backoff.
type RetryFetcher struct {
	next            crux.Fetcher
	retries         uint64
	initialInterval time.Duration
	maxInterval     time.Duration
	retryable       func(error) bool
	onRetry         func(url string, err error, wait time.Duration)
}

// RetryOption configures a RetryFetcher.
type RetryOption func(*RetryFetcher)

// WithRetries sets the number of retries. Zero disables retrying.
func WithRetries(n uint64) RetryOption {
	return func(f *RetryFetcher) {
		f.retries = n
	}
}

// WithIntervals sets the first and the largest retry delay.
func WithIntervals(initial, ceiling time.Duration) RetryOption {
	return func(f *RetryFetcher) {
		f.initialInterval = initial
		f.maxInterval = ceiling
	}
}

// WithRetryIf sets the predicate selecting retryable errors.
// Defaults to Retryable.
func WithRetryIf(fn func(error) bool) RetryOption {
	return func(f *RetryFetcher) {
		f.retryable = fn
	}
}

// WithOnRetry sets a callback invoked before each retry.
func WithOnRetry(fn func(url string, err error, wait time.Duration)) RetryOption {
	return func(f *RetryFetcher) {
		f.onRetry = fn
	}
}

// NewRetryFetcher creates a new RetryFetcher.
func NewRetryFetcher(next crux.Fetcher, opts ...RetryOption) *RetryFetcher {
	f := &RetryFetcher{
		next:            next,
		retries:         DefaultRetries,
		initialInterval: DefaultInitialInterval,
		maxInterval:     DefaultMaxInterval,
		retryable:       Retryable,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Retryable reports whether err is a fetch failure that may succeed on a
// later attempt. Missing pages and non-HTML responses are not retried.
func Retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return crux.ErrorCode(err) == crux.EFETCH &&
		!crux.HasCode(err, crux.ENOTFOUND) &&
		!crux.HasCode(err, crux.EUNSUPPORTED)
}

// Fetch delegates to the wrapped fetcher, retrying retryable failures.
func (f *RetryFetcher) Fetch(ctx context.Context, url string) (*crux.Page, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.initialInterval
	b.MaxInterval = f.maxInterval
	b.MaxElapsedTime = 0

	bo := backoff.WithContext(backoff.WithMaxRetries(b, f.retries), ctx)

	var page *crux.Page
	op := func() error {
		p, err := f.next.Fetch(ctx, url)
		if err == nil {
			page = p
			return nil
		}
		if !f.retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	var notify backoff.Notify
	if f.onRetry != nil {
		notify = func(err error, wait time.Duration) { f.onRetry(url, err, wait) }
	}

	if err := backoff.RetryNotify(op, bo, notify); err != nil {
		return nil, err
	}
	return page, nil
}
