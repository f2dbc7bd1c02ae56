package batch_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/crux"
	"github.com/fwojciec/crux/batch"
	"github.com/fwojciec/crux/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainLimiter(t *testing.T) {
	t.Parallel()

	t.Run("allows immediate request when under limit", func(t *testing.T) {
		t.Parallel()

		limiter := batch.NewDomainLimiter(10)

		start := time.Now()
		err := limiter.Wait(context.Background(), "example.com")
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.Less(t, elapsed, 50*time.Millisecond, "first request should be immediate")
	})

	t.Run("rate limits requests to same domain", func(t *testing.T) {
		t.Parallel()

		limiter := batch.NewDomainLimiter(10)

		err := limiter.Wait(context.Background(), "example.com")
		require.NoError(t, err)

		start := time.Now()
		err = limiter.Wait(context.Background(), "example.com")
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.GreaterOrEqual(t, elapsed, 80*time.Millisecond, "should wait for rate limit")
	})

	t.Run("different domains have independent limits", func(t *testing.T) {
		t.Parallel()

		limiter := batch.NewDomainLimiter(10)

		err := limiter.Wait(context.Background(), "example.com")
		require.NoError(t, err)

		start := time.Now()
		err = limiter.Wait(context.Background(), "other.com")
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.Less(t, elapsed, 50*time.Millisecond, "different domain should not wait")
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		limiter := batch.NewDomainLimiter(1)

		err := limiter.Wait(context.Background(), "example.com")
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err = limiter.Wait(ctx, "example.com")
		assert.Error(t, err, "should fail when context times out")
	})

	t.Run("concurrent requests to one domain all complete", func(t *testing.T) {
		t.Parallel()

		limiter := batch.NewDomainLimiter(100)

		var (
			wg        sync.WaitGroup
			completed atomic.Int32
		)
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := limiter.Wait(context.Background(), "example.com"); err == nil {
					completed.Add(1)
				}
			}()
		}

		wg.Wait()
		assert.Equal(t, int32(5), completed.Load(), "all requests should complete")
	})
}

func TestLimitedFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("spaces requests to the same host", func(t *testing.T) {
		t.Parallel()

		inner := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*crux.Page, error) {
				return &crux.Page{URL: url}, nil
			},
		}
		fetcher := batch.NewLimitedFetcher(inner, batch.NewDomainLimiter(10))

		_, err := fetcher.Fetch(context.Background(), "https://example.com/a")
		require.NoError(t, err)

		start := time.Now()
		_, err = fetcher.Fetch(context.Background(), "https://EXAMPLE.com/b")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	})

	t.Run("returns fetch error when wait is cancelled", func(t *testing.T) {
		t.Parallel()

		called := false
		inner := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (*crux.Page, error) {
				called = true
				return &crux.Page{}, nil
			},
		}
		limiter := batch.NewDomainLimiter(1)
		require.NoError(t, limiter.Wait(context.Background(), "example.com"))
		fetcher := batch.NewLimitedFetcher(inner, limiter)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := fetcher.Fetch(ctx, "https://example.com/a")
		require.Error(t, err)
		assert.Equal(t, crux.EFETCH, crux.ErrorCode(err))
		assert.False(t, called)
	})
}
