package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/crux"
	"github.com/fwojciec/crux/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCache_SavePage(t *testing.T) {
	t.Parallel()

	t.Run("stores page with hash and timestamp", func(t *testing.T) {
		t.Parallel()

		cache := sqlite.NewPageCache(setupTestDB(t))
		ctx := context.Background()
		at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

		saved, err := cache.SavePage(ctx, "https://example.com/a",
			&crux.Page{URL: "https://example.com/a/", HTML: "<p>A</p>"}, at)
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)
		assert.Len(t, saved.ContentHash, 16)

		found, err := cache.FindPage(ctx, "https://example.com/a")
		require.NoError(t, err)
		assert.Equal(t, saved.ID, found.ID)
		assert.Equal(t, "https://example.com/a/", found.Page.URL)
		assert.Equal(t, "<p>A</p>", found.Page.HTML)
		assert.Equal(t, saved.ContentHash, found.ContentHash)
		assert.True(t, at.Equal(found.FetchedAt))
	})

	t.Run("replaces existing entry and keeps its ID", func(t *testing.T) {
		t.Parallel()

		cache := sqlite.NewPageCache(setupTestDB(t))
		ctx := context.Background()

		first, err := cache.SavePage(ctx, "https://example.com/a", &crux.Page{HTML: "old"}, time.Now())
		require.NoError(t, err)
		second, err := cache.SavePage(ctx, "https://example.com/a", &crux.Page{HTML: "new"}, time.Now())
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.NotEqual(t, first.ContentHash, second.ContentHash)

		found, err := cache.FindPage(ctx, "https://example.com/a")
		require.NoError(t, err)
		assert.Equal(t, "new", found.Page.HTML)

		n, err := cache.CountPages(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("gives identical content identical hashes", func(t *testing.T) {
		t.Parallel()

		cache := sqlite.NewPageCache(setupTestDB(t))
		ctx := context.Background()

		a, err := cache.SavePage(ctx, "https://example.com/a", &crux.Page{HTML: "same"}, time.Now())
		require.NoError(t, err)
		b, err := cache.SavePage(ctx, "https://example.com/b", &crux.Page{HTML: "same"}, time.Now())
		require.NoError(t, err)

		assert.Equal(t, a.ContentHash, b.ContentHash)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("rejects missing url", func(t *testing.T) {
		t.Parallel()

		cache := sqlite.NewPageCache(setupTestDB(t))

		_, err := cache.SavePage(context.Background(), "", &crux.Page{}, time.Now())
		require.Error(t, err)
		assert.Equal(t, crux.EINVALID, crux.ErrorCode(err))
	})
}

func TestPageCache_FindPage(t *testing.T) {
	t.Parallel()

	t.Run("returns not found for unknown url", func(t *testing.T) {
		t.Parallel()

		cache := sqlite.NewPageCache(setupTestDB(t))

		_, err := cache.FindPage(context.Background(), "https://example.com/missing")
		require.Error(t, err)
		assert.Equal(t, crux.ENOTFOUND, crux.ErrorCode(err))
	})
}

func TestPageCache_DeletePage(t *testing.T) {
	t.Parallel()

	t.Run("removes entry", func(t *testing.T) {
		t.Parallel()

		cache := sqlite.NewPageCache(setupTestDB(t))
		ctx := context.Background()
		_, err := cache.SavePage(ctx, "https://example.com/a", &crux.Page{HTML: "x"}, time.Now())
		require.NoError(t, err)

		require.NoError(t, cache.DeletePage(ctx, "https://example.com/a"))

		_, err = cache.FindPage(ctx, "https://example.com/a")
		assert.Equal(t, crux.ENOTFOUND, crux.ErrorCode(err))
	})

	t.Run("returns not found for unknown url", func(t *testing.T) {
		t.Parallel()

		cache := sqlite.NewPageCache(setupTestDB(t))

		err := cache.DeletePage(context.Background(), "https://example.com/missing")
		assert.Equal(t, crux.ENOTFOUND, crux.ErrorCode(err))
	})
}

func TestPageCache_PrunePages(t *testing.T) {
	t.Parallel()

	t.Run("removes entries older than cutoff", func(t *testing.T) {
		t.Parallel()

		cache := sqlite.NewPageCache(setupTestDB(t))
		ctx := context.Background()
		now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

		_, err := cache.SavePage(ctx, "https://example.com/old", &crux.Page{HTML: "o"}, now.Add(-48*time.Hour))
		require.NoError(t, err)
		_, err = cache.SavePage(ctx, "https://example.com/new", &crux.Page{HTML: "n"}, now)
		require.NoError(t, err)

		removed, err := cache.PrunePages(ctx, now.Add(-24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)

		_, err = cache.FindPage(ctx, "https://example.com/new")
		require.NoError(t, err)
		_, err = cache.FindPage(ctx, "https://example.com/old")
		assert.Equal(t, crux.ENOTFOUND, crux.ErrorCode(err))
	})
}
