package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fwojciec/crux"
	"github.com/google/uuid"
)

// CachedPage is a fetched page stored under the URL it was requested by.
type CachedPage struct {
	ID          string
	URL         string
	Page        crux.Page
	ContentHash string
	FetchedAt   time.Time
}

// PageCache stores fetched pages in SQLite.
type PageCache struct {
	db *DB
}

// NewPageCache creates a new PageCache.
func NewPageCache(db *DB) *PageCache {
	return &PageCache{db: db}
}

// SavePage stores page under url, replacing any earlier entry. The ID of an
// existing entry is kept.
func (s *PageCache) SavePage(ctx context.Context, url string, page *crux.Page, fetchedAt time.Time) (*CachedPage, error) {
	if url == "" {
		return nil, crux.Errorf(crux.EINVALID, "page url required")
	}
	if page == nil {
		return nil, crux.Errorf(crux.EINVALID, "page required")
	}

	cached := &CachedPage{
		ID:          uuid.New().String(),
		URL:         url,
		Page:        *page,
		ContentHash: hashContent(page.HTML),
		FetchedAt:   fetchedAt.UTC().Truncate(time.Second),
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO pages (id, url, final_url, html, content_hash, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			final_url = excluded.final_url,
			html = excluded.html,
			content_hash = excluded.content_hash,
			fetched_at = excluded.fetched_at
		RETURNING id
	`, cached.ID, cached.URL, page.URL, page.HTML, cached.ContentHash,
		cached.FetchedAt.Format(time.RFC3339)).Scan(&cached.ID)
	if err != nil {
		return nil, crux.WrapError(crux.EINTERNAL, err, "save page %s", url)
	}
	return cached, nil
}

// FindPage retrieves the entry stored under url.
func (s *PageCache) FindPage(ctx context.Context, url string) (*CachedPage, error) {
	var (
		cached    CachedPage
		fetchedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, url, final_url, html, content_hash, fetched_at
		FROM pages
		WHERE url = ?
	`, url).Scan(&cached.ID, &cached.URL, &cached.Page.URL, &cached.Page.HTML,
		&cached.ContentHash, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, crux.Errorf(crux.ENOTFOUND, "page not cached: %s", url)
	}
	if err != nil {
		return nil, crux.WrapError(crux.EINTERNAL, err, "find page %s", url)
	}

	cached.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at")
	if err != nil {
		return nil, err
	}
	return &cached, nil
}

// DeletePage removes the entry stored under url.
func (s *PageCache) DeletePage(ctx context.Context, url string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE url = ?`, url)
	if err != nil {
		return crux.WrapError(crux.EINTERNAL, err, "delete page %s", url)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return crux.WrapError(crux.EINTERNAL, err, "delete page %s", url)
	}
	if n == 0 {
		return crux.Errorf(crux.ENOTFOUND, "page not cached: %s", url)
	}
	return nil
}

// PrunePages removes entries fetched before cutoff and returns how many
// were removed.
func (s *PageCache) PrunePages(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE fetched_at < ?`,
		cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, crux.WrapError(crux.EINTERNAL, err, "prune pages")
	}
	return result.RowsAffected()
}

// CountPages returns the number of cached pages.
func (s *PageCache) CountPages(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&n); err != nil {
		return 0, crux.WrapError(crux.EINTERNAL, err, "count pages")
	}
	return n, nil
}
