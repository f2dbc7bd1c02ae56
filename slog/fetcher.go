// Package slog provides logging decorators for crux services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/crux"
)

// Ensure LoggingFetcher implements crux.Fetcher.
var _ crux.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging.
type LoggingFetcher struct {
	next   crux.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next crux.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (page *crux.Page, err error) {
	defer func(begin time.Time) {
		var (
			bytes int
			final string
		)
		if page != nil {
			bytes, final = len(page.HTML), page.URL
		}
		f.logger.Info("fetch",
			"url", url,
			"final", final,
			"bytes", bytes,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}
