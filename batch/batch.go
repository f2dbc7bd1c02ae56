// Package batch extracts many URLs concurrently. It bounds concurrency,
// skips duplicate URLs and reports progress, while the fetcher decorators
// in this package add per-domain rate limiting and retries.
package batch

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fwojciec/crux"
	"github.com/fwojciec/crux/bloom"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultConcurrency is the number of URLs extracted at once.
	DefaultConcurrency = 4

	// DefaultExpectedURLs sizes the Bloom filter used by Stream.
	DefaultExpectedURLs = 100_000

	// DefaultFalsePositiveRate is the chance that Stream skips a URL it
	// has not seen.
	DefaultFalsePositiveRate = 1e-6
)

// Extractor extracts a single page. *pipeline.Extractor implements it.
type Extractor interface {
	ExtractURL(ctx context.Context, rawURL string) (*crux.Resource, error)
}

// Item is the outcome of extracting one URL.
type Item struct {
	// Position is the index of the URL in the input.
	Position int

	URL      string
	Resource *crux.Resource
	Err      error

	// Duplicate is set when the URL repeats an earlier input and was not
	// extracted again.
	Duplicate bool
}

// ProgressEvent reports progress during a batch.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting batch progress. It may be
// called from several goroutines at once.
type ProgressFunc func(event ProgressEvent)

// Runner extracts URLs with bounded concurrency.
type Runner struct {
	extractor   Extractor
	concurrency int
	expected    uint
	fpRate      float64
	progress    ProgressFunc
	logger      *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency sets the number of URLs extracted at once.
// Defaults to DefaultConcurrency.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		r.concurrency = n
	}
}

// WithBloomEstimates sizes the duplicate filter used by Stream.
func WithBloomEstimates(expected uint, fpRate float64) Option {
	return func(r *Runner) {
		r.expected = expected
		r.fpRate = fpRate
	}
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(r *Runner) {
		r.progress = fn
	}
}

// WithLogger sets the logger. Defaults to discarding output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a new Runner.
func NewRunner(extractor Extractor, opts ...Option) *Runner {
	r := &Runner{
		extractor:   extractor,
		concurrency: DefaultConcurrency,
		expected:    DefaultExpectedURLs,
		fpRate:      DefaultFalsePositiveRate,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.concurrency <= 0 {
		r.concurrency = DefaultConcurrency
	}
	return r
}

// Run extracts urls and returns one Item per input, in input order. A URL
// repeating an earlier one, ignoring the fragment, is marked Duplicate.
// Items not started before ctx is done carry the context error.
func (r *Runner) Run(ctx context.Context, urls []string) []Item {
	items := make([]Item, len(urls))
	seen := make(exactSet, len(urls))
	total := len(urls)
	var completed atomic.Int64

	r.notify(ProgressEvent{Type: ProgressStarted, Total: total})

	g := new(errgroup.Group)
	g.SetLimit(r.concurrency)
	for i, u := range urls {
		items[i] = Item{Position: i, URL: u}
		if seen.TestAndAdd(dedupKey(u)) {
			items[i].Duplicate = true
			completed.Add(1)
			continue
		}
		if err := ctx.Err(); err != nil {
			items[i].Err = err
			completed.Add(1)
			continue
		}
		g.Go(func() error {
			items[i].Resource, items[i].Err = r.extract(ctx, u)
			r.report(items[i], int(completed.Add(1)), total)
			return nil
		})
	}
	_ = g.Wait()

	r.notify(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	return items
}

// Stream extracts URLs read from in until it is closed or ctx is done and
// sends each Item to the returned channel as soon as it is ready. URLs the
// Bloom filter has seen are dropped, so memory stays bounded for unbounded
// input at the cost of rarely dropping a new URL.
func (r *Runner) Stream(ctx context.Context, in <-chan string) <-chan Item {
	out := make(chan Item)
	seen := bloom.NewFilter(r.expected, r.fpRate)

	go func() {
		defer close(out)

		g := new(errgroup.Group)
		g.SetLimit(r.concurrency)
		position := 0
	loop:
		for {
			select {
			case <-ctx.Done():
				break loop
			case u, ok := <-in:
				if !ok {
					break loop
				}
				if seen.TestAndAdd(dedupKey(u)) {
					continue
				}
				item := Item{Position: position, URL: u}
				position++
				g.Go(func() error {
					item.Resource, item.Err = r.extract(ctx, u)
					select {
					case out <- item:
					case <-ctx.Done():
					}
					return nil
				})
			}
		}
		_ = g.Wait()
		r.logger.Debug("stream done", "urls", position, "unique", seen.EstimatedCount())
	}()

	return out
}

func (r *Runner) extract(ctx context.Context, u string) (res *crux.Resource, err error) {
	defer func(begin time.Time) {
		r.logger.Info("extract",
			"url", u,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.extractor.ExtractURL(ctx, u)
}

func (r *Runner) report(item Item, completed, total int) {
	event := ProgressEvent{
		Type:      ProgressCompleted,
		Completed: completed,
		Total:     total,
		URL:       item.URL,
	}
	if item.Err != nil {
		event.Type = ProgressFailed
		event.Error = item.Err
	}
	r.notify(event)
}

func (r *Runner) notify(event ProgressEvent) {
	if r.progress != nil {
		r.progress(event)
	}
}

// dedupKey identifies a URL for duplicate detection.
func dedupKey(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Host = strings.ToLower(u.Host)
	return u.String()
}

// exactSet is a duplicate filter without false positives for bounded input.
type exactSet map[string]struct{}

func (s exactSet) TestAndAdd(key string) bool {
	if _, ok := s[key]; ok {
		return true
	}
	s[key] = struct{}{}
	return false
}
