package pipeline

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/fwojciec/crux"
	"github.com/fwojciec/crux/goquery"
	"golang.org/x/net/html"
)

// DefaultPlugins returns the default plugin order: canonical resolution
// first so later plugins see canonical content, then metadata.
func DefaultPlugins(fetcher crux.Fetcher, logger *slog.Logger) []crux.Plugin {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return []crux.Plugin{
		goquery.NewAmpPlugin(fetcher, goquery.WithRefetch(true), goquery.WithLogger(logger)),
		goquery.NewMetadataPlugin(),
	}
}

// Extractor fetches pages and runs a plugin chain over them. It holds no
// per-request state and is safe for concurrent use as long as its fetcher
// and plugins are.
type Extractor struct {
	fetcher crux.Fetcher
	plugins []crux.Plugin
	logger  *slog.Logger
	onError ErrorHandler
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithPlugins replaces the default plugin list. Calling it with no
// plugins leaves the chain empty.
func WithPlugins(plugins ...crux.Plugin) Option {
	return func(e *Extractor) {
		e.plugins = append([]crux.Plugin{}, plugins...)
	}
}

// WithLogger sets the logger. Defaults to discarding output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// WithErrorHandler sets the handler receiving plugin failures. Defaults to
// logging them.
func WithErrorHandler(h ErrorHandler) Option {
	return func(e *Extractor) {
		e.onError = h
	}
}

// NewExtractor creates a new Extractor fetching pages with fetcher.
func NewExtractor(fetcher crux.Fetcher, opts ...Option) *Extractor {
	e := &Extractor{
		fetcher: fetcher,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.plugins == nil {
		e.plugins = DefaultPlugins(fetcher, e.logger)
	}
	if e.onError == nil {
		e.onError = LogErrors(e.logger)
	}
	return e
}

// ExtractURL fetches rawURL and runs the plugin chain over it. A failed
// fetch is returned as an EFETCH error since nothing can be extracted.
func (e *Extractor) ExtractURL(ctx context.Context, rawURL string) (*crux.Resource, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, crux.Errorf(crux.EINVALID, "invalid url %q", rawURL)
	}
	u = crux.UnwrapRedirect(u)

	if e.fetcher == nil {
		return nil, crux.Errorf(crux.EINVALID, "no fetcher configured")
	}
	page, err := e.fetcher.Fetch(ctx, u.String())
	if err != nil {
		if crux.ErrorCode(err) == crux.EFETCH {
			return nil, err
		}
		return nil, crux.WrapError(crux.EFETCH, err, "fetch %s", u)
	}
	if page.URL != "" {
		if final, err := url.Parse(page.URL); err == nil && final.IsAbs() {
			u = final
		}
	}
	return e.ExtractHTML(ctx, u, strings.NewReader(page.HTML))
}

// ExtractHTML parses r and runs the plugin chain over it. pageURL may be
// nil when the address of the document is unknown. Malformed markup is
// parsed on a best-effort basis.
func (e *Extractor) ExtractHTML(ctx context.Context, pageURL *url.URL, r io.Reader) (*crux.Resource, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, crux.WrapError(crux.EINTERNAL, err, "read document")
	}
	seed := &crux.Resource{URL: pageURL, Document: doc}
	return Run(ctx, e.plugins, seed, WithRunErrorHandler(e.onError)), nil
}
