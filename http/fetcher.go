// Package http provides an HTTP implementation of crux.Fetcher and
// plugins that need direct HTTP access.
package http

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/crux"
	"golang.org/x/net/html/charset"
)

const (
	// DefaultFetchTimeout is the default timeout for HTTP requests.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultMaxBodySize caps the number of bytes read from a response.
	DefaultMaxBodySize = 10 << 20

	// DefaultMaxRedirects is the number of redirects followed per request.
	DefaultMaxRedirects = 10

	// DefaultUserAgent identifies requests made by the Fetcher.
	DefaultUserAgent = "Mozilla/5.0 (compatible; crux/1.0; +https://github.com/fwojciec/crux)"
)

// Ensure Fetcher implements crux.Fetcher at compile time.
var _ crux.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML documents over HTTP. A single Fetcher shares one
// connection pool and is safe for concurrent use.
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	maxBodySize  int64
	maxRedirects int
	userAgent    string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithClient uses client instead of a client built by NewFetcher. The
// timeout and redirect options are ignored.
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithMaxBodySize caps the number of bytes read from a response.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

// WithMaxRedirects sets the number of redirects followed per request.
func WithMaxRedirects(n int) Option {
	return func(f *Fetcher) {
		f.maxRedirects = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		maxBodySize:  DefaultMaxBodySize,
		maxRedirects: DefaultMaxRedirects,
		userAgent:    DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		maxRedirects := f.maxRedirects
		f.client = &http.Client{
			Timeout:   f.timeout,
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		}
	}

	return f
}

// Client returns the underlying HTTP client so other components can share
// its connection pool.
func (f *Fetcher) Client() *http.Client {
	return f.client
}

// Fetch retrieves the document at url and decodes it to UTF-8.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*crux.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, crux.WrapError(crux.EFETCH, err, "invalid request for %s", url)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, crux.WrapError(crux.EFETCH, err, "fetch %s", url)
	}
	defer drain(resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, crux.WrapError(crux.EFETCH,
			crux.Errorf(crux.ENOTFOUND, "%s", http.StatusText(resp.StatusCode)),
			"HTTP %d for %s", resp.StatusCode, url)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, crux.Errorf(crux.EFETCH, "HTTP %d for %s", resp.StatusCode, url)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTML(contentType) {
		return nil, crux.WrapError(crux.EFETCH,
			crux.Errorf(crux.EUNSUPPORTED, "content type %q", contentType),
			"unsupported content for %s", url)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBodySize), contentType)
	if err != nil {
		return nil, crux.WrapError(crux.EFETCH, err, "decode %s", url)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, crux.WrapError(crux.EFETCH, err, "read %s", url)
	}

	return &crux.Page{
		URL:  resp.Request.URL.String(),
		HTML: string(b),
	}, nil
}

// Close releases idle connections held by the pool.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// isHTML reports whether contentType names an HTML document. Responses
// without a content type are accepted.
func isHTML(contentType string) bool {
	if strings.TrimSpace(contentType) == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch mediaType {
	case "text/html", "application/xhtml+xml":
		return true
	}
	return false
}

// drain discards the rest of body and closes it so the connection can be
// reused.
func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}
