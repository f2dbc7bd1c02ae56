package crux

import "context"

// Page is a fetched HTML document.
type Page struct {
	// URL is the final address after redirects.
	URL string

	// HTML is the response body decoded to UTF-8.
	HTML string
}

// Fetcher retrieves HTML documents.
type Fetcher interface {
	// Fetch retrieves the page at url. The context controls cancellation.
	// Failures are reported with the EFETCH code, including non-2xx
	// responses and content types that are not HTML.
	Fetch(ctx context.Context, url string) (*Page, error)
}
