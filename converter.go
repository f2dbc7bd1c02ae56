package crux

import "net/url"

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown. Relative links and
	// images are resolved against base when it is not nil.
	Convert(html string, base *url.URL) (string, error)
}
