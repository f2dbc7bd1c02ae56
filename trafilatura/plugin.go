// Package trafilatura provides a crux.Plugin backed by go-trafilatura.
package trafilatura

import (
	"context"
	"maps"
	"net/url"
	"strings"

	"github.com/fwojciec/crux"
	"github.com/markusmobius/go-trafilatura"
)

// Ensure Plugin implements crux.Plugin at compile time.
var _ crux.Plugin = (*Plugin)(nil)

// Plugin extracts the article with trafilatura, falling back to its
// readability and dom-distiller ports when the main heuristics find
// nothing.
type Plugin struct {
	wpm      int
	fallback bool
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithWordsPerMinute sets the reading speed used for crux.DurationMs.
func WithWordsPerMinute(wpm int) Option {
	return func(p *Plugin) {
		p.wpm = wpm
	}
}

// WithFallback controls the fallback extractors. Defaults to true.
func WithFallback(enabled bool) Option {
	return func(p *Plugin) {
		p.fallback = enabled
	}
}

// NewPlugin creates a new Plugin.
func NewPlugin(opts ...Option) *Plugin {
	p := &Plugin{wpm: crux.DefaultWordsPerMinute, fallback: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CanHandle reports whether u plausibly points at an HTML page.
func (p *Plugin) CanHandle(u *url.URL) bool {
	return crux.IsLikelyArticle(u)
}

// Handle runs trafilatura over the current document.
func (p *Plugin) Handle(_ context.Context, r *crux.Resource) (*crux.Result, error) {
	if r == nil || r.Document == nil {
		return nil, nil
	}

	rawHTML, err := crux.RenderHTML(r.Document)
	if err != nil {
		return nil, err
	}

	opts := trafilatura.Options{
		OriginalURL:    r.URL,
		EnableFallback: p.fallback,
	}
	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, crux.WrapError(crux.EINTERNAL, err, "trafilatura")
	}
	if result == nil || result.ContentNode == nil {
		return nil, nil
	}

	// Round-trip so the fragment shares nothing with trafilatura's tree.
	contentHTML, err := crux.RenderHTML(result.ContentNode)
	if err != nil {
		return nil, err
	}
	node, err := crux.ParseFragment(contentHTML)
	if err != nil {
		return nil, err
	}
	words := crux.WordCount(result.ContentText)
	if node == nil || words == 0 {
		return nil, nil
	}

	fields := map[crux.Field]string{
		crux.Title:  strings.TrimSpace(result.Metadata.Title),
		crux.Author: strings.TrimSpace(result.Metadata.Author),
	}
	maps.DeleteFunc(fields, func(_ crux.Field, v string) bool { return v == "" })

	return crux.Contribute(&crux.Resource{
		Article: node,
		Fields:  fields,
		Objects: map[crux.Field]any{
			crux.DurationMs: crux.ReadingTime(words, p.wpm).Milliseconds(),
		},
	}), nil
}
