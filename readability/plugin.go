// Package readability provides a crux.Plugin backed by go-readability.
// It is an alternative to the article package for pages where Mozilla's
// Readability heuristics do better.
package readability

import (
	"context"
	"maps"
	"net/url"
	"strings"

	"github.com/fwojciec/crux"
	"github.com/go-shiori/go-readability"
)

// Ensure Plugin implements crux.Plugin at compile time.
var _ crux.Plugin = (*Plugin)(nil)

// Plugin extracts the article, title and byline with go-readability.
type Plugin struct {
	wpm int
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithWordsPerMinute sets the reading speed used for crux.DurationMs.
func WithWordsPerMinute(wpm int) Option {
	return func(p *Plugin) {
		p.wpm = wpm
	}
}

// NewPlugin creates a new Plugin.
func NewPlugin(opts ...Option) *Plugin {
	p := &Plugin{wpm: crux.DefaultWordsPerMinute}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CanHandle reports whether u plausibly points at an HTML page.
func (p *Plugin) CanHandle(u *url.URL) bool {
	return crux.IsLikelyArticle(u)
}

// Handle runs readability over the current document. A document without
// readable content contributes nothing.
func (p *Plugin) Handle(_ context.Context, r *crux.Resource) (*crux.Result, error) {
	if r == nil || r.Document == nil {
		return nil, nil
	}

	rawHTML, err := crux.RenderHTML(r.Document)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rawHTML) == "" {
		return nil, crux.Errorf(crux.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), r.URL)
	if err != nil {
		// readability fails on documents it cannot score.
		return nil, nil
	}

	node, err := crux.ParseFragment(article.Content)
	if err != nil {
		return nil, err
	}
	words := crux.WordCount(article.TextContent)
	if node == nil || words == 0 {
		return nil, nil
	}

	fields := map[crux.Field]string{
		crux.Title:  strings.TrimSpace(article.Title),
		crux.Author: strings.TrimSpace(article.Byline),
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
