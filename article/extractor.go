// Package article isolates the main readable content of an HTML document.
//
// Extraction runs in three phases on a private copy of the document:
// preprocessing removes elements that never hold article text, scoring
// weighs candidate containers and selects the best one, and postprocessing
// cleans the selected fragment for reading.
package article

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/crux"
	"golang.org/x/net/html"
)

// Ensure Extractor implements crux.Plugin at compile time.
var _ crux.Plugin = (*Extractor)(nil)

// Article is the extracted main content of a document.
type Article struct {
	// Node is the cleaned article fragment, detached from the source tree.
	Node *html.Node

	// Words is the number of words in the fragment.
	Words int

	// ReadingTime is the estimated time needed to read the fragment.
	ReadingTime time.Duration
}

// Extractor selects the main content of a document.
type Extractor struct {
	weights Weights
	wpm     int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithWeights overrides the scoring constants.
func WithWeights(w Weights) Option {
	return func(e *Extractor) {
		e.weights = w
	}
}

// WithWordsPerMinute sets the reading speed used for ReadingTime.
// Defaults to crux.DefaultWordsPerMinute.
func WithWordsPerMinute(wpm int) Option {
	return func(e *Extractor) {
		e.wpm = wpm
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		weights: DefaultWeights(),
		wpm:     crux.DefaultWordsPerMinute,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the main content of doc. It reports false when the
// document holds nothing that looks like an article. doc is not modified.
func (e *Extractor) Extract(doc *html.Node) (*Article, bool) {
	if doc == nil {
		return nil, false
	}

	work := cloneTree(doc)
	preprocess(work)

	root := work
	if body := goquery.NewDocumentFromNode(work).Find("body").First(); body.Length() > 0 {
		root = body.Get(0)
	}

	node, _, ok := newScorer(root, e.weights).best()
	if !ok {
		return nil, false
	}
	node.Parent.RemoveChild(node)
	postprocess(node, e.weights)

	text := strings.TrimSpace(goquery.NewDocumentFromNode(node).Text())
	if text == "" {
		return nil, false
	}
	words := crux.WordCount(text)
	return &Article{
		Node:        node,
		Words:       words,
		ReadingTime: crux.ReadingTime(words, e.wpm),
	}, true
}

// CanHandle reports whether u plausibly points at an HTML page.
func (e *Extractor) CanHandle(u *url.URL) bool {
	return crux.IsLikelyArticle(u)
}

// Handle contributes the article and its reading time in milliseconds.
func (e *Extractor) Handle(_ context.Context, r *crux.Resource) (*crux.Result, error) {
	if r == nil || r.Document == nil {
		return nil, nil
	}
	a, ok := e.Extract(r.Document)
	if !ok {
		return nil, nil
	}
	return crux.Contribute(&crux.Resource{
		Article: a.Node,
		Objects: map[crux.Field]any{crux.DurationMs: a.ReadingTime.Milliseconds()},
	}), nil
}
