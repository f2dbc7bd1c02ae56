package pipeline

import (
	"context"
	"net/url"

	"github.com/fwojciec/crux"
)

// Ensure MarkdownPlugin implements crux.Plugin at compile time.
var _ crux.Plugin = (*MarkdownPlugin)(nil)

// MarkdownPlugin renders the extracted article as Markdown. It must run
// after an article plugin and contributes nothing when no article exists.
type MarkdownPlugin struct {
	converter crux.Converter
}

// NewMarkdownPlugin creates a new MarkdownPlugin.
func NewMarkdownPlugin(converter crux.Converter) *MarkdownPlugin {
	return &MarkdownPlugin{converter: converter}
}

// CanHandle accepts every page; Handle checks for an article.
func (p *MarkdownPlugin) CanHandle(_ *url.URL) bool {
	return true
}

// Handle converts r.Article and stores the result under crux.Markdown.
func (p *MarkdownPlugin) Handle(_ context.Context, r *crux.Resource) (*crux.Result, error) {
	if r == nil || r.Article == nil {
		return nil, nil
	}

	articleHTML, err := crux.RenderHTML(r.Article)
	if err != nil {
		return nil, err
	}
	md, err := p.converter.Convert(articleHTML, r.URL)
	if err != nil {
		return nil, err
	}
	if md == "" {
		return nil, nil
	}
	return crux.Contribute(&crux.Resource{
		Fields: map[crux.Field]string{crux.Markdown: md},
	}), nil
}
