package goquery

import (
	"context"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/crux"
)

// Ensure plugins implement crux.Plugin at compile time.
var (
	_ crux.Plugin = (*MetadataPlugin)(nil)
	_ crux.Plugin = (*FaviconPlugin)(nil)
)

// MetadataPlugin extracts page metadata from standard meta and link tags.
type MetadataPlugin struct{}

// NewMetadataPlugin creates a new MetadataPlugin.
func NewMetadataPlugin() *MetadataPlugin {
	return &MetadataPlugin{}
}

// CanHandle reports whether u plausibly points at an HTML page.
func (p *MetadataPlugin) CanHandle(u *url.URL) bool {
	return crux.IsLikelyArticle(u)
}

// Handle extracts scalar fields and resolves URL fields against the
// canonical address, or the page address when none is declared.
func (p *MetadataPlugin) Handle(_ context.Context, r *crux.Resource) (*crux.Result, error) {
	if r == nil || r.Document == nil {
		return nil, nil
	}
	doc := goquery.NewDocumentFromNode(r.Document)

	base := r.URL
	canonical := CanonicalURL(doc)
	if u := crux.ResolveURL(r.URL, canonical); u != nil {
		base = u
		canonical = u.String()
	}

	return crux.Contribute(&crux.Resource{
		Fields: fields(map[crux.Field]string{
			crux.Title:         Title(doc),
			crux.CanonicalURL:  canonical,
			crux.Description:   Description(doc),
			crux.SiteName:      SiteName(doc),
			crux.ThemeColorHex: ThemeColor(doc),
			crux.KeywordsCSV:   Keywords(doc),
		}),
		URLs: map[crux.Field]*url.URL{
			crux.FaviconURL:     FaviconURL(doc, base),
			crux.BannerImageURL: ImageURL(doc, base),
			crux.FeedURL:        FeedURL(doc, base),
			crux.AmpURL:         AmpURL(doc, base),
			crux.VideoURL:       VideoURL(doc, base),
		},
	}), nil
}

// FaviconPlugin extracts only the favicon address.
type FaviconPlugin struct{}

// NewFaviconPlugin creates a new FaviconPlugin.
func NewFaviconPlugin() *FaviconPlugin {
	return &FaviconPlugin{}
}

// CanHandle reports whether u plausibly points at an HTML page.
func (p *FaviconPlugin) CanHandle(u *url.URL) bool {
	return crux.IsLikelyArticle(u)
}

// Handle resolves the favicon against the canonical address.
func (p *FaviconPlugin) Handle(_ context.Context, r *crux.Resource) (*crux.Result, error) {
	if r == nil || r.Document == nil {
		return nil, nil
	}
	doc := goquery.NewDocumentFromNode(r.Document)

	base := r.URL
	if u := crux.ResolveURL(r.URL, CanonicalURL(doc)); u != nil {
		base = u
	}
	return crux.Contribute(&crux.Resource{
		URLs: map[crux.Field]*url.URL{crux.FaviconURL: FaviconURL(doc, base)},
	}), nil
}

// fields drops blank values so they are treated as missing.
func fields(m map[crux.Field]string) map[crux.Field]string {
	for k, v := range m {
		if v == "" {
			delete(m, k)
		}
	}
	return m
}
