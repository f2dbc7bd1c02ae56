package goquery

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/crux"
	"golang.org/x/net/html"
)

// DefaultMaxHops bounds the number of canonical links followed per page.
const DefaultMaxHops = 3

// Ensure AmpPlugin implements crux.Plugin at compile time.
var _ crux.Plugin = (*AmpPlugin)(nil)

// AmpPlugin resolves a page to its canonical source document. Downstream
// plugins then work on the canonical content instead of an AMP or mirror
// variant.
type AmpPlugin struct {
	fetcher crux.Fetcher
	refetch bool
	maxHops int
	logger  *slog.Logger
}

// AmpOption configures an AmpPlugin.
type AmpOption func(*AmpPlugin)

// WithRefetch controls whether canonical documents are fetched. Without
// refetching only the URL is replaced. Defaults to true.
func WithRefetch(refetch bool) AmpOption {
	return func(p *AmpPlugin) {
		p.refetch = refetch
	}
}

// WithMaxHops sets how many canonical links may be followed.
// Defaults to DefaultMaxHops.
func WithMaxHops(n int) AmpOption {
	return func(p *AmpPlugin) {
		p.maxHops = n
	}
}

// WithLogger sets the logger used to report failed canonical fetches.
func WithLogger(logger *slog.Logger) AmpOption {
	return func(p *AmpPlugin) {
		p.logger = logger
	}
}

// NewAmpPlugin creates a new AmpPlugin fetching canonical pages with fetcher.
func NewAmpPlugin(fetcher crux.Fetcher, opts ...AmpOption) *AmpPlugin {
	p := &AmpPlugin{
		fetcher: fetcher,
		refetch: true,
		maxHops: DefaultMaxHops,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CanHandle requires a page address to compare canonical links against.
func (p *AmpPlugin) CanHandle(u *url.URL) bool {
	return u != nil && crux.IsLikelyArticle(u)
}

// hop is one document in a canonical chain.
type hop struct {
	url *url.URL
	doc *goquery.Document
}

// Handle follows canonical links away from the current page and returns a
// Replacement for the last non-AMP document reached. Visited addresses and
// the hop limit keep cyclic canonical chains from looping. A failed fetch
// ends the chain at the last document retrieved.
func (p *AmpPlugin) Handle(ctx context.Context, r *crux.Resource) (*crux.Result, error) {
	if r == nil || r.URL == nil || r.Document == nil {
		return nil, nil
	}
	seed := hop{url: r.URL, doc: goquery.NewDocumentFromNode(r.Document)}

	next := canonicalOf(seed)
	if next == nil {
		return nil, nil
	}
	if !p.refetch {
		return crux.Replace(&crux.Resource{
			URL:  next,
			URLs: ampURLs(seed),
		}), nil
	}

	visited := map[string]bool{key(seed.url): true}
	chain := []hop{seed}
	for len(chain) <= p.maxHops && next != nil && !visited[key(next)] {
		visited[key(next)] = true

		h, err := p.fetch(ctx, next)
		if err != nil {
			p.logger.Warn("canonical fetch failed",
				"url", next.String(),
				"from", r.URL.String(),
				"err", err,
			)
			break
		}
		chain = append(chain, h)
		next = canonicalOf(h)
	}

	// Settle on the last document that is not an AMP variant.
	var amp *url.URL
	final := 0
	for i, h := range chain {
		if IsAMP(h.doc) {
			amp = h.url
			continue
		}
		final = i
	}
	if final == 0 {
		return nil, nil
	}

	out := &crux.Resource{URL: chain[final].url, Document: chain[final].doc.Get(0)}
	if amp != nil {
		out.URLs = map[crux.Field]*url.URL{crux.AmpURL: amp}
	}
	return crux.Replace(out), nil
}

func (p *AmpPlugin) fetch(ctx context.Context, u *url.URL) (hop, error) {
	page, err := p.fetcher.Fetch(ctx, u.String())
	if err != nil {
		return hop{}, err
	}
	final := u
	if page.URL != "" {
		if pu, err := url.Parse(page.URL); err == nil {
			final = pu
		}
	}
	root, err := html.Parse(strings.NewReader(page.HTML))
	if err != nil {
		return hop{}, crux.WrapError(crux.EFETCH, err, "parse %s", u)
	}
	return hop{url: final, doc: goquery.NewDocumentFromNode(root)}, nil
}

// canonicalOf returns the canonical link of h when it points elsewhere.
func canonicalOf(h hop) *url.URL {
	href := firstAttr(h.doc, "href", `link[rel~="canonical"]`)
	u := crux.ResolveURL(h.url, href)
	if u == nil || key(u) == key(h.url) {
		return nil
	}
	return u
}

func ampURLs(h hop) map[crux.Field]*url.URL {
	if !IsAMP(h.doc) {
		return nil
	}
	return map[crux.Field]*url.URL{crux.AmpURL: h.url}
}

// key identifies a URL for loop detection, ignoring the fragment.
func key(u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	return c.String()
}
