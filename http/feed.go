package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/crux"
)

// Ensure FeedPlugin implements crux.Plugin at compile time.
var _ crux.Plugin = (*FeedPlugin)(nil)

// FeedPlugin fetches the feed advertised by a page and records its title.
// It runs after a plugin that fills crux.FeedURL and contributes nothing
// when no feed is known.
type FeedPlugin struct {
	client      *http.Client
	maxBodySize int64
}

// NewFeedPlugin creates a new FeedPlugin. A nil client uses a client with
// DefaultFetchTimeout.
func NewFeedPlugin(client *http.Client) *FeedPlugin {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &FeedPlugin{client: client, maxBodySize: DefaultMaxBodySize}
}

// CanHandle reports whether u plausibly points at an HTML page.
func (p *FeedPlugin) CanHandle(u *url.URL) bool {
	return crux.IsLikelyArticle(u)
}

// Handle validates the feed at crux.FeedURL and contributes its title.
func (p *FeedPlugin) Handle(ctx context.Context, r *crux.Resource) (*crux.Result, error) {
	if r == nil || r.URLs[crux.FeedURL] == nil {
		return nil, nil
	}
	feedURL := r.URLs[crux.FeedURL].String()

	body, err := p.fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	defer drain(body)

	title, err := parseFeedTitle(io.LimitReader(body, p.maxBodySize))
	if err != nil {
		return nil, crux.WrapError(crux.EUNSUPPORTED, err, "parse feed %s", feedURL)
	}
	if title == "" {
		return nil, nil
	}
	return crux.Contribute(&crux.Resource{
		Fields: map[crux.Field]string{crux.FeedTitle: title},
	}), nil
}

func (p *FeedPlugin) fetch(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, crux.WrapError(crux.EFETCH, err, "invalid request for %s", targetURL)
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/feed+json, application/xml;q=0.9, */*;q=0.8")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, crux.WrapError(crux.EFETCH, err, "fetch %s", targetURL)
	}
	if resp.StatusCode != http.StatusOK {
		drain(resp.Body)
		return nil, crux.Errorf(crux.EFETCH, "HTTP %d for %s", resp.StatusCode, targetURL)
	}
	return resp.Body, nil
}

// parseFeedTitle returns the channel title of an RSS, RSS 1.0 (RDF), Atom
// or JSON Feed document.
func parseFeedTitle(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return parseJSONFeedTitle(trimmed)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return "", err
	}

	root := doc.Root()
	if root == nil {
		return "", crux.Errorf(crux.EUNSUPPORTED, "empty feed")
	}

	var title *etree.Element
	switch root.Tag {
	case "rss", "RDF":
		if channel := root.SelectElement("channel"); channel != nil {
			title = channel.SelectElement("title")
		}
	case "feed":
		title = root.SelectElement("title")
	default:
		return "", crux.Errorf(crux.EUNSUPPORTED, "unknown feed root <%s>", root.Tag)
	}
	if title == nil {
		return "", nil
	}
	return strings.Join(strings.Fields(title.Text()), " "), nil
}

// parseJSONFeedTitle returns the title of a JSON Feed document.
func parseJSONFeedTitle(data []byte) (string, error) {
	var feed struct {
		Version string `json:"version"`
		Title   string `json:"title"`
	}
	if err := json.Unmarshal(data, &feed); err != nil {
		return "", err
	}
	if !strings.HasPrefix(feed.Version, "https://jsonfeed.org/version/") {
		return "", crux.Errorf(crux.EUNSUPPORTED, "not a json feed")
	}
	return strings.Join(strings.Fields(feed.Title), " "), nil
}
