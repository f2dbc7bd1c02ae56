// Package goquery implements metadata lookups and the metadata, favicon
// and AMP plugins on top of github.com/PuerkitoBio/goquery.
package goquery

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/crux"
)

// firstAttr returns the first non-blank value of attr on the
// elements matched by each selector, tried in order.
func firstAttr(doc *goquery.Document, attr string, selectors ...string) string {
	for _, sel := range selectors {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			found = strings.TrimSpace(s.AttrOr(attr, ""))
			return found == ""
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func firstText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return strings.Join(strings.Fields(text), " ")
		}
	}
	return ""
}

// Title returns the page title, preferring Open Graph and Twitter card
// titles over the title element.
func Title(doc *goquery.Document) string {
	if t := firstAttr(doc, "content",
		`meta[property="og:title"]`,
		`meta[name="twitter:title"]`,
		`meta[property="twitter:title"]`,
	); t != "" {
		return t
	}
	return firstText(doc, "head title", "title", "h1")
}

// CanonicalURL returns the declared canonical address as written in the
// document.
func CanonicalURL(doc *goquery.Document) string {
	if href := firstAttr(doc, "href", `link[rel~="canonical"]`); href != "" {
		return href
	}
	return firstAttr(doc, "content",
		`meta[property="og:url"]`,
		`meta[name="twitter:url"]`,
	)
}

// Description returns the page summary.
func Description(doc *goquery.Document) string {
	return firstAttr(doc, "content",
		`meta[property="og:description"]`,
		`meta[name="twitter:description"]`,
		`meta[property="twitter:description"]`,
		`meta[name="description"]`,
	)
}

// SiteName returns the name of the publishing site.
func SiteName(doc *goquery.Document) string {
	return firstAttr(doc, "content",
		`meta[property="og:site_name"]`,
		`meta[name="application-name"]`,
	)
}

// ThemeColor returns the declared theme color.
func ThemeColor(doc *goquery.Document) string {
	return firstAttr(doc, "content", `meta[name="theme-color"]`)
}

// Keywords returns the declared keywords as a comma separated list with
// blank entries removed.
func Keywords(doc *goquery.Document) string {
	raw := firstAttr(doc, "content", `meta[name="keywords"]`)
	var kept []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			kept = append(kept, k)
		}
	}
	return strings.Join(kept, ",")
}

// FaviconURL returns the largest declared icon resolved against base,
// falling back to /favicon.ico on base's host.
func FaviconURL(doc *goquery.Document, base *url.URL) *url.URL {
	var (
		best     string
		bestSize = -1
	)
	doc.Find("link[rel][href]").Each(func(_ int, s *goquery.Selection) {
		if !isIconRel(s.AttrOr("rel", "")) {
			return
		}
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}
		if size := iconSize(s.AttrOr("sizes", "")); size > bestSize {
			best, bestSize = href, size
		}
	})
	if u := crux.ResolveURL(base, best); u != nil {
		return u
	}
	return crux.ResolveURL(base, "/favicon.ico")
}

func isIconRel(rel string) bool {
	for _, token := range strings.Fields(strings.ToLower(rel)) {
		switch token {
		case "icon", "apple-touch-icon", "apple-touch-icon-precomposed":
			return true
		}
	}
	return false
}

// iconSize returns the largest edge declared in a sizes attribute, 0 when
// absent, and a large value for scalable icons.
func iconSize(sizes string) int {
	var best int
	for _, s := range strings.Fields(strings.ToLower(sizes)) {
		if s == "any" {
			return 1 << 16
		}
		w, h, ok := strings.Cut(s, "x")
		if !ok {
			continue
		}
		wi, err1 := strconv.Atoi(w)
		hi, err2 := strconv.Atoi(h)
		if err1 != nil || err2 != nil {
			continue
		}
		best = max(best, wi, hi)
	}
	return best
}

// ImageURL returns the banner image resolved against base.
func ImageURL(doc *goquery.Document, base *url.URL) *url.URL {
	if u := crux.ResolveURL(base, firstAttr(doc, "content",
		`meta[property="og:image:secure_url"]`,
		`meta[property="og:image"]`,
		`meta[name="twitter:image"]`,
		`meta[name="twitter:image:src"]`,
		`meta[property="twitter:image"]`,
	)); u != nil {
		return u
	}
	if u := crux.ResolveURL(base, firstAttr(doc, "href", `link[rel~="image_src"]`)); u != nil {
		return u
	}
	return crux.ResolveURL(base, firstAttr(doc, "content", `meta[itemprop="image"]`))
}

// FeedURL returns the first advertised RSS, Atom or JSON feed resolved
// against base.
func FeedURL(doc *goquery.Document, base *url.URL) *url.URL {
	return crux.ResolveURL(base, firstAttr(doc, "href",
		`link[rel~="alternate"][type="application/rss+xml"]`,
		`link[rel~="alternate"][type="application/atom+xml"]`,
		`link[rel~="alternate"][type="application/feed+json"]`,
	))
}

// AmpURL returns the AMP variant resolved against base.
func AmpURL(doc *goquery.Document, base *url.URL) *url.URL {
	return crux.ResolveURL(base, firstAttr(doc, "href", `link[rel~="amphtml"]`))
}

// VideoURL returns the primary video resolved against base.
func VideoURL(doc *goquery.Document, base *url.URL) *url.URL {
	return crux.ResolveURL(base, firstAttr(doc, "content",
		`meta[property="og:video:secure_url"]`,
		`meta[property="og:video:url"]`,
		`meta[property="og:video"]`,
	))
}

// IsAMP reports whether the document declares itself an AMP page.
func IsAMP(doc *goquery.Document) bool {
	h := doc.Find("html").First()
	if h.Length() == 0 {
		return false
	}
	_, amp := h.Attr("amp")
	_, bolt := h.Attr("⚡")
	return amp || bolt
}
