package article

import (
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var (
	unlikelyPattern = regexp.MustCompile(`(?i)banner|breadcrumb|combx|comment|community|cover-wrap|disqus|extra|footer|gdpr|header|legends|menu|related|remark|replies|rss|shoutbox|sidebar|skyscraper|social|sponsor|supplemental|agegate|pagination|pager|popup|share|sharing|subscribe|newsletter|cookie|advert|(^|[\s_-])ads?($|[\s_-])`)
	maybePattern    = regexp.MustCompile(`(?i)article|body|column|content|main|shadow|story|entry`)
	positivePattern = regexp.MustCompile(`(?i)article|body|content|entry|hentry|h-entry|main|page|post|text|blog|story|instapaper_body`)
	negativePattern = regexp.MustCompile(`(?i)(^|[\s_-])(hid|hidden)($|[\s_-])|banner|combx|comment|com-|contact|foot|masthead|media|meta|outbrain|promo|related|scroll|share|shoutbox|sidebar|skyscraper|sponsor|shopping|tags|tool|widget|nav|user|player|disclaimer|toc|infobox|vcard`)
	hiddenStyle     = regexp.MustCompile(`(?i)display\s*:\s*none|visibility\s*:\s*hidden`)
	negativeStyle   = regexp.MustCompile(`(?i)display\s*:\s*none|visibility\s*:\s*hidden|font-size\s*:\s*small`)
	sharePattern    = regexp.MustCompile(`(?i)share|sharing|social|related|advert|promo|newsletter|subscribe|(^|[\s_-])ads?($|[\s_-])`)
	whitespace      = regexp.MustCompile(`\s+`)
)

var (
	// removable never holds article text.
	removable = cascadia.MustCompile("script, style, noscript, template, iframe, object, embed, form, button, input, select, textarea, svg, canvas, nav, aside, footer, header, menu, dialog")

	// hidden matches elements hidden with attributes; inline styles are
	// checked separately.
	hidden = cascadia.MustCompile("[hidden], [aria-hidden=true]")

	// junk is stripped from the selected node after scoring.
	junk = cascadia.MustCompile("script, style, noscript, iframe, object, embed, form, button, input, select, textarea, nav, aside, footer, link, meta")

	// media marks elements worth keeping even without text.
	media = cascadia.MustCompile("img, picture, video, audio, figure, pre, table, br, hr")

	// tableParts keep a table's rows and columns aligned even when empty.
	tableParts = cascadia.MustCompile("caption, colgroup, col, thead, tbody, tfoot, tr, th, td")
)

// inlineTags never become candidates; their text belongs to the nearest
// block ancestor.
var inlineTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true, "big": true,
	"br": true, "cite": true, "code": true, "data": true, "del": true,
	"dfn": true, "em": true, "font": true, "i": true, "img": true, "ins": true,
	"kbd": true, "label": true, "mark": true, "picture": true, "q": true,
	"s": true, "samp": true, "small": true, "source": true, "span": true,
	"strike": true, "strong": true, "sub": true, "sup": true, "time": true,
	"tt": true, "u": true, "var": true, "wbr": true,
}

// protectedTags are never removed as unlikely candidates.
var protectedTags = map[string]bool{
	"html": true, "body": true, "article": true, "main": true,
}

// keptAttrs survive postprocessing.
var keptAttrs = map[string]bool{
	"href": true, "src": true, "srcset": true, "alt": true, "title": true,
	"colspan": true, "rowspan": true, "datetime": true, "cite": true,
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func classAndID(n *html.Node) string {
	return strings.TrimSpace(attr(n, "class") + " " + attr(n, "id"))
}

func isUnlikely(n *html.Node) bool {
	if protectedTags[n.Data] {
		return false
	}
	s := classAndID(n)
	return s != "" && unlikelyPattern.MatchString(s) && !maybePattern.MatchString(s)
}

func isHidden(n *html.Node) bool {
	return hidden.Match(n) || hiddenStyle.MatchString(attr(n, "style"))
}
