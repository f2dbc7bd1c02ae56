package article

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// shortBlocks are dropped from the article when their text is too short
// and they hold no media.
const shortBlocks = "p, div, section, li, blockquote"

// postprocess cleans the detached article root in place.
func postprocess(root *html.Node, w Weights) {
	doc := goquery.NewDocumentFromNode(root)

	doc.FindMatcher(junk).Remove()
	doc.Find("[class], [id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return sharePattern.MatchString(classAndID(s.Get(0)))
	}).Remove()

	doc.Find("font, center, span").Each(func(_ int, s *goquery.Selection) {
		if n := s.Get(0); n.Data == "span" && len(n.Attr) > 0 {
			return
		}
		if s.Contents().Length() == 0 {
			s.Remove()
			return
		}
		s.Contents().Unwrap()
	})

	stripAttributes(root)

	removeDeepestFirst(doc.Find(shortBlocks), func(s *goquery.Selection) bool {
		return utf8.RuneCountInString(strings.TrimSpace(s.Text())) < w.MinParagraphLength && !hasMedia(s)
	})
	removeDeepestFirst(doc.Find("*"), func(s *goquery.Selection) bool {
		return strings.TrimSpace(s.Text()) == "" && !hasMedia(s) && !inTable(s)
	})

	normalizeWhitespace(root)
}

func hasMedia(s *goquery.Selection) bool {
	return s.IsMatcher(media) || s.FindMatcher(media).Length() > 0
}

// inTable reports whether s is a structural part of an enclosing table.
func inTable(s *goquery.Selection) bool {
	return s.IsMatcher(tableParts) && s.Closest("table").Length() > 0
}

// removeDeepestFirst removes the elements of sel matching drop, visiting
// descendants before their ancestors so a parent is judged after its
// children were cleaned up.
func removeDeepestFirst(sel *goquery.Selection, drop func(*goquery.Selection) bool) {
	for i := sel.Length() - 1; i >= 0; i-- {
		s := sel.Eq(i)
		if s.Get(0).Parent == nil {
			continue
		}
		if drop(s) {
			s.Remove()
		}
	}
}

func stripAttributes(root *html.Node) {
	stack := []*html.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Type == html.ElementNode && len(n.Attr) > 0 {
			kept := n.Attr[:0]
			for _, a := range n.Attr {
				if keptAttrs[a.Key] {
					kept = append(kept, a)
				}
			}
			n.Attr = kept
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			stack = append(stack, c)
		}
	}
}

// normalizeWhitespace collapses whitespace runs in text nodes, leaving
// preformatted content untouched.
func normalizeWhitespace(root *html.Node) {
	stack := []*html.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch n.Type {
		case html.TextNode:
			n.Data = whitespace.ReplaceAllString(n.Data, " ")
			continue
		case html.ElementNode:
			if n.Data == "pre" || n.Data == "code" || n.Data == "textarea" {
				continue
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			stack = append(stack, c)
		}
	}
}
