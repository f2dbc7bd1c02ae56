package crux

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RenderHTML serializes n and its descendants.
func RenderHTML(n *html.Node) (string, error) {
	if n == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", WrapError(EINTERNAL, err, "render html")
	}
	return buf.String(), nil
}

// ParseFragment parses s in a body context and returns a single root. When
// s holds several top-level nodes they are wrapped in a div. Blank input
// yields nil.
func ParseFragment(s string) (*html.Node, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), body)
	if err != nil {
		return nil, WrapError(EINTERNAL, err, "parse fragment")
	}

	var elems []*html.Node
	for _, n := range nodes {
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) == "" {
			continue
		}
		elems = append(elems, n)
	}
	switch len(elems) {
	case 0:
		return nil, nil
	case 1:
		if elems[0].Type == html.ElementNode {
			return elems[0], nil
		}
	}

	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range elems {
		root.AppendChild(n)
	}
	return root, nil
}
