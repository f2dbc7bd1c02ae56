package article

import "golang.org/x/net/html"

// cloneTree returns a deep copy of n detached from any parent.
func cloneTree(n *html.Node) *html.Node {
	type pair struct{ src, dst *html.Node }

	root := shallowCopy(n)
	stack := []pair{{n, root}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for c := p.src.FirstChild; c != nil; c = c.NextSibling {
			cc := shallowCopy(c)
			p.dst.AppendChild(cc)
			stack = append(stack, pair{c, cc})
		}
	}
	return root
}

func shallowCopy(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	return c
}

// preprocess removes everything from doc that can never hold article text:
// non-content tags, comments, hidden elements and blocks whose class or id
// marks them as boilerplate.
func preprocess(doc *html.Node) {
	var doomed []*html.Node
	stack := []*html.Node{doc}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n.Type {
		case html.CommentNode:
			doomed = append(doomed, n)
			continue
		case html.ElementNode:
			if removable.Match(n) || isHidden(n) || isUnlikely(n) {
				doomed = append(doomed, n)
				continue
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			stack = append(stack, c)
		}
	}
	for _, n := range doomed {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
}
