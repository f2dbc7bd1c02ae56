package article

import (
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// scorer holds per-element statistics for one document. Elements are kept
// in a pre-order list so that every element precedes its descendants;
// walking the list backwards visits children before parents.
type scorer struct {
	w      Weights
	nodes  []*html.Node
	parent []int
	index  map[*html.Node]int

	textLen   []int     // runes of all text in the subtree
	linkLen   []int     // runes of text inside anchors
	inlineLen []int     // runes of text outside block children
	inlinePun []int     // punctuation in that text
	acc       []float64 // prose score received from the subtree
}

func newScorer(root *html.Node, w Weights) *scorer {
	s := &scorer{w: w, index: make(map[*html.Node]int)}
	s.flatten(root)

	n := len(s.nodes)
	s.textLen = make([]int, n)
	s.linkLen = make([]int, n)
	s.inlineLen = make([]int, n)
	s.inlinePun = make([]int, n)
	s.acc = make([]float64, n)

	for i := n - 1; i >= 0; i-- {
		s.measure(i)
	}
	for i := range s.nodes {
		s.propagate(i)
	}
	return s
}

// flatten lists the element descendants of root in document order.
// root itself is not listed; its children have parent -1.
func (s *scorer) flatten(root *html.Node) {
	type item struct {
		n      *html.Node
		parent int
	}
	var stack []item
	for c := root.LastChild; c != nil; c = c.PrevSibling {
		stack = append(stack, item{c, -1})
	}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.n.Type != html.ElementNode {
			continue
		}
		i := len(s.nodes)
		s.nodes = append(s.nodes, it.n)
		s.parent = append(s.parent, it.parent)
		s.index[it.n] = i
		for c := it.n.LastChild; c != nil; c = c.PrevSibling {
			stack = append(stack, item{c, i})
		}
	}
}

// measure computes the text statistics of element i from its direct text
// and its already measured children.
func (s *scorer) measure(i int) {
	n := s.nodes[i]
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			l := textLength(c.Data)
			s.textLen[i] += l
			s.inlineLen[i] += l
			s.inlinePun[i] += punctuation(c.Data)
		case html.ElementNode:
			j, ok := s.index[c]
			if !ok {
				continue
			}
			s.textLen[i] += s.textLen[j]
			s.linkLen[i] += s.linkLen[j]
			if inlineTags[c.Data] {
				s.inlineLen[i] += s.inlineLen[j]
				s.inlinePun[i] += s.inlinePun[j]
			}
		}
	}
	if n.Data == "a" {
		s.linkLen[i] = s.textLen[i]
	}
}

// propagate credits the prose score of element i to itself and a bounded
// number of ancestors.
func (s *scorer) propagate(i int) {
	if inlineTags[s.nodes[i].Data] || s.inlineLen[i] < s.w.MinTextLength {
		return
	}
	per := s.w.CharsPerPoint
	if per <= 0 {
		per = 1
	}
	score := float64(1 + s.inlineLen[i]/per + s.inlinePun[i])

	s.acc[i] += score
	for level, j := 1, s.parent[i]; j >= 0 && level <= s.w.MaxAncestorDepth; level, j = level+1, s.parent[j] {
		switch level {
		case 1:
			s.acc[j] += score * s.w.ParentShare
		case 2:
			s.acc[j] += score * s.w.GrandparentShare
		default:
			s.acc[j] += score / (float64(level) * s.w.DistantDivisor)
		}
	}
}

func (s *scorer) isCandidate(i int) bool {
	n := s.nodes[i]
	if inlineTags[n.Data] {
		return false
	}
	if _, ok := s.w.TagBase[n.Data]; ok {
		return true
	}
	return s.acc[i] > 0
}

func (s *scorer) linkDensity(i int) float64 {
	if s.textLen[i] == 0 {
		return 0
	}
	return float64(s.linkLen[i]) / float64(s.textLen[i])
}

func (s *scorer) weight(i int) int {
	n := s.nodes[i]
	ld := s.linkDensity(i)
	w := s.w.TagBase[n.Data] + s.classWeight(n)
	w += int(math.Round(s.acc[i] * (1 - ld)))
	w -= int(math.Round(ld * float64(s.w.LinkDensityPenalty)))
	return w
}

func (s *scorer) classWeight(n *html.Node) int {
	var w int
	if class := attr(n, "class"); class != "" {
		if positivePattern.MatchString(class) {
			w += s.w.PositiveClass
		}
		if unlikelyPattern.MatchString(class) {
			w += s.w.Unlikely
		}
		if negativePattern.MatchString(class) {
			w += s.w.Negative
		}
	}
	if id := attr(n, "id"); id != "" {
		if positivePattern.MatchString(id) {
			w += s.w.PositiveID
		}
		if unlikelyPattern.MatchString(id) {
			w += s.w.Unlikely
		}
		if negativePattern.MatchString(id) {
			w += s.w.Negative
		}
	}
	if negativeStyle.MatchString(attr(n, "style")) {
		w += s.w.NegativeStyle
	}
	if strings.Contains(attr(n, "itemprop"), "articleBody") {
		w += s.w.ArticleBody
	}
	return w
}

// best returns the highest weighted viable candidate. Candidates are
// visited in document order and only a strictly greater weight replaces
// the current best, so ties go to the earlier node.
func (s *scorer) best() (*html.Node, int, bool) {
	best, bestWeight := -1, 0
	for i := range s.nodes {
		if !s.isCandidate(i) || s.acc[i] <= 0 {
			continue
		}
		w := s.weight(i)
		if w < s.w.MinWeight {
			continue
		}
		if best < 0 || w > bestWeight {
			best, bestWeight = i, w
		}
		if bestWeight > s.w.EarlyExitWeight {
			break
		}
	}
	if best < 0 {
		return nil, 0, false
	}
	return s.nodes[best], bestWeight, true
}

// textLength returns the length in runes of s with whitespace runs
// collapsed and trimmed.
func textLength(s string) int {
	words := strings.Fields(s)
	if len(words) == 0 {
		return 0
	}
	n := len(words) - 1
	for _, w := range words {
		n += utf8.RuneCountInString(w)
	}
	return n
}

func punctuation(s string) int {
	return strings.Count(s, ",") + strings.Count(s, ".") + strings.Count(s, ";") +
		strings.Count(s, ":") + strings.Count(s, "!") + strings.Count(s, "?")
}
