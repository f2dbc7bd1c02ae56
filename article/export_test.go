package article

import (
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// WeightOf returns the score of the first element under root matching
// selector, without preprocessing.
func WeightOf(root *html.Node, selector string, w Weights) int {
	target := cascadia.MustCompile(selector).MatchFirst(root)
	s := newScorer(root, w)
	return s.weight(s.index[target])
}

// Preprocess exposes preprocess for tests.
func Preprocess(doc *html.Node) { preprocess(doc) }
