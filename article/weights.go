package article

// Weights holds the tuning constants of the scoring pass. They are
// heuristics; callers may adjust them with WithWeights.
type Weights struct {
	// TagBase is the base score of a candidate by tag name. Elements whose
	// tag is listed here are candidates even without prose of their own.
	TagBase map[string]int

	// Class and id adjustments. Negative adjustments are stored as
	// negative numbers.
	PositiveClass int
	PositiveID    int
	Unlikely      int
	Negative      int
	NegativeStyle int
	ArticleBody   int

	// MinTextLength is the shortest inline text, in runes, that counts
	// as prose.
	MinTextLength int

	// CharsPerPoint is the number of runes of prose worth one point.
	CharsPerPoint int

	// Share of a prose score passed to the parent and grandparent.
	// Ancestors k levels up (k >= 3) receive 1/(k*DistantDivisor).
	ParentShare      float64
	GrandparentShare float64
	DistantDivisor   float64
	MaxAncestorDepth int

	// LinkDensityPenalty is subtracted in proportion to the share of
	// anchor text in a candidate.
	LinkDensityPenalty int

	// MinWeight is the floor a candidate must reach to be selected.
	MinWeight int

	// EarlyExitWeight stops enumeration once the best weight exceeds it.
	EarlyExitWeight int

	// MinParagraphLength is the shortest text, in runes, a block element
	// of the extracted article may have without holding media.
	MinParagraphLength int
}

// DefaultWeights returns the default scoring constants.
func DefaultWeights() Weights {
	return Weights{
		TagBase: map[string]int{
			"article":    30,
			"main":       25,
			"section":    10,
			"p":          10,
			"pre":        8,
			"blockquote": 5,
			"td":         3,
			"div":        0,
			"ul":         -3,
			"ol":         -3,
			"dl":         -3,
			"li":         -3,
			"form":       -3,
			"address":    -3,
			"th":         -5,
			"h1":         -5,
			"h2":         -5,
			"h3":         -5,
			"h4":         -5,
			"h5":         -5,
			"h6":         -5,
		},
		PositiveClass:      35,
		PositiveID:         40,
		Unlikely:           -20,
		Negative:           -50,
		NegativeStyle:      -50,
		ArticleBody:        100,
		MinTextLength:      25,
		CharsPerPoint:      50,
		ParentShare:        1,
		GrandparentShare:   0.5,
		DistantDivisor:     3,
		MaxAncestorDepth:   5,
		LinkDensityPenalty: 25,
		MinWeight:          10,
		EarlyExitWeight:    1000,
		MinParagraphLength: 12,
	}
}
