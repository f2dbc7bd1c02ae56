package crux

import (
	"strings"
	"time"
)

// DefaultWordsPerMinute is the reading speed used for reading time estimates.
const DefaultWordsPerMinute = 200

// WordCount returns the number of whitespace separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ReadingTime estimates how long it takes to read words at wpm words per
// minute. A non-positive wpm falls back to DefaultWordsPerMinute.
func ReadingTime(words, wpm int) time.Duration {
	if wpm <= 0 {
		wpm = DefaultWordsPerMinute
	}
	if words <= 0 {
		return 0
	}
	return time.Duration(words) * time.Minute / time.Duration(wpm)
}
