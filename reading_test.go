package crux_test

import (
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/crux"
	"github.com/stretchr/testify/assert"
)

func TestReadingTime(t *testing.T) {
	t.Parallel()

	t.Run("400 words at 200 wpm is two minutes", func(t *testing.T) {
		t.Parallel()

		d := crux.ReadingTime(400, crux.DefaultWordsPerMinute)

		assert.Equal(t, int64(120000), d.Milliseconds())
	})

	t.Run("scales linearly with word count", func(t *testing.T) {
		t.Parallel()

		one := crux.ReadingTime(250, 200)
		two := crux.ReadingTime(500, 200)

		assert.Equal(t, 2*one, two)
	})

	t.Run("falls back to default speed", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, time.Minute, crux.ReadingTime(200, 0))
	})

	t.Run("zero words is zero", func(t *testing.T) {
		t.Parallel()

		assert.Zero(t, crux.ReadingTime(0, 200))
	})
}

func TestWordCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, crux.WordCount("  one\ttwo\nthree "))
	assert.Equal(t, 400, crux.WordCount(strings.Repeat("word ", 400)))
	assert.Zero(t, crux.WordCount(""))
}
