package article_test

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/fwojciec/crux"
	"github.com/fwojciec/crux/article"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parse(t *testing.T, s string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(s))
	require.NoError(t, err)
	return doc
}

func render(t *testing.T, n *html.Node) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, html.Render(&buf, n))
	return buf.String()
}

func paragraphs(n int, sentence string) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString("<p>")
		b.WriteString(sentence)
		b.WriteString("</p>\n")
	}
	return b.String()
}

const prose = "The river bends slowly past the old mill, and the town wakes up to bells."

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("reports no match for documents without block text", func(t *testing.T) {
		t.Parallel()

		docs := []string{
			``,
			`<html><body></body></html>`,
			`<html><body><div><a href="/">Home</a> <img src="a.png"></div></body></html>`,
			`<html><body><ul><li><a href="/a">One</a></li><li><a href="/b">Two</a></li></ul></body></html>`,
			`<html><body><article></article><section><h1>Title</h1></section></body></html>`,
		}
		ext := article.NewExtractor()
		for _, d := range docs {
			a, ok := ext.Extract(parse(t, d))
			assert.False(t, ok, d)
			assert.Nil(t, a, d)
		}
	})

	t.Run("reports no match for nil document", func(t *testing.T) {
		t.Parallel()

		_, ok := article.NewExtractor().Extract(nil)
		assert.False(t, ok)
	})

	t.Run("selects a lone article of prose paragraphs", func(t *testing.T) {
		t.Parallel()

		ext := article.NewExtractor()
		for n := 1; n <= 6; n++ {
			doc := parse(t, "<html><body><article>\n"+paragraphs(n, prose)+"</article></body></html>")

			a, ok := ext.Extract(doc)

			require.True(t, ok, "paragraphs=%d", n)
			assert.Equal(t, "article", a.Node.Data, "paragraphs=%d", n)
		}
	})

	t.Run("prefers the prose container over navigation and link lists", func(t *testing.T) {
		t.Parallel()

		var links strings.Builder
		for i := 0; i < 20; i++ {
			fmt.Fprintf(&links, `<li><a href="/topic/%d">Link number %d about a topic</a></li>`, i, i)
		}
		doc := parse(t, `<html><body>
<div class="menu-wrapper"><ul>`+links.String()+`</ul></div>
<div id="story">`+paragraphs(4, prose)+`</div>
</body></html>`)

		a, ok := article.NewExtractor().Extract(doc)

		require.True(t, ok)
		text := render(t, a.Node)
		assert.Contains(t, text, "The river bends slowly")
		assert.NotContains(t, text, "Link number")
	})

	t.Run("removes boilerplate before scoring", func(t *testing.T) {
		t.Parallel()

		sidebar := paragraphs(8, "Sidebar filler text that is long, dense, and full of punctuation.")
		doc := parse(t, `<html><body>
<nav><p>`+prose+`</p></nav>
<div class="sidebar">`+sidebar+`</div>
<div class="comments">`+sidebar+`</div>
<div style="display: none">`+sidebar+`</div>
<div hidden>`+sidebar+`</div>
<!-- `+prose+` -->
<script>var x = "`+prose+`";</script>
<article>`+paragraphs(3, prose)+`</article>
</body></html>`)

		a, ok := article.NewExtractor().Extract(doc)

		require.True(t, ok)
		assert.Equal(t, "article", a.Node.Data)
		assert.NotContains(t, render(t, a.Node), "Sidebar filler")
	})

	t.Run("cleans the selected fragment", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, `<html><body><article class="post" id="main" data-x="1">
<p class="lead" style="color: red" onclick="x()">`+prose+`   With   extra    spaces.</p>
<p>Ok</p>
<div class="share-tools">Share this on every network you know of today</div>
<p><span>`+prose+`</span> <font color="red">Styled</font> text.</p>
<p><img src="/photo.jpg" alt="Photo" class="wide"></p>
<div></div>
</article></body></html>`)

		a, ok := article.NewExtractor().Extract(doc)

		require.True(t, ok)
		out := render(t, a.Node)
		assert.NotContains(t, out, "class=")
		assert.NotContains(t, out, "style=")
		assert.NotContains(t, out, "onclick")
		assert.NotContains(t, out, "data-x")
		assert.NotContains(t, out, "<span")
		assert.NotContains(t, out, "<font")
		assert.NotContains(t, out, "Share this")
		assert.NotContains(t, out, "<p>Ok</p>")
		assert.NotContains(t, out, "<div></div>")
		assert.Contains(t, out, `<img src="/photo.jpg" alt="Photo"/>`)
		assert.Contains(t, out, "With extra spaces.")
	})

	t.Run("keeps table structure with empty cells", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, "<html><body><article>"+paragraphs(3, prose)+
			"<table><tr><th>Name</th><th></th></tr><tr><td>Alice</td><td></td></tr></table></article></body></html>")

		a, ok := article.NewExtractor().Extract(doc)

		require.True(t, ok)
		assert.Contains(t, render(t, a.Node),
			"<table><tbody><tr><th>Name</th><th></th></tr><tr><td>Alice</td><td></td></tr></tbody></table>")
	})

	t.Run("drops short list items and keeps styled spans", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, "<html><body><article>"+paragraphs(3, prose)+
			`<ul><li>Tiny</li><li>A list item long enough to keep around.</li></ul>`+
			`<p><span class="dropcap">T</span>he harbour reopened after the storm passed.</p></article></body></html>`)

		a, ok := article.NewExtractor().Extract(doc)

		require.True(t, ok)
		out := render(t, a.Node)
		assert.NotContains(t, out, "<li>Tiny</li>")
		assert.Contains(t, out, "<li>A list item long enough to keep around.</li>")
		assert.Contains(t, out, "<span>T</span>he harbour reopened")
	})

	t.Run("keeps preformatted whitespace", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, "<html><body><article>"+paragraphs(2, prose)+"<pre>a  =  1\n    b = 2</pre></article></body></html>")

		a, ok := article.NewExtractor().Extract(doc)

		require.True(t, ok)
		assert.Contains(t, render(t, a.Node), "a  =  1\n    b = 2")
	})

	t.Run("estimates reading time from word count", func(t *testing.T) {
		t.Parallel()

		sentence := "Alpha beta gamma delta epsilon zeta eta theta iota kappa, alpha beta gamma delta epsilon zeta eta theta iota kappa."
		doc := parse(t, "<html><body><article>\n"+paragraphs(20, sentence)+"</article></body></html>")

		a, ok := article.NewExtractor().Extract(doc)

		require.True(t, ok)
		assert.Equal(t, 400, a.Words)
		assert.Equal(t, int64(120000), a.ReadingTime.Milliseconds())
	})

	t.Run("uses the configured reading speed", func(t *testing.T) {
		t.Parallel()

		sentence := "Alpha beta gamma delta epsilon zeta eta theta iota kappa, alpha beta gamma delta epsilon zeta eta theta iota kappa."
		doc := parse(t, "<html><body><article>\n"+paragraphs(20, sentence)+"</article></body></html>")

		a, ok := article.NewExtractor(article.WithWordsPerMinute(400)).Extract(doc)

		require.True(t, ok)
		assert.Equal(t, int64(60000), a.ReadingTime.Milliseconds())
	})

	t.Run("breaks ties by document order", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, `<html><body>
<article title="first">`+paragraphs(2, prose)+`</article>
<article title="second">`+paragraphs(2, prose)+`</article>
</body></html>`)

		a, ok := article.NewExtractor().Extract(doc)

		require.True(t, ok)
		assert.Contains(t, render(t, a.Node), `title="first"`)
	})

	t.Run("stops at the first candidate above the early exit weight", func(t *testing.T) {
		t.Parallel()

		w := article.DefaultWeights()
		w.EarlyExitWeight = 0
		doc := parse(t, `<html><body>
<div><p title="first">This first paragraph is long enough to count.</p></div>
<article>`+paragraphs(5, prose)+`</article>
</body></html>`)

		a, ok := article.NewExtractor(article.WithWeights(w)).Extract(doc)

		require.True(t, ok)
		assert.Equal(t, "p", a.Node.Data)
		assert.Contains(t, render(t, a.Node), `title="first"`)
	})

	t.Run("reports no match below the minimum weight", func(t *testing.T) {
		t.Parallel()

		w := article.DefaultWeights()
		w.MinWeight = 10000
		doc := parse(t, "<html><body><article>"+paragraphs(3, prose)+"</article></body></html>")

		_, ok := article.NewExtractor(article.WithWeights(w)).Extract(doc)

		assert.False(t, ok)
	})

	t.Run("does not modify the source document", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, `<html><body><nav>Menu</nav><article class="x">`+paragraphs(3, prose)+`</article></body></html>`)
		before := render(t, doc)

		_, ok := article.NewExtractor().Extract(doc)

		require.True(t, ok)
		assert.Equal(t, before, render(t, doc))
	})

	t.Run("handles deeply nested markup", func(t *testing.T) {
		t.Parallel()

		depth := 500
		doc := parse(t, "<html><body>"+strings.Repeat("<div>", depth)+paragraphs(3, prose)+strings.Repeat("</div>", depth)+"</body></html>")

		a, ok := article.NewExtractor().Extract(doc)

		require.True(t, ok)
		assert.Contains(t, render(t, a.Node), "The river bends slowly")
	})
}

func TestExtractor_Handle(t *testing.T) {
	t.Parallel()

	t.Run("contributes the article and reading time", func(t *testing.T) {
		t.Parallel()

		ext := article.NewExtractor()
		r := &crux.Resource{Document: parse(t, "<html><body><article>"+paragraphs(3, prose)+"</article></body></html>")}

		res, err := ext.Handle(context.Background(), r)

		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, crux.Contribution, res.Kind)
		require.NotNil(t, res.Resource.Article)
		assert.IsType(t, int64(0), res.Resource.Objects[crux.DurationMs])
		assert.Nil(t, r.Article)
	})

	t.Run("contributes nothing without a match", func(t *testing.T) {
		t.Parallel()

		res, err := article.NewExtractor().Handle(context.Background(), &crux.Resource{Document: parse(t, "")})

		require.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("contributes nothing without a document", func(t *testing.T) {
		t.Parallel()

		res, err := article.NewExtractor().Handle(context.Background(), &crux.Resource{})

		require.NoError(t, err)
		assert.Nil(t, res)
	})
}

func TestExtractor_CanHandle(t *testing.T) {
	t.Parallel()

	ext := article.NewExtractor()
	page, _ := url.Parse("https://example.com/story")
	image, _ := url.Parse("https://example.com/photo.png")

	assert.True(t, ext.CanHandle(page))
	assert.True(t, ext.CanHandle(nil))
	assert.False(t, ext.CanHandle(image))
}
