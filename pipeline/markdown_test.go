package pipeline_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/fwojciec/crux"
	"github.com/fwojciec/crux/htmltomarkdown"
	"github.com/fwojciec/crux/mock"
	"github.com/fwojciec/crux/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownPlugin_Handle(t *testing.T) {
	t.Parallel()

	t.Run("converts article with page URL as base", func(t *testing.T) {
		t.Parallel()

		var (
			gotHTML string
			gotBase *url.URL
		)
		conv := &mock.Converter{
			ConvertFn: func(html string, base *url.URL) (string, error) {
				gotHTML, gotBase = html, base
				return "# Hello", nil
			},
		}
		article, err := crux.ParseFragment(`<article><h1>Hello</h1></article>`)
		require.NoError(t, err)
		u, err := url.Parse("https://example.com/a")
		require.NoError(t, err)

		res, err := pipeline.NewMarkdownPlugin(conv).Handle(context.Background(),
			&crux.Resource{URL: u, Article: article})

		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, "# Hello", res.Resource.Fields[crux.Markdown])
		assert.Equal(t, "<article><h1>Hello</h1></article>", gotHTML)
		assert.Equal(t, u, gotBase)
	})

	t.Run("returns nil without article", func(t *testing.T) {
		t.Parallel()

		conv := &mock.Converter{
			ConvertFn: func(string, *url.URL) (string, error) {
				t.Fatal("converter must not be called")
				return "", nil
			},
		}

		res, err := pipeline.NewMarkdownPlugin(conv).Handle(context.Background(), &crux.Resource{})

		require.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("returns converter error", func(t *testing.T) {
		t.Parallel()

		conv := &mock.Converter{
			ConvertFn: func(string, *url.URL) (string, error) {
				return "", errors.New("bad input")
			},
		}
		article, err := crux.ParseFragment(`<p>x</p>`)
		require.NoError(t, err)

		_, err = pipeline.NewMarkdownPlugin(conv).Handle(context.Background(), &crux.Resource{Article: article})

		require.Error(t, err)
	})

	t.Run("renders markdown after article extraction in a chain", func(t *testing.T) {
		t.Parallel()

		extractor := pipeline.NewExtractor(nil, pipeline.WithPlugins(
			articlePlugin(),
			pipeline.NewMarkdownPlugin(htmltomarkdown.NewConverter()),
		))

		res, err := extractor.ExtractHTML(context.Background(), nil,
			strings.NewReader(`<html><body><nav><a href="/">Home</a></nav>`+articleBody+`</body></html>`))

		require.NoError(t, err)
		assert.Contains(t, res.Fields[crux.Markdown], "The committee met on Tuesday")
		assert.NotContains(t, res.Fields[crux.Markdown], "Home")
	})
}
