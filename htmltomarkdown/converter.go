// Package htmltomarkdown implements crux.Converter with html-to-markdown.
package htmltomarkdown

import (
	"net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/crux"
)

// Ensure Converter implements crux.Converter at compile time.
var _ crux.Converter = (*Converter)(nil)

// Converter wraps html-to-markdown to convert article HTML to Markdown.
// It is safe for concurrent use.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter with CommonMark and table support.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown. Relative URLs are
// rewritten against the scheme and host of base.
func (c *Converter) Convert(html string, base *url.URL) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", crux.Errorf(crux.EINVALID, "empty HTML input")
	}

	var (
		md  string
		err error
	)
	if base != nil && base.Host != "" {
		md, err = c.conv.ConvertString(html, converter.WithDomain(base.Scheme+"://"+base.Host))
	} else {
		md, err = c.conv.ConvertString(html)
	}
	if err != nil {
		return "", crux.WrapError(crux.EINTERNAL, err, "convert to markdown")
	}
	return strings.TrimSpace(md), nil
}
