// Package htmltomarkdown renders extracted rustdoc HTML as Markdown.
package htmltomarkdown

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/cratedocs"
)

var _ cratedocs.Converter = (*Converter)(nil)

var (
	// docAnchor matches the section-sign permalinks rustdoc puts on headings.
	docAnchor = regexp.MustCompile(`\[§\]\([^)]*\)\s*`)
	// blankRuns matches three or more consecutive newlines.
	blankRuns = regexp.MustCompile(`\n{3,}`)
)

// Converter wraps html-to-markdown to convert HTML to Markdown.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown. Blank input converts to
// an empty string.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}

	result, err := c.conv.ConvertString(html)
	if err != nil {
		return "", cratedocs.Errorf(cratedocs.EINVALID, "failed to convert HTML: %v", err)
	}

	result = docAnchor.ReplaceAllString(result, "")
	result = blankRuns.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result), nil
}
