// Package readability extracts article content with go-readability. It is the
// last extractor tried for pages neither rustdoc nor trafilatura can read.
package readability

import (
	"fmt"
	"strings"

	"github.com/fwojciec/cratedocs"
	"github.com/go-shiori/go-readability"
)

var _ cratedocs.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*cratedocs.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, cratedocs.Errorf(cratedocs.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, fmt.Errorf("readability: %w", err)
	}

	return &cratedocs.ExtractResult{
		Title:       strings.TrimSpace(article.Title),
		ContentHTML: article.Content,
	}, nil
}
