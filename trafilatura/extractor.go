// Package trafilatura extracts the main content of HTML pages that are not
// rustdoc output, such as a crate's README rendered by docs.rs.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/cratedocs"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

var _ cratedocs.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct {
	opts trafilatura.Options
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{
		opts: trafilatura.Options{
			EnableFallback: true,
		},
	}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*cratedocs.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, cratedocs.Errorf(cratedocs.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		return nil, err
	}

	var contentHTML string
	if result.ContentNode != nil {
		var buf bytes.Buffer
		if err := html.Render(&buf, result.ContentNode); err != nil {
			return nil, err
		}
		contentHTML = buf.String()
	}

	return &cratedocs.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}
