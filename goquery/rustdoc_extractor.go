package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/cratedocs"
)

var _ cratedocs.Extractor = (*RustdocExtractor)(nil)

// rustdocNoise matches rustdoc UI chrome inside the docs body.
const rustdocNoise = "script, style, noscript, button, .out-of-band, .rightside, " +
	".src, .srclink, .anchor, #copy-path, .notable-traits, .sub-heading, " +
	"rustdoc-toolbar, .search-form"

// RustdocExtractor isolates the documentation body (#main-content) of a
// rustdoc page. Pages without one yield an empty result so a more general
// extractor can take over.
type RustdocExtractor struct{}

// NewRustdocExtractor creates a new RustdocExtractor.
func NewRustdocExtractor() *RustdocExtractor {
	return &RustdocExtractor{}
}

// Extract returns the page title and cleaned docs body.
func (e *RustdocExtractor) Extract(html string) (*cratedocs.ExtractResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, cratedocs.Errorf(cratedocs.EINVALID, "failed to parse HTML: %v", err)
	}

	main := doc.Find("#main-content").First()
	if main.Length() == 0 {
		return &cratedocs.ExtractResult{Title: pageTitle(doc)}, nil
	}
	main.Find(rustdocNoise).Remove()

	title := strings.Join(strings.Fields(main.Find("h1").First().Text()), " ")
	if title == "" {
		title = pageTitle(doc)
	}

	content, err := main.Html()
	if err != nil {
		return nil, cratedocs.Errorf(cratedocs.EINVALID, "failed to render content: %v", err)
	}

	return &cratedocs.ExtractResult{
		Title:       title,
		ContentHTML: strings.TrimSpace(content),
	}, nil
}

// DetectVersion returns the crate version shown in the rustdoc sidebar,
// or "" if the page does not show one.
func (e *RustdocExtractor) DetectVersion(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	for _, sel := range []string{".sidebar-crate .version", ".sidebar .version", ".version"} {
		text := strings.TrimSpace(doc.Find(sel).First().Text())
		text = strings.TrimSpace(strings.TrimPrefix(text, "Version"))
		if text != "" && text[0] >= '0' && text[0] <= '9' {
			return strings.Fields(text)[0]
		}
	}
	return ""
}

func pageTitle(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}
