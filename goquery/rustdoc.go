package goquery

import (
	"net/url"
	"path"
	"strings"

	"github.com/fwojciec/cratedocs"
)

var _ cratedocs.LinkSelector = (*RustdocSelector)(nil)

// rustdocSelectors lists where rustdoc puts links, most important first.
// Item tables on module pages enumerate every public item, so they are
// crawled before sidebar navigation and prose links.
var rustdocSelectors = []SelectorConfig{
	{Selector: "#main-content .item-table a[href]", Priority: cratedocs.PriorityIndex, Source: "items"},
	{Selector: "#main-content .module-item a[href]", Priority: cratedocs.PriorityIndex, Source: "items"},
	{Selector: ".sidebar a[href], nav.sidebar a[href]", Priority: cratedocs.PriorityNavigation, Source: "sidebar"},
	{Selector: "#main-content a[href]", Priority: cratedocs.PriorityContent, Source: "content"},
}

// rustdocSkipPages are rustdoc pages that duplicate or carry no documentation.
var rustdocSkipPages = map[string]bool{
	"all.html":      true,
	"help.html":     true,
	"settings.html": true,
}

// RustdocSelector extracts the links of a rustdoc page worth crawling:
// module item tables, sidebar navigation, and links inside the docs body.
// Source views, the all-items page, search, help and settings are skipped.
type RustdocSelector struct{}

// NewRustdocSelector creates a new RustdocSelector.
func NewRustdocSelector() *RustdocSelector {
	return &RustdocSelector{}
}

// Name returns the selector's identifier.
func (s *RustdocSelector) Name() string {
	return "rustdoc"
}

// ExtractLinks parses HTML and returns discovered links with priority.
func (s *RustdocSelector) ExtractLinks(html string, baseURL string) ([]cratedocs.DiscoveredLink, error) {
	return ExtractLinksWithConfigs(html, baseURL, rustdocSelectors, isRustdocPage)
}

// isRustdocPage reports whether u points at a crawlable rustdoc page.
func isRustdocPage(u *url.URL) bool {
	if u.RawQuery != "" {
		return false
	}
	for _, seg := range strings.Split(u.Path, "/") {
		if seg == "src" {
			return false
		}
	}
	name := path.Base(u.Path)
	if strings.HasSuffix(u.Path, "/") {
		return true
	}
	if !strings.HasSuffix(name, ".html") {
		return false
	}
	return !rustdocSkipPages[name]
}
