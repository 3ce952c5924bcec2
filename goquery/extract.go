// Package goquery reads rustdoc HTML with goquery: it finds the links a
// crawl should follow and isolates the documentation body of a page.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/cratedocs"
)

// SelectorConfig defines a CSS selector with its priority and source label.
type SelectorConfig struct {
	Selector string
	Priority cratedocs.LinkPriority
	Source   string
}

// LinkFilter reports whether a resolved link should be kept.
type LinkFilter func(u *url.URL) bool

// ExtractLinksWithConfigs extracts links from HTML using the provided selector configurations.
// Links are deduplicated by URL, keeping the highest priority version.
// External links (different host than baseURL) are filtered out, as are
// links rejected by keep when it is non-nil.
// The returned links maintain document order based on first occurrence.
func ExtractLinksWithConfigs(html string, baseURL string, configs []SelectorConfig, keep LinkFilter) ([]cratedocs.DiscoveredLink, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, cratedocs.Errorf(cratedocs.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, cratedocs.Errorf(cratedocs.EINVALID, "failed to parse HTML: %v", err)
	}

	// Index into links by URL, for O(1) priority upgrades.
	seen := make(map[string]int)
	var links []cratedocs.DiscoveredLink

	for _, config := range configs {
		doc.Find(config.Selector).Each(func(_ int, sel *goquery.Selection) {
			href, exists := sel.Attr("href")
			if !exists || href == "" || isNonHTTPLink(href) {
				return
			}

			resolved := resolveURL(base, href)
			if resolved == nil || resolved.Host != base.Host {
				return
			}
			if keep != nil && !keep(resolved) {
				return
			}

			key := resolved.String()
			link := cratedocs.DiscoveredLink{
				URL:      key,
				Priority: config.Priority,
				Text:     strings.Join(strings.Fields(sel.Text()), " "),
				Source:   config.Source,
			}

			if idx, ok := seen[key]; ok {
				if config.Priority > links[idx].Priority {
					links[idx] = link
				}
				return
			}
			seen[key] = len(links)
			links = append(links, link)
		})
	}

	return links, nil
}

// resolveURL resolves href against base with the fragment stripped.
// Returns nil if href cannot be parsed or points back at base itself.
func resolveURL(base *url.URL, href string) *url.URL {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	resolved.RawFragment = ""

	self := *base
	self.Fragment = ""
	self.RawFragment = ""
	if resolved.String() == self.String() {
		return nil
	}
	return resolved
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
