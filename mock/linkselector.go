package mock

import "github.com/fwojciec/cratedocs"

var _ cratedocs.LinkSelector = (*LinkSelector)(nil)

// LinkSelector is a mock implementation of cratedocs.LinkSelector.
type LinkSelector struct {
	ExtractLinksFn func(html string, baseURL string) ([]cratedocs.DiscoveredLink, error)
	NameFn         func() string
}

func (s *LinkSelector) ExtractLinks(html string, baseURL string) ([]cratedocs.DiscoveredLink, error) {
	return s.ExtractLinksFn(html, baseURL)
}

func (s *LinkSelector) Name() string {
	return s.NameFn()
}
