package cratedocs

// LinkPriority orders the crawl frontier; higher values are fetched first.
type LinkPriority int

// Rustdoc pages rank module indexes over sidebar navigation over item pages.
const (
	PriorityIgnore     LinkPriority = 0
	PriorityFallback   LinkPriority = 10
	PriorityContent    LinkPriority = 50
	PriorityNavigation LinkPriority = 100
	PriorityIndex      LinkPriority = 110
)

// DiscoveredLink is an absolute URL found on a rustdoc page.
type DiscoveredLink struct {
	URL      string
	Priority LinkPriority
	Text     string
	Source   string // "sidebar", "items", "content"
}

// LinkSelector finds the crawlable links on a page, resolving relative
// hrefs against baseURL.
type LinkSelector interface {
	ExtractLinks(html string, baseURL string) ([]DiscoveredLink, error)
	Name() string
}
