package cratedocs

import "context"

// URLFrontier is the crawl queue of pages inside a crate's documentation
// prefix. A URL is accepted once; fragments do not make a URL new.
type URLFrontier interface {
	// Push queues link and reports whether it was new.
	Push(link DiscoveredLink) bool
	// Pop removes the highest priority link.
	Pop() (DiscoveredLink, bool)
	Len() int
	// Seen reports whether url was ever pushed, including popped URLs.
	Seen(url string) bool
}

// DomainLimiter throttles requests per host.
type DomainLimiter interface {
	// Wait blocks until a request to host is allowed or ctx is done.
	Wait(ctx context.Context, host string) error
}
