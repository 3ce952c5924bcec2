package cratedocs

import "context"

// Fetcher retrieves HTML from URLs.
type Fetcher interface {
	// Fetch returns the body of the page at url.
	// Returns ENOTFOUND if the server reports the page does not exist.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases any resources held by the fetcher.
	Close() error
}

// URLResolver follows redirects to find the canonical location of a URL.
type URLResolver interface {
	// ResolveURL returns the final URL after following redirects.
	// Returns ENOTFOUND if the final response is 404.
	ResolveURL(ctx context.Context, url string) (string, error)
}
