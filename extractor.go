package cratedocs

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title.
	Title string

	// ContentHTML is the main content as clean HTML.
	// Navigation, sidebars, and toolbars have been removed.
	ContentHTML string
}

// Extractor extracts main content from HTML pages, removing boilerplate.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}
