package cratedocs

import "context"

// Loader defaults.
const (
	// VersionWildcard selects the latest published version.
	VersionWildcard = "*"

	// DefaultMaxPages bounds how many pages a single load may return.
	DefaultMaxPages = 10000
)

// Document is one normalized documentation page.
type Document struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// LoadRequest describes which crate documentation to load.
type LoadRequest struct {
	CrateName string
	Version   string   // VersionWildcard or empty means latest
	Features  []string // Forwarded to the loader, may be ignored by the source
	MaxPages  int      // Hard ceiling on returned documents
}

// Validate returns an error if the request contains invalid fields.
func (r *LoadRequest) Validate() error {
	if r.CrateName == "" {
		return Errorf(EINVALID, "crate name required")
	}
	if r.MaxPages < 0 {
		return Errorf(EINVALID, "max pages must not be negative")
	}
	return nil
}

// LoadResult holds the documents of a crate in crawl order.
type LoadResult struct {
	Documents []Document
	Version   string // Detected version, empty if unknown
}

// DocumentLoader fetches and normalizes a crate's documentation pages.
type DocumentLoader interface {
	// Load returns at most req.MaxPages documents for the crate.
	// Returns ENOTFOUND if the crate or version does not exist.
	Load(ctx context.Context, req LoadRequest) (*LoadResult, error)
}
