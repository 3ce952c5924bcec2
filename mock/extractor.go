package mock

import "github.com/fwojciec/cratedocs"

var _ cratedocs.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of cratedocs.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*cratedocs.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*cratedocs.ExtractResult, error) {
	return e.ExtractFn(html)
}
