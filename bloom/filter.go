// Package bloom tracks which documentation pages a crawl has already queued.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter is a probabilistic set of page keys.
// A false positive drops a page; a false negative never happens.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a filter sized for n expected keys
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(max(n, 1), fpRate),
	}
}

// Add records key.
func (f *Filter) Add(key string) {
	f.f.AddString(key)
}

// Test reports whether key might have been added.
func (f *Filter) Test(key string) bool {
	return f.f.TestString(key)
}

// Visit records key and reports whether it was new.
func (f *Filter) Visit(key string) bool {
	return !f.f.TestAndAddString(key)
}

// EstimatedCount returns the approximate number of keys in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
