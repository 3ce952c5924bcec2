package cratedocs

import "sync"

// EmbedderBinding holds the single Embedder used for the lifetime of a
// process. It is written once and read many times.
type EmbedderBinding struct {
	mu       sync.RWMutex
	embedder Embedder
}

// Bind sets the embedder. Binding twice is an internal error and leaves the
// first embedder in place.
func (b *EmbedderBinding) Bind(e Embedder) error {
	if e == nil {
		return Errorf(EINTERNAL, "cannot bind a nil embedder")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.embedder != nil {
		return Errorf(EINTERNAL, "embedding provider already initialized")
	}
	b.embedder = e
	return nil
}

// Embedder returns the bound embedder and whether one has been bound.
func (b *EmbedderBinding) Embedder() (Embedder, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.embedder, b.embedder != nil
}

// BindOnce returns the bound embedder, calling build and binding its result
// when none is bound yet. Concurrent callers wait for a single build. A
// failed build leaves the binding empty.
func (b *EmbedderBinding) BindOnce(build func() (Embedder, error)) (Embedder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.embedder != nil {
		return b.embedder, nil
	}
	e, err := build()
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, Errorf(EINTERNAL, "cannot bind a nil embedder")
	}
	b.embedder = e
	return e, nil
}
