package mock

import (
	"context"

	"github.com/fwojciec/cratedocs"
)

var _ cratedocs.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of cratedocs.Embedder.
type Embedder struct {
	EmbedFn func(ctx context.Context, docs []cratedocs.Document) (*cratedocs.EmbedResult, error)
}

func (e *Embedder) Embed(ctx context.Context, docs []cratedocs.Document) (*cratedocs.EmbedResult, error) {
	return e.EmbedFn(ctx, docs)
}
