package mock

import (
	"context"

	"github.com/fwojciec/cratedocs"
)

var _ cratedocs.DocumentLoader = (*DocumentLoader)(nil)

// DocumentLoader is a mock implementation of cratedocs.DocumentLoader.
type DocumentLoader struct {
	LoadFn func(ctx context.Context, req cratedocs.LoadRequest) (*cratedocs.LoadResult, error)
}

func (l *DocumentLoader) Load(ctx context.Context, req cratedocs.LoadRequest) (*cratedocs.LoadResult, error) {
	return l.LoadFn(ctx, req)
}
