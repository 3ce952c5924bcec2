package mock

import (
	"context"

	"github.com/fwojciec/cratedocs"
)

var _ cratedocs.CrateService = (*CrateService)(nil)

// CrateService is a mock implementation of cratedocs.CrateService.
type CrateService struct {
	HasEmbeddingsFn         func(ctx context.Context, name string) (bool, error)
	UpsertCrateFn           func(ctx context.Context, name, version string) (string, error)
	InsertEmbeddingsBatchFn func(ctx context.Context, crateID, crateName string, records []*cratedocs.EmbeddingRecord) error
	DeleteCrateEmbeddingsFn func(ctx context.Context, name string) error
	GetCrateStatsFn         func(ctx context.Context) ([]*cratedocs.CrateStats, error)
	FindEmbeddingsFn        func(ctx context.Context, crateName string) ([]*cratedocs.EmbeddingRecord, error)
}

func (s *CrateService) HasEmbeddings(ctx context.Context, name string) (bool, error) {
	return s.HasEmbeddingsFn(ctx, name)
}

func (s *CrateService) UpsertCrate(ctx context.Context, name, version string) (string, error) {
	return s.UpsertCrateFn(ctx, name, version)
}

func (s *CrateService) InsertEmbeddingsBatch(ctx context.Context, crateID, crateName string, records []*cratedocs.EmbeddingRecord) error {
	return s.InsertEmbeddingsBatchFn(ctx, crateID, crateName, records)
}

func (s *CrateService) DeleteCrateEmbeddings(ctx context.Context, name string) error {
	return s.DeleteCrateEmbeddingsFn(ctx, name)
}

func (s *CrateService) GetCrateStats(ctx context.Context) ([]*cratedocs.CrateStats, error) {
	return s.GetCrateStatsFn(ctx)
}

func (s *CrateService) FindEmbeddings(ctx context.Context, crateName string) ([]*cratedocs.EmbeddingRecord, error) {
	return s.FindEmbeddingsFn(ctx, crateName)
}
