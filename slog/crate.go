package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/cratedocs"
)

var _ cratedocs.CrateService = (*LoggingCrateService)(nil)

// LoggingCrateService wraps a CrateService with logging.
type LoggingCrateService struct {
	next   cratedocs.CrateService
	logger *slog.Logger
}

// NewLoggingCrateService creates a new LoggingCrateService.
func NewLoggingCrateService(next cratedocs.CrateService, logger *slog.Logger) *LoggingCrateService {
	return &LoggingCrateService{next: next, logger: logger}
}

// HasEmbeddings delegates to the wrapped service and logs the operation.
func (s *LoggingCrateService) HasEmbeddings(ctx context.Context, name string) (ok bool, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("has embeddings",
			"crate", name,
			"exists", ok,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.HasEmbeddings(ctx, name)
}

// UpsertCrate delegates to the wrapped service and logs the operation.
func (s *LoggingCrateService) UpsertCrate(ctx context.Context, name, version string) (id string, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("upsert crate",
			"crate", name,
			"version", version,
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.UpsertCrate(ctx, name, version)
}

// InsertEmbeddingsBatch delegates to the wrapped service and logs the operation.
func (s *LoggingCrateService) InsertEmbeddingsBatch(ctx context.Context, crateID, crateName string, records []*cratedocs.EmbeddingRecord) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("insert embeddings",
			"crate", crateName,
			"records", len(records),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.InsertEmbeddingsBatch(ctx, crateID, crateName, records)
}

// DeleteCrateEmbeddings delegates to the wrapped service and logs the operation.
func (s *LoggingCrateService) DeleteCrateEmbeddings(ctx context.Context, name string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("delete embeddings",
			"crate", name,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteCrateEmbeddings(ctx, name)
}

// GetCrateStats delegates to the wrapped service and logs the operation.
func (s *LoggingCrateService) GetCrateStats(ctx context.Context) (stats []*cratedocs.CrateStats, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("crate stats",
			"crates", len(stats),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.GetCrateStats(ctx)
}

// FindEmbeddings delegates to the wrapped service and logs the operation.
func (s *LoggingCrateService) FindEmbeddings(ctx context.Context, crateName string) (records []*cratedocs.EmbeddingRecord, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find embeddings",
			"crate", crateName,
			"records", len(records),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindEmbeddings(ctx, crateName)
}
