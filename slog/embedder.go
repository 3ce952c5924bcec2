package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/cratedocs"
)

var _ cratedocs.Embedder = (*LoggingEmbedder)(nil)

// LoggingEmbedder wraps an Embedder with logging.
type LoggingEmbedder struct {
	next   cratedocs.Embedder
	logger *slog.Logger
}

// NewLoggingEmbedder creates a new LoggingEmbedder.
func NewLoggingEmbedder(next cratedocs.Embedder, logger *slog.Logger) *LoggingEmbedder {
	return &LoggingEmbedder{next: next, logger: logger}
}

// Embed delegates to the wrapped embedder and logs the operation.
func (e *LoggingEmbedder) Embed(ctx context.Context, docs []cratedocs.Document) (result *cratedocs.EmbedResult, err error) {
	defer func(begin time.Time) {
		var chunks, tokens int
		if result != nil {
			chunks, tokens = len(result.Chunks), result.TotalTokens
		}
		e.logger.Info("embed documents",
			"documents", len(docs),
			"chunks", chunks,
			"tokens", tokens,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Embed(ctx, docs)
}
