package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/cratedocs"
)

var _ cratedocs.DocumentLoader = (*LoggingDocumentLoader)(nil)

// LoggingDocumentLoader wraps a DocumentLoader with logging.
type LoggingDocumentLoader struct {
	next   cratedocs.DocumentLoader
	logger *slog.Logger
}

// NewLoggingDocumentLoader creates a new LoggingDocumentLoader.
func NewLoggingDocumentLoader(next cratedocs.DocumentLoader, logger *slog.Logger) *LoggingDocumentLoader {
	return &LoggingDocumentLoader{next: next, logger: logger}
}

// Load delegates to the wrapped loader and logs the operation.
func (l *LoggingDocumentLoader) Load(ctx context.Context, req cratedocs.LoadRequest) (result *cratedocs.LoadResult, err error) {
	defer func(begin time.Time) {
		var docs int
		var version string
		if result != nil {
			docs, version = len(result.Documents), result.Version
		}
		l.logger.Info("load documents",
			"crate", req.CrateName,
			"version", version,
			"max_pages", req.MaxPages,
			"documents", docs,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return l.next.Load(ctx, req)
}
