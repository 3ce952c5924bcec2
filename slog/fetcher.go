package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/cratedocs"
)

var _ cratedocs.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with debug logging.
type LoggingFetcher struct {
	next   cratedocs.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next cratedocs.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		f.logger.Debug("fetch",
			"url", url,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

var _ cratedocs.URLResolver = (*LoggingURLResolver)(nil)

// LoggingURLResolver wraps a URLResolver with logging.
type LoggingURLResolver struct {
	next   cratedocs.URLResolver
	logger *slog.Logger
}

// NewLoggingURLResolver creates a new LoggingURLResolver.
func NewLoggingURLResolver(next cratedocs.URLResolver, logger *slog.Logger) *LoggingURLResolver {
	return &LoggingURLResolver{next: next, logger: logger}
}

// ResolveURL delegates to the wrapped resolver and logs the operation.
func (r *LoggingURLResolver) ResolveURL(ctx context.Context, url string) (final string, err error) {
	defer func(begin time.Time) {
		r.logger.Debug("resolve url",
			"url", url,
			"final", final,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.ResolveURL(ctx, url)
}
