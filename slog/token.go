package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/cratedocs"
)

var _ cratedocs.TokenCounter = (*LoggingTokenCounter)(nil)

// LoggingTokenCounter wraps a TokenCounter with debug logging.
type LoggingTokenCounter struct {
	next   cratedocs.TokenCounter
	logger *slog.Logger
}

// NewLoggingTokenCounter creates a new LoggingTokenCounter.
func NewLoggingTokenCounter(next cratedocs.TokenCounter, logger *slog.Logger) *LoggingTokenCounter {
	return &LoggingTokenCounter{next: next, logger: logger}
}

// CountTokens delegates to the wrapped counter and logs the operation.
func (c *LoggingTokenCounter) CountTokens(ctx context.Context, text string) (n int, err error) {
	defer func(begin time.Time) {
		c.logger.Debug("count tokens",
			"bytes", len(text),
			"tokens", n,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.CountTokens(ctx, text)
}
