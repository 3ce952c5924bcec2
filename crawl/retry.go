package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/cratedocs"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (string, error)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// FetchWithRetry calls fetch until it succeeds, making one attempt more than
// there are delays and sleeping delays[i] before retry i. A page the server
// reports as missing (ENOTFOUND) is not retried. Retries are logged at debug
// level when logger is non-nil.
func FetchWithRetry(ctx context.Context, url string, fetch FetchFunc, delays []time.Duration, logger *slog.Logger) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= len(delays); attempt++ {
		html, err := fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if attempt == len(delays) || cratedocs.ErrorCode(err) == cratedocs.ENOTFOUND {
			break
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if logger != nil {
			logger.Debug("retrying fetch", "url", url, "attempt", attempt+2, "error", err)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return "", lastErr
}
