package crawl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/cratedocs"
	"github.com/fwojciec/cratedocs/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noDelays is used for fast unit tests.
var noDelays = []time.Duration{0, 0, 0}

func TestFetchWithRetry(t *testing.T) {
	t.Parallel()

	t.Run("succeeds on first attempt", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(_ context.Context, _ string) (string, error) {
			attempts++
			return "<html>content</html>", nil
		}

		html, err := crawl.FetchWithRetry(context.Background(), "https://docs.rs/a/", fetch, noDelays, nil)

		require.NoError(t, err)
		assert.Equal(t, "<html>content</html>", html)
		assert.Equal(t, 1, attempts)
	})

	t.Run("retries on failure and succeeds", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(_ context.Context, _ string) (string, error) {
			attempts++
			if attempts < 4 {
				return "", errors.New("transient error")
			}
			return "<html>success</html>", nil
		}

		html, err := crawl.FetchWithRetry(context.Background(), "https://docs.rs/a/", fetch, noDelays, nil)

		require.NoError(t, err)
		assert.Equal(t, "<html>success</html>", html)
		assert.Equal(t, 4, attempts)
	})

	t.Run("returns last error after all attempts", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(_ context.Context, _ string) (string, error) {
			attempts++
			return "", errors.New("persistent error")
		}

		_, err := crawl.FetchWithRetry(context.Background(), "https://docs.rs/a/", fetch, noDelays, nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "persistent error")
		assert.Equal(t, 4, attempts)
	})

	t.Run("does not retry missing pages", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(_ context.Context, _ string) (string, error) {
			attempts++
			return "", cratedocs.Errorf(cratedocs.ENOTFOUND, "page not found")
		}

		_, err := crawl.FetchWithRetry(context.Background(), "https://docs.rs/a/", fetch, noDelays, nil)

		require.Error(t, err)
		assert.Equal(t, cratedocs.ENOTFOUND, cratedocs.ErrorCode(err))
		assert.Equal(t, 1, attempts)
	})

	t.Run("no delays means a single attempt", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(_ context.Context, _ string) (string, error) {
			attempts++
			return "", errors.New("boom")
		}

		_, err := crawl.FetchWithRetry(context.Background(), "https://docs.rs/a/", fetch, nil, nil)

		require.Error(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		var attempts int
		fetch := func(_ context.Context, _ string) (string, error) {
			attempts++
			cancel()
			return "", errors.New("error")
		}

		_, err := crawl.FetchWithRetry(ctx, "https://docs.rs/a/", fetch, []time.Duration{time.Hour}, nil)

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, attempts)
	})
}
