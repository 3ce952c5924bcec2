package cratedocs_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/cratedocs"
	"github.com/fwojciec/cratedocs/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProviderKind(t *testing.T) {
	t.Parallel()

	t.Run("defaults to openai", func(t *testing.T) {
		t.Parallel()

		kind, err := cratedocs.ParseProviderKind("")
		require.NoError(t, err)
		assert.Equal(t, cratedocs.ProviderOpenAI, kind)
	})

	t.Run("accepts voyage case-insensitively", func(t *testing.T) {
		t.Parallel()

		kind, err := cratedocs.ParseProviderKind(" Voyage ")
		require.NoError(t, err)
		assert.Equal(t, cratedocs.ProviderVoyage, kind)
	})

	t.Run("rejects unsupported provider as config error", func(t *testing.T) {
		t.Parallel()

		_, err := cratedocs.ParseProviderKind("cohere")
		require.Error(t, err)
		assert.Equal(t, cratedocs.ECONFIG, cratedocs.ErrorCode(err))
		assert.Contains(t, cratedocs.ErrorMessage(err), "cohere")
	})
}

func TestEmbeddingConfig(t *testing.T) {
	t.Parallel()

	t.Run("model defaults per provider", func(t *testing.T) {
		t.Parallel()

		openai := cratedocs.EmbeddingConfig{Provider: cratedocs.ProviderOpenAI}
		voyage := cratedocs.EmbeddingConfig{Provider: cratedocs.ProviderVoyage}
		custom := cratedocs.EmbeddingConfig{Provider: cratedocs.ProviderOpenAI, Model: "text-embedding-3-small"}

		assert.Equal(t, "text-embedding-3-large", openai.ModelName())
		assert.Equal(t, "voyage-3.5", voyage.ModelName())
		assert.Equal(t, "text-embedding-3-small", custom.ModelName())
	})

	t.Run("voyage requires api key", func(t *testing.T) {
		t.Parallel()

		cfg := cratedocs.EmbeddingConfig{Provider: cratedocs.ProviderVoyage}
		err := cfg.Validate()

		require.Error(t, err)
		assert.Equal(t, cratedocs.ECONFIG, cratedocs.ErrorCode(err))
		assert.Contains(t, cratedocs.ErrorMessage(err), "VOYAGE_API_KEY")
	})

	t.Run("openai without key is valid", func(t *testing.T) {
		t.Parallel()

		cfg := cratedocs.EmbeddingConfig{Provider: cratedocs.ProviderOpenAI}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown provider is invalid", func(t *testing.T) {
		t.Parallel()

		cfg := cratedocs.EmbeddingConfig{Provider: "cohere"}
		assert.Equal(t, cratedocs.ECONFIG, cratedocs.ErrorCode(cfg.Validate()))
	})
}

func TestEmbedderBinding(t *testing.T) {
	t.Parallel()

	newEmbedder := func() *mock.Embedder {
		return &mock.Embedder{
			EmbedFn: func(_ context.Context, _ []cratedocs.Document) (*cratedocs.EmbedResult, error) {
				return &cratedocs.EmbedResult{}, nil
			},
		}
	}

	t.Run("empty binding reports unbound", func(t *testing.T) {
		t.Parallel()

		var b cratedocs.EmbedderBinding
		e, ok := b.Embedder()
		assert.False(t, ok)
		assert.Nil(t, e)
	})

	t.Run("rebinding is an internal error and keeps the first embedder", func(t *testing.T) {
		t.Parallel()

		var b cratedocs.EmbedderBinding
		first := newEmbedder()
		require.NoError(t, b.Bind(first))

		err := b.Bind(newEmbedder())
		require.Error(t, err)
		assert.Equal(t, cratedocs.EINTERNAL, cratedocs.ErrorCode(err))

		e, ok := b.Embedder()
		require.True(t, ok)
		assert.Same(t, first, e)
	})

	t.Run("concurrent binds succeed exactly once", func(t *testing.T) {
		t.Parallel()

		var b cratedocs.EmbedderBinding
		var wg sync.WaitGroup
		var mu sync.Mutex
		successes := 0
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := b.Bind(newEmbedder()); err == nil {
					mu.Lock()
					successes++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, successes)
	})

	t.Run("concurrent BindOnce builds once and shares the embedder", func(t *testing.T) {
		t.Parallel()

		var b cratedocs.EmbedderBinding
		var builds atomic.Int32
		build := func() (cratedocs.Embedder, error) {
			builds.Add(1)
			return newEmbedder(), nil
		}
		results := make([]cratedocs.Embedder, 16)
		var wg sync.WaitGroup
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				e, err := b.BindOnce(build)
				assert.NoError(t, err)
				results[i] = e
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), builds.Load())
		for _, e := range results {
			assert.Same(t, results[0], e)
		}
	})

	t.Run("failed BindOnce leaves the binding empty", func(t *testing.T) {
		t.Parallel()

		var b cratedocs.EmbedderBinding
		_, err := b.BindOnce(func() (cratedocs.Embedder, error) {
			return nil, cratedocs.Errorf(cratedocs.ECONFIG, "missing key")
		})
		assert.Equal(t, cratedocs.ECONFIG, cratedocs.ErrorCode(err))
		_, ok := b.Embedder()
		assert.False(t, ok)

		want := newEmbedder()
		got, err := b.BindOnce(func() (cratedocs.Embedder, error) { return want, nil })
		require.NoError(t, err)
		assert.Same(t, want, got)

		_, err = b.BindOnce(func() (cratedocs.Embedder, error) {
			return nil, errors.New("must not be called")
		})
		require.NoError(t, err)
	})
}

func TestValidateEmbeddingRecords(t *testing.T) {
	t.Parallel()

	t.Run("accepts uniform batch", func(t *testing.T) {
		t.Parallel()

		err := cratedocs.ValidateEmbeddingRecords([]*cratedocs.EmbeddingRecord{
			{Path: "index.html", Content: "a", Embedding: []float32{1, 2}, TokenCount: 1},
			{Path: "index.html", ChunkIndex: 1, Content: "b", Embedding: []float32{3, 4}, TokenCount: 1},
		})
		assert.NoError(t, err)
	})

	t.Run("rejects empty batch", func(t *testing.T) {
		t.Parallel()

		err := cratedocs.ValidateEmbeddingRecords(nil)
		assert.Equal(t, cratedocs.EINVALID, cratedocs.ErrorCode(err))
	})

	t.Run("rejects mixed dimensions", func(t *testing.T) {
		t.Parallel()

		err := cratedocs.ValidateEmbeddingRecords([]*cratedocs.EmbeddingRecord{
			{Path: "a.html", Content: "a", Embedding: []float32{1, 2}},
			{Path: "b.html", Content: "b", Embedding: []float32{1, 2, 3}},
		})
		assert.Equal(t, cratedocs.EINVALID, cratedocs.ErrorCode(err))
	})

	t.Run("rejects record without content", func(t *testing.T) {
		t.Parallel()

		err := cratedocs.ValidateEmbeddingRecords([]*cratedocs.EmbeddingRecord{
			{Path: "a.html", Embedding: []float32{1}},
		})
		assert.Equal(t, cratedocs.EINVALID, cratedocs.ErrorCode(err))
	})
}
