// Package langchaingo embeds documentation through the embedding providers
// supported by langchaingo.
package langchaingo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/fwojciec/cratedocs"
	"github.com/panjf2000/ants/v2"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/embeddings/voyageai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/textsplitter"
)

// Embedding defaults.
const (
	// DefaultMaxChunkTokens is the largest chunk sent to a provider. Both
	// supported providers accept 8191 tokens per input.
	DefaultMaxChunkTokens = 8000
	DefaultChunkOverlap   = 200
	DefaultBatchSize      = 64
	DefaultBatchTokens    = 250_000
	DefaultWorkers        = 4
)

var _ cratedocs.Embedder = (*Embedder)(nil)

// Embedder splits documents into chunks and embeds them in concurrent
// batches through a langchaingo embeddings client.
type Embedder struct {
	provider string
	client   embeddings.Embedder
	counter  cratedocs.TokenCounter
	splitter textsplitter.TextSplitter
	mapper   *llms.ErrorMapper
	logger   *slog.Logger

	httpClient     *http.Client
	maxChunkTokens int
	batchSize      int
	batchTokens    int
	workers        int
}

// Option configures an Embedder.
type Option func(*Embedder)

// WithLogger sets the logger used for batch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Embedder) {
		e.logger = logger
	}
}

// WithSplitter sets the splitter used for documents above the chunk limit.
// Defaults to a cl100k_base token splitter.
func WithSplitter(s textsplitter.TextSplitter) Option {
	return func(e *Embedder) {
		e.splitter = s
	}
}

// WithMaxChunkTokens sets the token limit above which documents are split.
func WithMaxChunkTokens(n int) Option {
	return func(e *Embedder) {
		e.maxChunkTokens = n
	}
}

// WithBatchSize sets the maximum number of chunks per provider request.
func WithBatchSize(n int) Option {
	return func(e *Embedder) {
		e.batchSize = n
	}
}

// WithBatchTokens sets the maximum number of tokens per provider request.
func WithBatchTokens(n int) Option {
	return func(e *Embedder) {
		e.batchTokens = n
	}
}

// WithWorkers sets how many batches are in flight at once.
func WithWorkers(n int) Option {
	return func(e *Embedder) {
		e.workers = n
	}
}

// WithHTTPClient sets the HTTP client used by providers built with NewEmbedder.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Embedder) {
		e.httpClient = c
	}
}

// New wraps an existing langchaingo embeddings client.
// The provider name labels log lines and errors.
func New(provider string, client embeddings.Embedder, counter cratedocs.TokenCounter, opts ...Option) *Embedder {
	e := &Embedder{
		provider:       provider,
		client:         client,
		counter:        counter,
		maxChunkTokens: DefaultMaxChunkTokens,
		batchSize:      DefaultBatchSize,
		batchTokens:    DefaultBatchTokens,
		workers:        DefaultWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	if e.splitter == nil {
		e.splitter = textsplitter.NewTokenSplitter(
			textsplitter.WithEncodingName("cl100k_base"),
			textsplitter.WithChunkSize(e.maxChunkTokens),
			textsplitter.WithChunkOverlap(DefaultChunkOverlap),
			textsplitter.WithAllowedSpecial([]string{"all"}),
			textsplitter.WithDisallowedSpecial([]string{}),
		)
	}
	if e.mapper == nil {
		e.mapper = newErrorMapper(provider)
	}
	return e
}

// NewEmbedder builds the Embedder for the configured provider.
// Configuration problems are reported as ECONFIG.
func NewEmbedder(cfg cratedocs.EmbeddingConfig, counter cratedocs.TokenCounter, opts ...Option) (*Embedder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := New(string(cfg.Provider), nil, counter, opts...)

	switch cfg.Provider {
	case cratedocs.ProviderOpenAI:
		llmOpts := []openai.Option{openai.WithEmbeddingModel(cfg.ModelName())}
		if cfg.APIKey != "" {
			llmOpts = append(llmOpts, openai.WithToken(cfg.APIKey))
		}
		if cfg.APIBase != "" {
			llmOpts = append(llmOpts, openai.WithBaseURL(strings.TrimRight(cfg.APIBase, "/")))
		}
		if e.httpClient != nil {
			llmOpts = append(llmOpts, openai.WithHTTPClient(e.httpClient))
		}
		llm, err := openai.New(llmOpts...)
		if errors.Is(err, openai.ErrMissingToken) {
			return nil, cratedocs.Errorf(cratedocs.ECONFIG, "missing required environment variable OPENAI_API_KEY")
		} else if err != nil {
			return nil, cratedocs.Errorf(cratedocs.ECONFIG, "failed to initialize openai client: %v", err)
		}
		client, err := embeddings.NewEmbedder(llm,
			embeddings.WithStripNewLines(false),
			embeddings.WithBatchSize(e.batchSize),
		)
		if err != nil {
			return nil, err
		}
		e.client = client

	case cratedocs.ProviderVoyage:
		vOpts := []voyageai.Option{
			voyageai.WithToken(cfg.APIKey),
			voyageai.WithModel(cfg.ModelName()),
			voyageai.WithStripNewLines(false),
			voyageai.WithBatchSize(e.batchSize),
		}
		if e.httpClient != nil {
			vOpts = append(vOpts, voyageai.WithClient(*e.httpClient))
		}
		client, err := voyageai.NewVoyageAI(vOpts...)
		if err != nil {
			return nil, cratedocs.Errorf(cratedocs.ECONFIG, "failed to initialize voyage client: %v", err)
		}
		e.client = client
	}

	e.logger.Debug("embedding provider initialized", "provider", cfg.Provider, "model", cfg.ModelName())
	return e, nil
}

// chunk is a unit of text submitted to the provider.
type chunk struct {
	path   string
	index  int
	text   string
	tokens int
}

// Embed chunks docs and returns one embedded chunk per submitted chunk,
// in document order.
func (e *Embedder) Embed(ctx context.Context, docs []cratedocs.Document) (*cratedocs.EmbedResult, error) {
	chunks, err := e.split(ctx, docs)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return &cratedocs.EmbedResult{}, nil
	}

	batches := e.batch(chunks)
	vectors, err := e.embedBatches(ctx, batches)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, e.classify(err)
	}

	result := &cratedocs.EmbedResult{Chunks: make([]cratedocs.EmbeddedChunk, 0, len(chunks))}
	dims := len(vectors[0][0])
	for i, b := range batches {
		for j, c := range b {
			vec := vectors[i][j]
			if len(vec) == 0 || len(vec) != dims {
				return nil, cratedocs.Errorf(cratedocs.EMALFORMED,
					"%s returned a %d-dimension embedding for %s, expected %d", e.provider, len(vec), c.path, dims)
			}
			result.Chunks = append(result.Chunks, cratedocs.EmbeddedChunk{
				Path:       c.path,
				ChunkIndex: c.index,
				Content:    c.text,
				Embedding:  vec,
			})
			result.TotalTokens += c.tokens
		}
	}

	return result, nil
}

// split breaks documents that exceed the token limit into chunks. Blank
// documents and blank chunks are dropped.
func (e *Embedder) split(ctx context.Context, docs []cratedocs.Document) ([]chunk, error) {
	var chunks []chunk
	for _, doc := range docs {
		if strings.TrimSpace(doc.Content) == "" {
			continue
		}

		n, err := e.counter.CountTokens(ctx, doc.Content)
		if err != nil {
			return nil, fmt.Errorf("count tokens for %s: %w", doc.Path, err)
		}
		if n <= e.maxChunkTokens {
			chunks = append(chunks, chunk{path: doc.Path, text: doc.Content, tokens: n})
			continue
		}

		parts, err := e.splitter.SplitText(doc.Content)
		if err != nil {
			return nil, fmt.Errorf("split %s: %w", doc.Path, err)
		}
		index := 0
		for _, part := range parts {
			if strings.TrimSpace(part) == "" {
				continue
			}
			n, err := e.counter.CountTokens(ctx, part)
			if err != nil {
				return nil, fmt.Errorf("count tokens for %s: %w", doc.Path, err)
			}
			chunks = append(chunks, chunk{path: doc.Path, index: index, text: part, tokens: n})
			index++
		}
		e.logger.Debug("split document", "path", doc.Path, "tokens", n, "chunks", index)
	}
	return chunks, nil
}

// batch groups consecutive chunks by count and token budget. A single chunk
// over the token budget still forms its own batch.
func (e *Embedder) batch(chunks []chunk) [][]chunk {
	var batches [][]chunk
	var cur []chunk
	tokens := 0
	for _, c := range chunks {
		if len(cur) > 0 && (len(cur) >= e.batchSize || tokens+c.tokens > e.batchTokens) {
			batches = append(batches, cur)
			cur, tokens = nil, 0
		}
		cur = append(cur, c)
		tokens += c.tokens
	}
	if len(cur) > 0 {
		batches = append(batches, cur)
	}
	return batches
}

// embedBatches sends batches through a bounded goroutine pool. The first
// failure cancels the remaining batches.
func (e *Embedder) embedBatches(ctx context.Context, batches [][]chunk) ([][][]float32, error) {
	pool, err := ants.NewPool(max(1, min(e.workers, len(batches))))
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	vectors := make([][][]float32, len(batches))
	for i, b := range batches {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}

			texts := make([]string, len(b))
			for j, c := range b {
				texts[j] = c.text
			}
			vecs, err := e.client.EmbedDocuments(ctx, texts)
			if err != nil {
				fail(err)
				return
			}
			if len(vecs) != len(texts) {
				fail(cratedocs.Errorf(cratedocs.EMALFORMED,
					"%s returned %d embeddings for %d inputs", e.provider, len(vecs), len(texts)))
				return
			}
			vectors[i] = vecs
			e.logger.Debug("embedded batch", "provider", e.provider, "batch", i, "chunks", len(b))
		})
		if err != nil {
			wg.Done()
			fail(err)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return vectors, nil
}
