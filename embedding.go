package cratedocs

import (
	"context"
	"strings"
)

// EmbeddedChunk is a piece of a document together with its vector.
type EmbeddedChunk struct {
	Path       string
	ChunkIndex int // Ordinal of the chunk within its source document
	Content    string
	Embedding  []float32
}

// EmbedResult is the output of a single Embed call.
type EmbedResult struct {
	Chunks      []EmbeddedChunk
	TotalTokens int // Sum of token counts over all submitted chunks
}

// Dimensions returns the vector length shared by the chunks, or 0 if empty.
func (r *EmbedResult) Dimensions() int {
	if len(r.Chunks) == 0 {
		return 0
	}
	return len(r.Chunks[0].Embedding)
}

// Embedder converts documents into embedded chunks.
// A document may produce several chunks; each keeps its source path.
type Embedder interface {
	Embed(ctx context.Context, docs []Document) (*EmbedResult, error)
}

// ProviderKind identifies a supported embedding backend.
type ProviderKind string

// Supported embedding providers.
const (
	ProviderOpenAI ProviderKind = "openai"
	ProviderVoyage ProviderKind = "voyage"
)

// Default models per provider.
const (
	DefaultOpenAIModel = "text-embedding-3-large"
	DefaultVoyageModel = "voyage-3.5"
)

// ParseProviderKind parses a configured provider name. An empty value selects
// OpenAI. Anything other than a supported provider is a configuration error.
func ParseProviderKind(s string) (ProviderKind, error) {
	switch ProviderKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", ProviderOpenAI:
		return ProviderOpenAI, nil
	case ProviderVoyage:
		return ProviderVoyage, nil
	}
	return "", Errorf(ECONFIG, "unsupported embedding provider: %s. Use 'openai' or 'voyage'", s)
}

// DefaultModel returns the model used when no override is configured.
func (k ProviderKind) DefaultModel() string {
	switch k {
	case ProviderVoyage:
		return DefaultVoyageModel
	default:
		return DefaultOpenAIModel
	}
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider ProviderKind
	Model    string // Empty selects the provider default
	APIKey   string
	APIBase  string // OpenAI-compatible base URL override
}

// ModelName returns the configured model or the provider default.
func (c *EmbeddingConfig) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	return c.Provider.DefaultModel()
}

// Validate returns an error if the configuration cannot produce an embedder.
func (c *EmbeddingConfig) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		return nil
	case ProviderVoyage:
		if c.APIKey == "" {
			return Errorf(ECONFIG, "missing required environment variable VOYAGE_API_KEY")
		}
		return nil
	}
	return Errorf(ECONFIG, "unsupported embedding provider: %s. Use 'openai' or 'voyage'", c.Provider)
}
