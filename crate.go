package cratedocs

import (
	"context"
	"time"
)

// Crate represents a documented library tracked by the store.
type Crate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Version   string    `json:"version,omitempty"` // Empty when the version is unknown
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CrateStats summarizes the stored embeddings of a single crate.
type CrateStats struct {
	Name        string    `json:"name"`
	Version     string    `json:"version,omitempty"`
	TotalDocs   int       `json:"totalDocs"`
	TotalTokens int       `json:"totalTokens"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// EmbeddingRecord is a single stored chunk with its vector.
type EmbeddingRecord struct {
	Path       string    `json:"path"`
	ChunkIndex int       `json:"chunkIndex"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"embedding"`
	TokenCount int       `json:"tokenCount"`
}

// Validate returns an error if the record contains invalid fields.
func (r *EmbeddingRecord) Validate() error {
	if r.Path == "" {
		return Errorf(EINVALID, "embedding path required")
	}
	if r.ChunkIndex < 0 {
		return Errorf(EINVALID, "chunk index must not be negative")
	}
	if r.Content == "" {
		return Errorf(EINVALID, "embedding content required")
	}
	if len(r.Embedding) == 0 {
		return Errorf(EINVALID, "embedding vector required")
	}
	if r.TokenCount < 0 {
		return Errorf(EINVALID, "token count must not be negative")
	}
	return nil
}

// ValidateEmbeddingRecords validates a batch destined for a single crate.
// All vectors in a batch must share one dimension.
func ValidateEmbeddingRecords(records []*EmbeddingRecord) error {
	if len(records) == 0 {
		return Errorf(EINVALID, "embedding batch is empty")
	}
	dims := len(records[0].Embedding)
	for i, r := range records {
		if r == nil {
			return Errorf(EINVALID, "embedding record %d is nil", i)
		}
		if err := r.Validate(); err != nil {
			return err
		}
		if len(r.Embedding) != dims {
			return Errorf(EINVALID, "embedding %s#%d has %d dimensions, expected %d",
				r.Path, r.ChunkIndex, len(r.Embedding), dims)
		}
	}
	return nil
}

// CrateService represents a service for managing crates and their embeddings.
type CrateService interface {
	// HasEmbeddings reports whether any embeddings are stored for the crate.
	HasEmbeddings(ctx context.Context, name string) (bool, error)

	// UpsertCrate creates the crate if absent or updates its version.
	// An empty version never overwrites a known one.
	// Returns the crate's stable ID.
	UpsertCrate(ctx context.Context, name, version string) (string, error)

	// InsertEmbeddingsBatch atomically replaces the crate's stored chunks
	// with records. Nothing is written if any record fails.
	// Returns ENOTFOUND if the crate does not exist.
	InsertEmbeddingsBatch(ctx context.Context, crateID, crateName string, records []*EmbeddingRecord) error

	// DeleteCrateEmbeddings removes the crate and all of its chunks.
	// Deleting a crate that does not exist is not an error.
	DeleteCrateEmbeddings(ctx context.Context, name string) error

	// GetCrateStats returns per-crate aggregates ordered by name.
	GetCrateStats(ctx context.Context) ([]*CrateStats, error)

	// FindEmbeddings returns the crate's chunks ordered by path and chunk index.
	FindEmbeddings(ctx context.Context, crateName string) ([]*EmbeddingRecord, error)
}
