package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/cratedocs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

// Ensure CrateService implements cratedocs.CrateService.
var _ cratedocs.CrateService = (*CrateService)(nil)

// CrateService implements cratedocs.CrateService on PostgreSQL.
type CrateService struct {
	db *DB
}

// NewCrateService creates a new CrateService.
func NewCrateService(db *DB) *CrateService {
	return &CrateService{db: db}
}

// HasEmbeddings reports whether any chunks are stored for the crate.
func (s *CrateService) HasEmbeddings(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.db.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM doc_embeddings e
			JOIN crates c ON c.id = e.crate_id
			WHERE c.name = $1
		)
	`, name).Scan(&exists)
	return exists, err
}

// UpsertCrate creates the crate or updates its version, returning its ID.
func (s *CrateService) UpsertCrate(ctx context.Context, name, version string) (string, error) {
	if name == "" {
		return "", cratedocs.Errorf(cratedocs.EINVALID, "crate name required")
	}

	now := time.Now().UTC()

	var id string
	err := s.db.pool.QueryRow(ctx, `
		INSERT INTO crates (id, name, version, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $4)
		ON CONFLICT (name) DO UPDATE SET version = COALESCE(EXCLUDED.version, crates.version)
		RETURNING id
	`, uuid.New().String(), name, version, now).Scan(&id)
	return id, err
}

// InsertEmbeddingsBatch replaces the crate's chunks with records in a single
// transaction.
func (s *CrateService) InsertEmbeddingsBatch(ctx context.Context, crateID, crateName string, records []*cratedocs.EmbeddingRecord) error {
	if err := cratedocs.ValidateEmbeddingRecords(records); err != nil {
		return err
	}

	tx, err := s.db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock the crate row so concurrent replacements of one crate serialize.
	var storedName string
	err = tx.QueryRow(ctx, "SELECT name FROM crates WHERE id = $1 FOR UPDATE", crateID).Scan(&storedName)
	if errors.Is(err, pgx.ErrNoRows) {
		return cratedocs.Errorf(cratedocs.ENOTFOUND, "crate not found")
	}
	if err != nil {
		return err
	}
	if storedName != crateName {
		return cratedocs.Errorf(cratedocs.EINVALID, "crate %q does not match id %s", crateName, crateID)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM doc_embeddings WHERE crate_id = $1", crateID); err != nil {
		return fmt.Errorf("failed to clear previous embeddings: %w", err)
	}

	now := time.Now().UTC()
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"doc_embeddings"},
		[]string{"id", "crate_id", "crate_name", "doc_path", "chunk_index", "content",
			"content_hash", "embedding", "token_count", "created_at"},
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			r := records[i]
			return []any{
				uuid.New().String(), crateID, crateName, r.Path, r.ChunkIndex, r.Content,
				computeHash(r.Content), pgvector.NewVector(r.Embedding), r.TokenCount, now,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to insert embeddings: %w", err)
	}

	if _, err := tx.Exec(ctx, "UPDATE crates SET updated_at = $1 WHERE id = $2", now, crateID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// DeleteCrateEmbeddings removes the crate and, by cascade, its chunks.
func (s *CrateService) DeleteCrateEmbeddings(ctx context.Context, name string) error {
	_, err := s.db.pool.Exec(ctx, "DELETE FROM crates WHERE name = $1", name)
	return err
}

// GetCrateStats returns per-crate document and token totals ordered by name.
func (s *CrateService) GetCrateStats(ctx context.Context) ([]*cratedocs.CrateStats, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT c.name, COALESCE(c.version, ''), COUNT(DISTINCT e.doc_path),
			COALESCE(SUM(e.token_count), 0), c.updated_at
		FROM crates c
		LEFT JOIN doc_embeddings e ON e.crate_id = c.id
		GROUP BY c.id
		ORDER BY c.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []*cratedocs.CrateStats
	for rows.Next() {
		var st cratedocs.CrateStats
		if err := rows.Scan(&st.Name, &st.Version, &st.TotalDocs, &st.TotalTokens, &st.LastUpdated); err != nil {
			return nil, err
		}
		stats = append(stats, &st)
	}

	return stats, rows.Err()
}

// FindEmbeddings returns the crate's chunks ordered by path and chunk index.
func (s *CrateService) FindEmbeddings(ctx context.Context, crateName string) ([]*cratedocs.EmbeddingRecord, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT doc_path, chunk_index, content, embedding, token_count
		FROM doc_embeddings
		WHERE crate_name = $1
		ORDER BY doc_path, chunk_index
	`, crateName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*cratedocs.EmbeddingRecord
	for rows.Next() {
		var r cratedocs.EmbeddingRecord
		var vec pgvector.Vector
		if err := rows.Scan(&r.Path, &r.ChunkIndex, &r.Content, &vec, &r.TokenCount); err != nil {
			return nil, err
		}
		r.Embedding = vec.Slice()
		records = append(records, &r)
	}

	return records, rows.Err()
}

func computeHash(content string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(content))
}
