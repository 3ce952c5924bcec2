package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/cratedocs"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ cratedocs.CrateService = (*CrateService)(nil)

// CrateService implements cratedocs.CrateService using SQLite.
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
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM doc_embeddings e
			JOIN crates c ON c.id = e.crate_id
			WHERE c.name = ?
		)
	`, name).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// UpsertCrate creates the crate or updates its version, returning its ID.
// The updated_at timestamp is left alone until embeddings are inserted.
func (s *CrateService) UpsertCrate(ctx context.Context, name, version string) (string, error) {
	if name == "" {
		return "", cratedocs.Errorf(cratedocs.EINVALID, "crate name required")
	}

	now := timestamp(time.Now())

	var id string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO crates (id, name, version, created_at, updated_at)
		VALUES (?, ?, NULLIF(?, ''), ?, ?)
		ON CONFLICT(name) DO UPDATE SET version = COALESCE(excluded.version, crates.version)
		RETURNING id
	`, uuid.New().String(), name, version, now, now).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// InsertEmbeddingsBatch replaces the crate's chunks with records in a single
// transaction.
func (s *CrateService) InsertEmbeddingsBatch(ctx context.Context, crateID, crateName string, records []*cratedocs.EmbeddingRecord) error {
	if err := cratedocs.ValidateEmbeddingRecords(records); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var storedName string
	err = tx.QueryRowContext(ctx, "SELECT name FROM crates WHERE id = ?", crateID).Scan(&storedName)
	if err == sql.ErrNoRows {
		return cratedocs.Errorf(cratedocs.ENOTFOUND, "crate not found")
	}
	if err != nil {
		return err
	}
	if storedName != crateName {
		return cratedocs.Errorf(cratedocs.EINVALID, "crate %q does not match id %s", crateName, crateID)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM doc_embeddings WHERE crate_id = ?", crateID); err != nil {
		return fmt.Errorf("failed to clear previous embeddings: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO doc_embeddings (id, crate_id, crate_name, doc_path, chunk_index, content,
			content_hash, embedding, dimensions, token_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := timestamp(time.Now())
	for _, r := range records {
		blob, err := encodeVector(r.Embedding)
		if err != nil {
			return fmt.Errorf("failed to encode embedding for %s: %w", r.Path, err)
		}
		if _, err := stmt.ExecContext(ctx,
			uuid.New().String(), crateID, crateName, r.Path, r.ChunkIndex, r.Content,
			computeHash(r.Content), blob, len(r.Embedding), r.TokenCount, now,
		); err != nil {
			return fmt.Errorf("failed to insert embedding for %s: %w", r.Path, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "UPDATE crates SET updated_at = ? WHERE id = ?", now, crateID); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteCrateEmbeddings removes the crate and, by cascade, its chunks.
func (s *CrateService) DeleteCrateEmbeddings(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM crates WHERE name = ?", name)
	return err
}

// GetCrateStats returns per-crate document and token totals ordered by name.
func (s *CrateService) GetCrateStats(ctx context.Context) ([]*cratedocs.CrateStats, error) {
	rows, err := s.db.QueryContext(ctx, `
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
		var updatedAt string
		if err := rows.Scan(&st.Name, &st.Version, &st.TotalDocs, &st.TotalTokens, &updatedAt); err != nil {
			return nil, err
		}
		if st.LastUpdated, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
			return nil, err
		}
		stats = append(stats, &st)
	}

	return stats, rows.Err()
}

// FindEmbeddings returns the crate's chunks ordered by path and chunk index.
func (s *CrateService) FindEmbeddings(ctx context.Context, crateName string) ([]*cratedocs.EmbeddingRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_path, chunk_index, content, embedding, token_count
		FROM doc_embeddings
		WHERE crate_name = ?
		ORDER BY doc_path, chunk_index
	`, crateName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*cratedocs.EmbeddingRecord
	for rows.Next() {
		var r cratedocs.EmbeddingRecord
		var blob []byte
		if err := rows.Scan(&r.Path, &r.ChunkIndex, &r.Content, &blob, &r.TokenCount); err != nil {
			return nil, err
		}
		if r.Embedding, err = decodeVector(blob); err != nil {
			return nil, fmt.Errorf("failed to decode embedding for %s: %w", r.Path, err)
		}
		records = append(records, &r)
	}

	return records, rows.Err()
}

// computeHash computes a hash of the content using xxhash.
func computeHash(content string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(content))
}
