// Package postgres provides a PostgreSQL + pgvector implementation of the
// cratedocs crate store.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

// DB represents a pooled PostgreSQL connection.
type DB struct {
	pool *pgxpool.Pool
	dsn  string
}

// NewDB creates a new DB instance for the given connection string.
func NewDB(dsn string) *DB {
	return &DB{dsn: dsn}
}

// Open creates the schema if needed and opens the connection pool.
func (db *DB) Open(ctx context.Context) error {
	config, err := pgxpool.ParseConfig(db.dsn)
	if err != nil {
		return fmt.Errorf("failed to parse database url: %w", err)
	}

	// The vector type must exist before the pool registers it per connection.
	conn, err := pgx.ConnectConfig(ctx, config.ConnConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	err = createSchema(ctx, conn)
	conn.Close(ctx)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	db.pool = pool
	return nil
}

// Close closes the pool.
func (db *DB) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

func createSchema(ctx context.Context, conn *pgx.Conn) error {
	_, err := conn.Exec(ctx, `
		CREATE EXTENSION IF NOT EXISTS vector;

		CREATE TABLE IF NOT EXISTS crates (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			version TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS doc_embeddings (
			id TEXT PRIMARY KEY,
			crate_id TEXT NOT NULL REFERENCES crates(id) ON DELETE CASCADE,
			crate_name TEXT NOT NULL,
			doc_path TEXT NOT NULL,
			chunk_index INTEGER NOT NULL DEFAULT 0,
			content TEXT NOT NULL,
			content_hash TEXT NOT NULL DEFAULT '',
			embedding vector NOT NULL,
			token_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL,
			UNIQUE (crate_id, doc_path, chunk_index)
		);

		CREATE INDEX IF NOT EXISTS idx_doc_embeddings_crate_name ON doc_embeddings(crate_name);
	`)
	return err
}
