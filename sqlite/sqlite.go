// Package sqlite provides SQLite-based storage implementations for cratedocs services.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB wraps the SQLite handle shared by the services in this package.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB returns an unopened DB for path; ":memory:" selects an in-memory
// database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open connects to the database, applies connection pragmas and migrates the
// crates and doc_embeddings tables.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", db.path, err)
	}
	// One writer at a time.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("connect sqlite %s: %w", db.path, err)
	}

	for _, pragma := range db.pragmas() {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}

	db.db = conn
	if err := db.createSchema(); err != nil {
		conn.Close()
		db.db = nil
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// pragmas lists the statements run on every new connection. In-memory
// databases cannot use WAL.
func (db *DB) pragmas() []string {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	if db.path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	return pragmas
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// QueryRowContext runs a query expected to return at most one row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext runs a query returning rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// BeginTx starts a transaction.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, opts)
}

// ExecContext runs a statement without returning rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

func (db *DB) createSchema() error {
	const schema = `
		CREATE TABLE IF NOT EXISTS crates (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			version TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS doc_embeddings (
			id TEXT PRIMARY KEY,
			crate_id TEXT NOT NULL REFERENCES crates(id) ON DELETE CASCADE,
			crate_name TEXT NOT NULL,
			doc_path TEXT NOT NULL,
			chunk_index INTEGER NOT NULL DEFAULT 0,
			content TEXT NOT NULL,
			content_hash TEXT NOT NULL DEFAULT '',
			embedding BLOB NOT NULL,
			dimensions INTEGER NOT NULL,
			token_count INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			UNIQUE (crate_id, doc_path, chunk_index)
		);

		CREATE INDEX IF NOT EXISTS idx_doc_embeddings_crate_id ON doc_embeddings(crate_id);
		CREATE INDEX IF NOT EXISTS idx_doc_embeddings_crate_name ON doc_embeddings(crate_name);
	`

	_, err := db.db.Exec(schema)
	return err
}
