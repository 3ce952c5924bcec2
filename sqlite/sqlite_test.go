package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/cratedocs/sqlite"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDB_Open(t *testing.T) {
	t.Parallel()

	t.Run("creates schema on first open", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(":memory:")
		err := db.Open()
		require.NoError(t, err)
		defer db.Close()

		ctx := context.Background()

		var crateCount int
		err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM crates").Scan(&crateCount)
		require.NoError(t, err)

		var embeddingCount int
		err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM doc_embeddings").Scan(&embeddingCount)
		require.NoError(t, err)
	})

	t.Run("returns error for invalid path", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB("/nonexistent/path/db.sqlite")
		err := db.Open()
		require.Error(t, err)
	})

	t.Run("enables WAL mode for file-based databases", func(t *testing.T) {
		t.Parallel()

		dbPath := t.TempDir() + "/test.db"
		db := sqlite.NewDB(dbPath)
		err := db.Open()
		require.NoError(t, err)
		defer db.Close()

		ctx := context.Background()
		var journalMode string
		err = db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode)
		require.NoError(t, err)
		require.Equal(t, "wal", journalMode)
	})

	t.Run("reopening an existing database keeps data", func(t *testing.T) {
		t.Parallel()

		dbPath := t.TempDir() + "/test.db"
		ctx := context.Background()

		db := sqlite.NewDB(dbPath)
		require.NoError(t, db.Open())
		_, err := sqlite.NewCrateService(db).UpsertCrate(ctx, "serde", "1.0.0")
		require.NoError(t, err)
		require.NoError(t, db.Close())

		db = sqlite.NewDB(dbPath)
		require.NoError(t, db.Open())
		defer db.Close()

		stats, err := sqlite.NewCrateService(db).GetCrateStats(ctx)
		require.NoError(t, err)
		require.Len(t, stats, 1)
		require.Equal(t, "serde", stats[0].Name)
	})
}
