package testutils

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/phrazzld/docqa-api/internal/config"
	"github.com/phrazzld/docqa-api/internal/platform/migrations"
	"github.com/phrazzld/docqa-api/internal/platform/sqlite"
	"github.com/stretchr/testify/require"
)

// SQLiteConfig returns a database configuration for a fresh file in dir.
func SQLiteConfig(dir string) config.DatabaseConfig {
	return config.DatabaseConfig{
		Driver:      config.DriverSQLite,
		URL:         filepath.Join(dir, "docqa_test.db"),
		AutoMigrate: true,
	}
}

// OpenSQLite opens a migrated SQLite database in a temporary directory.
// The database is closed when the test completes.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := sqlite.Open(ctx, SQLiteConfig(t.TempDir()), DiscardLogger())
	require.NoError(t, err, "failed to open sqlite database")
	t.Cleanup(func() {
		AssertCloseNoError(t, db)
	})

	require.NoError(t, migrations.Up(ctx, db, config.DriverSQLite, DiscardLogger()),
		"failed to apply migrations")
	return db
}

// WithTx runs fn inside a transaction that is rolled back afterwards.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "failed to begin transaction")
	defer AssertRollbackNoError(t, tx)

	fn(t, tx)
}
