// Package testutil opens throwaway migrated databases for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/HardPulse/mazpan/internal/bootstrap"
	"github.com/HardPulse/mazpan/internal/migrations"
	"github.com/HardPulse/mazpan/internal/repository/sqlstore"
)

// NewStore returns a store over a fresh SQLite file migrated to the latest schema.
func NewStore(t testing.TB) *sqlstore.Store {
	t.Helper()
	db, err := bootstrap.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(db, string(sqlstore.DialectSQLite)))
	return sqlstore.NewStore(db, sqlstore.DialectSQLite)
}
