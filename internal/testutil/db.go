// Package testutil provides test utilities for ledger setup.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/curioledger/curio/internal/infrastructure/sqlite"
)

// OpenTestLedger creates a migrated ledger database in a temp directory.
// The database is closed when the test finishes.
func OpenTestLedger(t *testing.T) *sqlite.DB {
	t.Helper()

	db, err := sqlite.NewDB(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}
