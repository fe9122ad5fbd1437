package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates an in-memory SQLite database for testing.
// The database is automatically closed when the test completes.
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(memoryPath)
	require.NoError(t, err, "failed to create test database")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// Float64Ptr returns a pointer to the given float64
func Float64Ptr(f float64) *float64 {
	return &f
}
