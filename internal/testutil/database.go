package testutil

import (
	"testing"

	"gsc-go/internal/database"
	"gsc-go/internal/gsc"
)

// NewTestDatabase creates a new in-memory SQLite catalog with all
// migrations applied. The database is closed when the test completes.
func NewTestDatabase(t *testing.T) gsc.Database {
	t.Helper()

	db, err := database.NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		t.Fatalf("failed to apply migrations: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
