package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"meal-planner/internal/database"
)

// NewTestDB creates a file-backed SQLite database in a temp directory with all
// migrations applied. The database is closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db.SQL
}
