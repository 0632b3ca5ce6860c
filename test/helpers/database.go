package helpers

import (
	"testing"

	"gorm.io/gorm"

	"github.com/astrokernel/imperium/internal/infrastructure/database"
)

// NewTestDB opens a migrated in-memory sqlite database scoped to the test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.NewTestConnection()
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
