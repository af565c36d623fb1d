package testenv

import (
	"testing"

	"github.com/localnerve/wpq-drafts/internal/config"
	"github.com/localnerve/wpq-drafts/internal/database"
	"github.com/localnerve/wpq-drafts/internal/logging"
	"gorm.io/gorm"
)

// SQLiteConfig describes a private in-memory database on the pure Go driver.
// One connection keeps the database alive for the pool's lifetime.
func SQLiteConfig() *config.Config {
	return &config.Config{
		DBType:               "sqlite",
		DBAppDatabase:        ":memory:",
		DBAppConnectionLimit: 1,
		DBConnectionLimit:    1,
		DBLogLevel:           "silent",
		AuthzURL:             "http://authorizer.invalid",
		AuthzClientID:        "test",
		MaxUploadBytes:       1 << 20,
	}
}

// SQLite opens a migrated in-memory database that is closed when t ends.
func SQLite(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Connect(SQLiteConfig(), logging.Discard())
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
