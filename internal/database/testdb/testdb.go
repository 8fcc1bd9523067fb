// Package testdb wires an isolated in-memory SQLite store into the global
// database handle for tests.
package testdb

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tylerheal/clientportal/internal/database"
	"github.com/tylerheal/clientportal/internal/models"
)

var sequence int

// Setup points database.DB at a fresh migrated in-memory store. Each call
// gets its own named shared-cache database so parallel connections within
// one test see the same data while tests stay isolated from each other.
func Setup(t *testing.T) *gorm.DB {
	t.Helper()

	sequence++
	dsn := fmt.Sprintf("file:testdb_%d?mode=memory&cache=shared", sequence)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	// The handle stays assigned after the test: fire-and-forget notification
	// goroutines may still read it while the next test is starting, and a
	// live in-memory store is harmless to leave behind.
	database.DB = db
	return db
}
