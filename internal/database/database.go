package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tylerheal/clientportal/internal/config"
)

// DB is the global database instance
var DB *gorm.DB

// InitDatabase opens the configured store. SQLite is the default so a
// self-hosted portal runs as a single binary; Postgres is opt-in via
// DB_DRIVER=postgres.
func InitDatabase() error {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	var err error
	switch config.GetEnv("DB_DRIVER", "sqlite") {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			config.GetEnv("DB_HOST", "localhost"),
			config.GetEnv("DB_USER", "portal"),
			config.GetEnv("DB_PASSWORD", ""),
			config.GetEnv("DB_NAME", "portal"),
			config.GetEnv("DB_PORT", "5432"),
			config.GetEnv("DB_SSLMODE", "disable"),
		)
		DB, err = gorm.Open(postgres.Open(dsn), gormConfig)
	default:
		path := config.GetEnv("DB_PATH", filepath.Join("data", "portal.db"))
		if dir := filepath.Dir(path); dir != "." {
			if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
				return fmt.Errorf("create data directory: %w", mkErr)
			}
		}
		DB, err = gorm.Open(sqlite.Open(path), gormConfig)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	logrus.Info("database connected")
	return nil
}

// RunMigrations runs auto-migration for the given models.
func RunMigrations(models ...interface{}) error {
	if err := DB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
