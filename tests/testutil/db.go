package testutil

import (
	"testing"
	"time"

	"github.com/kendall-kelly/otica-api/config"
	"github.com/kendall-kelly/otica-api/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Secrets used by TestConfig
const (
	TestJWTSecret        = "test-access-secret"
	TestJWTRefreshSecret = "test-refresh-secret"
)

// SetupTestDB opens a migrated in-memory sqlite database and installs it with config.SetDB.
// A single connection keeps every query on the same in-memory database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	config.SetDB(db)
	return db
}

// TestConfig returns a test configuration and installs it with config.SetConfig
func TestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{
		DatabaseURL:        ":memory:",
		DatabaseDriver:     "sqlite",
		Port:               "8080",
		GoEnv:              "test",
		LogLevel:           "error",
		JWTSecret:          TestJWTSecret,
		JWTRefreshSecret:   TestJWTRefreshSecret,
		JWTIssuer:          "otica-api",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    7 * 24 * time.Hour,
		StorageDriver:      "local",
		UploadDir:          t.TempDir(),
		UploadURLPrefix:    "/images",
		CatalogCacheTTL:    time.Minute,
		KafkaOrderTopic:    "order-events",
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		LoginRatePerMinute: 1000,
	}
	config.SetConfig(cfg)
	return cfg
}
