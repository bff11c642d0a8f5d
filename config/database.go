package config

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// ConnectDatabase opens the database configured by DATABASE_DRIVER and DATABASE_URL
func ConnectDatabase(cfg *Config) error {
	dialector, err := dialectorFor(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}

	gormLogger := logger.Default.LogMode(logger.Warn)
	if cfg.IsDevelopment() {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.DatabaseDriver == "sqlite" {
		// sqlite has a single writer; one connection also keeps :memory: databases shared
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get database handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	DB = db
	log.Info().Str("driver", cfg.DatabaseDriver).Msg("Database connection established successfully")
	return nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "", "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (primarily for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
