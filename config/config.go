package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	devJWTSecret        = "otica-dev-access-secret"
	devJWTRefreshSecret = "otica-dev-refresh-secret"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL    string
	DatabaseDriver string
	Port           string
	GoEnv          string
	LogLevel       string
	// EnvFile is the .env file Load read, empty when only the process environment was used
	EnvFile string

	JWTSecret        string
	JWTRefreshSecret string
	JWTIssuer        string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration

	StorageDriver      string
	UploadDir          string
	UploadURLPrefix    string
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSS3PublicURL     string

	RedisAddr       string
	CatalogCacheTTL time.Duration

	KafkaBrokers    []string
	KafkaOrderTopic string

	CORSAllowedOrigins []string
	LoginRatePerMinute int
}

var current *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Nothing is logged here: the logger is configured from the result
	loaded := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(loaded); err != nil {
		loaded = ".env"
		if err := godotenv.Load(); err != nil {
			// In production variables are set directly on the process
			loaded = ""
		}
	}

	cfg := &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")),
		Port:           getEnv("PORT", "8080"),
		GoEnv:          getEnv("GO_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		EnvFile:        loaded,

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),
		JWTIssuer:        getEnv("JWT_ISSUER", "otica-api"),
		AccessTokenTTL:   getDurationEnv("ACCESS_TOKEN_TTL_MINUTES", 15, time.Minute),
		RefreshTokenTTL:  getDurationEnv("REFRESH_TOKEN_TTL_DAYS", 7, 24*time.Hour),

		StorageDriver:      strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
		UploadDir:          getEnv("UPLOAD_DIR", "public/images"),
		UploadURLPrefix:    strings.TrimRight(getEnv("UPLOAD_URL_PREFIX", "/images"), "/"),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSS3PublicURL:     strings.TrimRight(getEnv("AWS_S3_PUBLIC_URL", ""), "/"),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		CatalogCacheTTL: getDurationEnv("CATALOG_CACHE_TTL_SECONDS", 300, time.Second),

		KafkaBrokers:    getListEnv("KAFKA_BROKERS"),
		KafkaOrderTopic: getEnv("KAFKA_ORDER_TOPIC", "order-events"),

		CORSAllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS"),
		LoginRatePerMinute: getIntEnv("LOGIN_RATE_PER_MINUTE", 10),
	}

	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"http://localhost:3000"}
	}

	if !cfg.IsProduction() {
		if cfg.JWTSecret == "" {
			cfg.JWTSecret = devJWTSecret
		}
		if cfg.JWTRefreshSecret == "" {
			cfg.JWTRefreshSecret = devJWTRefreshSecret
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	current = cfg
	return cfg, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.DatabaseDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("DATABASE_DRIVER %q is not supported", c.DatabaseDriver)
	}
	if c.JWTSecret == "" || c.JWTRefreshSecret == "" {
		return fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET are required")
	}
	if c.JWTSecret == c.JWTRefreshSecret {
		return fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	switch c.StorageDriver {
	case "local":
	case "s3":
		if c.AWSS3Bucket == "" {
			return fmt.Errorf("AWS_S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER %q is not supported", c.StorageDriver)
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// GetConfig returns the configuration loaded by Load or installed by SetConfig
func GetConfig() *Config {
	return current
}

// SetConfig sets the configuration instance (primarily for testing)
func SetConfig(cfg *Config) {
	current = cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	return time.Duration(getIntEnv(key, defaultValue)) * unit
}

func getListEnv(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
