package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Storage backends
const (
	BackendMemory     = "memory"
	BackendBadger     = "badger"
	BackendSQLite     = "sqlite"
	BackendClickHouse = "clickhouse"
	BackendRedis      = "redis"
	BackendPostgres   = "postgres"
)

// Cover backends
const (
	CoversLocal = "local"
	CoversMinIO = "minio"
)

// Config holds the application configuration
type Config struct {
	Env      string // "development" switches to a development logger
	LogLevel string
	Port     int

	StorageBackend string

	BadgerDir  string
	SQLitePath string

	// ClickHouse configuration
	ClickHouseHost     string
	ClickHousePort     int
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string
	ClickHouseUseTLS   bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PostgresDSN string

	// Cover images
	CoverBackend  string
	CoverDir      string
	CoverMaxBytes int64

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	// Telegram bot, disabled when the token is empty
	TelegramToken  string
	AllowedUserIDs []int64

	// Bot mode configuration
	WebhookMode bool   // If true, use webhook mode; if false, use polling mode
	WebhookURL  string // URL for webhook (required if WebhookMode is true)
}

// BotEnabled reports whether a Telegram token was configured
func (c *Config) BotEnabled() bool {
	return c.TelegramToken != ""
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{
		Env:      getEnv("APP_ENV", "production"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	port, err := intEnv("PORT", 8080)
	if err != nil {
		return nil, err
	}
	config.Port = port

	if err := loadStorage(config); err != nil {
		return nil, err
	}
	if err := loadCovers(config); err != nil {
		return nil, err
	}
	if err := loadBot(config); err != nil {
		return nil, err
	}

	return config, nil
}

func loadStorage(config *Config) error {
	config.StorageBackend = strings.ToLower(getEnv("STORAGE_BACKEND", BackendBadger))

	switch config.StorageBackend {
	case BackendMemory:
	case BackendBadger:
		config.BadgerDir = getEnv("BADGER_DIR", "./data/badger")
	case BackendSQLite:
		config.SQLitePath = getEnv("SQLITE_PATH", "./data/readinglist.db")
	case BackendClickHouse:
		config.ClickHouseHost = os.Getenv("CLICKHOUSE_HOST")
		if config.ClickHouseHost == "" {
			return fmt.Errorf("CLICKHOUSE_HOST is required when STORAGE_BACKEND is clickhouse")
		}

		port, err := intEnv("CLICKHOUSE_PORT", 9000) // Default ClickHouse native port
		if err != nil {
			return err
		}
		config.ClickHousePort = port

		config.ClickHouseDatabase = getEnv("CLICKHOUSE_DATABASE", "default")
		config.ClickHouseUser = getEnv("CLICKHOUSE_USER", "default")
		config.ClickHousePassword = os.Getenv("CLICKHOUSE_PASSWORD") // may be empty
		config.ClickHouseUseTLS = os.Getenv("CLICKHOUSE_USE_TLS") == "true"
	case BackendRedis:
		config.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
		config.RedisPassword = os.Getenv("REDIS_PASSWORD")

		db, err := intEnv("REDIS_DB", 0)
		if err != nil {
			return err
		}
		config.RedisDB = db
	case BackendPostgres:
		config.PostgresDSN = os.Getenv("POSTGRES_DSN")
		if config.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when STORAGE_BACKEND is postgres")
		}
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND: %s (expected memory, badger, sqlite, clickhouse, redis or postgres)", config.StorageBackend)
	}
	return nil
}

func loadCovers(config *Config) error {
	config.CoverBackend = strings.ToLower(getEnv("COVER_BACKEND", CoversLocal))

	maxBytes, err := intEnv("COVER_MAX_BYTES", 5*1024*1024)
	if err != nil {
		return err
	}
	if maxBytes <= 0 {
		return fmt.Errorf("COVER_MAX_BYTES must be positive")
	}
	config.CoverMaxBytes = int64(maxBytes)

	switch config.CoverBackend {
	case CoversLocal:
		config.CoverDir = getEnv("COVER_DIR", "./data/covers")
	case CoversMinIO:
		config.MinIOEndpoint = os.Getenv("MINIO_ENDPOINT")
		if config.MinIOEndpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT is required when COVER_BACKEND is minio")
		}
		config.MinIOAccessKey = os.Getenv("MINIO_ACCESS_KEY")
		config.MinIOSecretKey = os.Getenv("MINIO_SECRET_KEY")
		config.MinIOBucket = getEnv("MINIO_BUCKET", "readinglist")
		config.MinIOUseSSL = os.Getenv("MINIO_USE_SSL") == "true"
	default:
		return fmt.Errorf("invalid COVER_BACKEND: %s (expected local or minio)", config.CoverBackend)
	}
	return nil
}

func loadBot(config *Config) error {
	config.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if config.TelegramToken == "" {
		return nil
	}

	// Allowed User IDs (required with a token)
	allowedIDsStr := os.Getenv("ALLOWED_USER_IDS")
	if allowedIDsStr == "" {
		return fmt.Errorf("ALLOWED_USER_IDS is required (comma-separated list of Telegram user IDs)")
	}

	idStrs := strings.Split(allowedIDsStr, ",")
	for _, idStr := range idStrs {
		id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user ID in ALLOWED_USER_IDS: %s", idStr)
		}
		config.AllowedUserIDs = append(config.AllowedUserIDs, id)
	}

	config.WebhookMode = os.Getenv("WEBHOOK_MODE") == "true"
	if config.WebhookMode {
		config.WebhookURL = os.Getenv("WEBHOOK_URL")
		if config.WebhookURL == "" {
			return fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_MODE is true")
		}
	}
	return nil
}

// getEnv retrieves environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
