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
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	SQLite   SQLiteConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Advisory AdvisoryConfig
	Drafting DraftingConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// StorageConfig selects the relational backend.
type StorageConfig struct {
	Driver        string
	RunMigrations bool
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// SQLiteConfig holds the embedded database location.
type SQLiteConfig struct {
	Path string
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AdvisoryConfig configures the generative-AI ticket analysis.
type AdvisoryConfig struct {
	APIKey          string
	Model           string
	TimeoutSeconds  int
	OnCreate        bool
	CacheTTLMinutes int
}

// DraftingConfig configures the chat-bot draft reply service.
type DraftingConfig struct {
	BaseURL        string
	BotID          int
	BotToken       string
	TimeoutSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	driver := strings.ToLower(getEnv("STORAGE_DRIVER", DriverSQLite))
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q", driver)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "support-desk"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Storage: StorageConfig{
			Driver:        driver,
			RunMigrations: getEnvAsBool("DB_RUN_MIGRATIONS", true),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "./data/support-desk.db"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Advisory: AdvisoryConfig{
			APIKey:          os.Getenv("GEMINI_API_KEY"),
			Model:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			TimeoutSeconds:  getEnvAsInt("ADVISORY_TIMEOUT_SECONDS", 8),
			OnCreate:        getEnvAsBool("ADVISORY_ON_CREATE", true),
			CacheTTLMinutes: getEnvAsInt("ADVISORY_CACHE_TTL_MINUTES", 60),
		},
		Drafting: DraftingConfig{
			BaseURL:        getEnv("PROTALK_BASE_URL", "https://api.pro-talk.ru/api/v1.0"),
			BotID:          getEnvAsInt("PROTALK_BOT_ID", 0),
			BotToken:       os.Getenv("PROTALK_BOT_TOKEN"),
			TimeoutSeconds: getEnvAsInt("DRAFT_TIMEOUT_SECONDS", 15),
		},
	}

	if cfg.Storage.Driver == DriverPostgres && cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN required when STORAGE_DRIVER=%s", DriverPostgres)
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	return seconds(a.RequestTimeoutSeconds)
}

// Timeout bounds a single analysis call.
func (a AdvisoryConfig) Timeout() time.Duration {
	return seconds(a.TimeoutSeconds)
}

// CacheTTL is how long an analysis stays cached; zero disables caching.
func (a AdvisoryConfig) CacheTTL() time.Duration {
	if a.CacheTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(a.CacheTTLMinutes) * time.Minute
}

// Timeout bounds a single draft request.
func (d DraftingConfig) Timeout() time.Duration {
	return seconds(d.TimeoutSeconds)
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
