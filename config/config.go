package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// Example ENV equivalent:
//
//	SERVER_PORT=8080
//	STORAGE_DRIVER=postgres
//	POSTGRES_HOST=localhost
//	POSTGRES_PORT=5432
//	POSTGRES_USER=postgres
//	POSTGRES_PASSWORD=postgres
//	POSTGRES_DB=freightrates
//	POSTGRES_SSLMODE=disable
//	EXCHANGE_RATES_URL=https://openexchangerates.org/api/latest.json
//	EXCHANGE_RATES_APP_ID=changeme
//	REFERENCE_CURRENCY=USD
//	REDIS_URL=redis://localhost:6379/0
//	UPLOAD_WRITE_MODE=upsert
type Config struct {
	Server   ServerConfig   // HTTP server configuration
	Storage  StorageConfig  // Which price store backend to use
	Postgres PostgresConfig // PostgreSQL connection settings
	SQLite   SQLiteConfig   // Embedded store settings
	Rates    RatesConfig    // Exchange rate source
	Redis    RedisConfig    // Optional exchange rate cache
	Upload   UploadConfig   // Upload reconciliation policy
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string // TCP port the HTTP server listens on
	RateLimitPerMinute int    // Requests allowed per client IP per minute
}

// StorageConfig selects the price store backend: "postgres" or "sqlite".
type StorageConfig struct {
	Driver string
}

// PostgresConfig defines connection details for PostgreSQL.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// SQLiteConfig points at the database file used by the embedded store.
type SQLiteConfig struct {
	Path string
}

// RatesConfig configures the external exchange rate source.
//
// Fields:
//   - URL: endpoint returning {"base": "...", "rates": {"EUR": 0.91, ...}}.
//   - AppID: credential sent as the app_id query parameter.
//   - Timeout: upper bound for one upstream attempt; retries stop after three.
//   - ReferenceCurrency: currency prices are stored in.
type RatesConfig struct {
	URL               string
	AppID             string
	Timeout           time.Duration
	ReferenceCurrency string
}

// RedisConfig enables caching of the exchange rate table when URL is set.
type RedisConfig struct {
	URL      string
	CacheTTL time.Duration
}

// UploadConfig selects how uploads reconcile with stored prices.
type UploadConfig struct {
	WriteMode string // "upsert" or "insert"
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and read by the process entry point,
// which passes the relevant pieces into each component's constructor.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing or invalid, validateConfig() terminates the app.
func LoadConfig() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 60)

	viper.SetDefault("STORAGE_DRIVER", "postgres")
	viper.SetDefault("SQLITE_PATH", "freightrates.db")

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "freightrates")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	viper.SetDefault("EXCHANGE_RATES_URL", "https://openexchangerates.org/api/latest.json")
	viper.SetDefault("EXCHANGE_RATES_APP_ID", "")
	viper.SetDefault("EXCHANGE_RATES_TIMEOUT", "5s")
	viper.SetDefault("REFERENCE_CURRENCY", "USD")

	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("RATES_CACHE_TTL", "1h")

	viper.SetDefault("UPLOAD_WRITE_MODE", "upsert")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()

	AppConfig = Config{
		Server: ServerConfig{
			Port:               viper.GetString("SERVER_PORT"),
			RateLimitPerMinute: viper.GetInt("RATE_LIMIT_PER_MINUTE"),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(viper.GetString("STORAGE_DRIVER")),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
		SQLite: SQLiteConfig{
			Path: viper.GetString("SQLITE_PATH"),
		},
		Rates: RatesConfig{
			URL:               viper.GetString("EXCHANGE_RATES_URL"),
			AppID:             viper.GetString("EXCHANGE_RATES_APP_ID"),
			Timeout:           viper.GetDuration("EXCHANGE_RATES_TIMEOUT"),
			ReferenceCurrency: strings.ToUpper(viper.GetString("REFERENCE_CURRENCY")),
		},
		Redis: RedisConfig{
			URL:      viper.GetString("REDIS_URL"),
			CacheTTL: viper.GetDuration("RATES_CACHE_TTL"),
		},
		Upload: UploadConfig{
			WriteMode: strings.ToLower(viper.GetString("UPLOAD_WRITE_MODE")),
		},
	}

	AppConfig.Postgres.URL = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		AppConfig.Postgres.User,
		AppConfig.Postgres.Password,
		AppConfig.Postgres.Host,
		AppConfig.Postgres.Port,
		AppConfig.Postgres.DBName,
		AppConfig.Postgres.SSLMode,
	)

	validateConfig()
}

// missingKeys returns the configuration keys that are absent or invalid.
// Postgres keys are only required when the postgres driver is selected.
func missingKeys(cfg Config) []string {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	switch cfg.Storage.Driver {
	case "postgres":
		if cfg.Postgres.Host == "" {
			missing = append(missing, "POSTGRES_HOST")
		}
		if cfg.Postgres.Port == 0 {
			missing = append(missing, "POSTGRES_PORT")
		}
		if cfg.Postgres.User == "" {
			missing = append(missing, "POSTGRES_USER")
		}
		if cfg.Postgres.Password == "" {
			missing = append(missing, "POSTGRES_PASSWORD")
		}
		if cfg.Postgres.DBName == "" {
			missing = append(missing, "POSTGRES_DB")
		}
	case "sqlite":
		if cfg.SQLite.Path == "" {
			missing = append(missing, "SQLITE_PATH")
		}
	default:
		missing = append(missing, "STORAGE_DRIVER")
	}
	if cfg.Rates.URL == "" {
		missing = append(missing, "EXCHANGE_RATES_URL")
	}
	if cfg.Rates.Timeout <= 0 {
		missing = append(missing, "EXCHANGE_RATES_TIMEOUT")
	}
	if len(cfg.Rates.ReferenceCurrency) != 3 {
		missing = append(missing, "REFERENCE_CURRENCY")
	}
	if cfg.Upload.WriteMode != "upsert" && cfg.Upload.WriteMode != "insert" {
		missing = append(missing, "UPLOAD_WRITE_MODE")
	}

	return missing
}

// validateConfig terminates the application when required variables are missing.
func validateConfig() {
	if missing := missingKeys(AppConfig); len(missing) > 0 {
		log.Fatalf("missing or invalid environment variables: %v\n", missing)
	}
}
