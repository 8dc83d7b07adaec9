// Package config loads application settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Cache     CacheConfig
	Ledger    LedgerConfig
	Reporting ReportingConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// StorageConfig locates the SQLite database.
type StorageConfig struct {
	DBPath string
}

// CacheConfig configures the Redis summary cache. An empty Addr disables it.
type CacheConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// LedgerConfig holds engine tuning and display options.
type LedgerConfig struct {
	LowStockThreshold decimal.Decimal
	Currency          string
}

// ReportingConfig holds scheduler-related settings. An empty CronSchedule
// disables the stock report.
type ReportingConfig struct {
	CronSchedule string
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// a missing .env is fine when everything comes from the environment
		_ = godotenv.Load()
	}

	redisDB, err := getenvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	ttl, err := getenvInt("SUMMARY_CACHE_TTL_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	threshold, err := decimal.NewFromString(getenvWithDefault("LOW_STOCK_THRESHOLD", "10"))
	if err != nil {
		return nil, fmt.Errorf("LOW_STOCK_THRESHOLD: %w", err)
	}
	pretty, err := strconv.ParseBool(getenvWithDefault("LOG_PRETTY", "false"))
	if err != nil {
		return nil, fmt.Errorf("LOG_PRETTY: %w", err)
	}

	cron, cronSet := os.LookupEnv("STOCK_REPORT_CRON")
	if !cronSet {
		cron = "0 * * * *"
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getenvWithDefault("APP_PORT", "8080"),
			AllowedOrigins: splitList(getenvWithDefault("ALLOWED_ORIGINS", "*")),
		},
		Storage: StorageConfig{
			DBPath: getenvWithDefault("DB_PATH", "./data/ledger.db"),
		},
		Cache: CacheConfig{
			RedisAddr:     os.Getenv("REDIS_ADDR"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisDB:       redisDB,
			TTL:           time.Duration(ttl) * time.Second,
		},
		Ledger: LedgerConfig{
			LowStockThreshold: threshold,
			Currency:          strings.ToUpper(getenvWithDefault("CURRENCY", "USD")),
		},
		Reporting: ReportingConfig{
			CronSchedule: strings.TrimSpace(cron),
		},
		Log: LogConfig{
			Level:  getenvWithDefault("LOG_LEVEL", "info"),
			Pretty: pretty,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}
	if c.Storage.DBPath == "" {
		return errors.New("DB_PATH must not be empty")
	}
	if !c.Ledger.LowStockThreshold.IsPositive() {
		return errors.New("LOW_STOCK_THRESHOLD must be positive")
	}
	if c.Cache.TTL <= 0 {
		return errors.New("SUMMARY_CACHE_TTL_SECONDS must be positive")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
