package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	// HTTP Server
	Port     string
	LogLevel string

	// Local durable cache
	SQLiteDBPath string

	// Remote backend selection
	DataBackend   string
	DatabaseURL   string
	SeedDir       string
	RemoteTimeout time.Duration
	// CategorySource is "backend" (the hosted table) or "sheets".
	CategorySource string

	// Sync
	SyncBatchSize             int
	SyncInterval              time.Duration
	ConnectivityProbeInterval time.Duration

	// Autosave
	AutosaveDelay time.Duration
	AutosaveGrace time.Duration

	// AMQP (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export (optional)
	GoogleSpreadsheetID   string
	GoogleSheetName       string
	GoogleCategoriesSheet string
	GoogleOAuthClientFile string
	GoogleOAuthTokenFile  string
	GoogleOAuthClientJSON string
	GoogleOAuthTokenJSON  string

	// Reports and notifications
	ReportCacheTTL     time.Duration
	DigestInterval     time.Duration
	TrendDropThreshold decimal.Decimal
	CurrencyLabel      string
}

func Load() *Config {
	cfg := &Config{
		Port:     getEnv("PORT", "8081"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/jard.db"),

		DataBackend:   getEnv("DATA_BACKEND", "memory"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		SeedDir:       getEnv("SEED_DIR", "data"),
		RemoteTimeout: getEnvDuration("REMOTE_TIMEOUT", 15*time.Second),

		CategorySource: getEnv("CATEGORY_SOURCE", "backend"),

		SyncBatchSize:             getEnvInt("SYNC_BATCH_SIZE", 50),
		SyncInterval:              getEnvDuration("SYNC_INTERVAL", 30*time.Second),
		ConnectivityProbeInterval: getEnvDuration("CONNECTIVITY_PROBE_INTERVAL", 10*time.Second),

		AutosaveDelay: getEnvDuration("AUTOSAVE_DELAY", 2*time.Second),
		AutosaveGrace: getEnvDuration("AUTOSAVE_GRACE", 3*time.Second),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "jard"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "inventory_sync"),

		GoogleSpreadsheetID:   getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:       getEnv("GOOGLE_SHEET_NAME", "Inventory"),
		GoogleCategoriesSheet: getEnv("GOOGLE_CATEGORIES_SHEET", "Categories"),
		GoogleOAuthClientFile: getEnv("GOOGLE_OAUTH_CLIENT_FILE", ""),
		GoogleOAuthTokenFile:  getEnv("GOOGLE_OAUTH_TOKEN_FILE", ""),
		GoogleOAuthClientJSON: getEnv("GOOGLE_OAUTH_CLIENT_JSON", ""),
		GoogleOAuthTokenJSON:  getEnv("GOOGLE_OAUTH_TOKEN_JSON", ""),

		ReportCacheTTL:     getEnvDuration("REPORT_CACHE_TTL", 5*time.Minute),
		DigestInterval:     getEnvDuration("DIGEST_INTERVAL", time.Hour),
		TrendDropThreshold: getEnvDecimal("TREND_DROP_THRESHOLD", decimal.RequireFromString("0.2")),
		CurrencyLabel:      getEnv("CURRENCY_LABEL", "JOD"),
	}

	return cfg
}

// SheetsEnabled reports whether a Google Sheets export target is configured.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// SlogLevel maps LogLevel to a slog level, defaulting to Info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	validBackends := []string{"memory", "postgres"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "postgres" {
		if c.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required when using postgres backend")
		} else if u, err := url.Parse(c.DatabaseURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid DATABASE_URL: %v", err))
		} else if u.Scheme != "postgres" && u.Scheme != "postgresql" {
			errors = append(errors, fmt.Sprintf("invalid DATABASE_URL scheme '%s': must be 'postgres' or 'postgresql'", u.Scheme))
		}
	}

	switch c.CategorySource {
	case "backend":
	case "sheets":
		if !c.SheetsEnabled() {
			errors = append(errors, "GOOGLE_SPREADSHEET_ID is required when CATEGORY_SOURCE is sheets")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid category source '%s': must be 'backend' or 'sheets'", c.CategorySource))
	}

	// The local cache is always on.
	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SheetsEnabled() {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when a spreadsheet ID is set")
		}
		hasClientFile := c.GoogleOAuthClientFile != ""
		hasClientJSON := c.GoogleOAuthClientJSON != ""
		if !hasClientFile && !hasClientJSON {
			errors = append(errors, "either GOOGLE_OAUTH_CLIENT_FILE or GOOGLE_OAUTH_CLIENT_JSON must be provided for sheets export")
		}
		hasTokenFile := c.GoogleOAuthTokenFile != ""
		hasTokenJSON := c.GoogleOAuthTokenJSON != ""
		if !hasTokenFile && !hasTokenJSON {
			errors = append(errors, "either GOOGLE_OAUTH_TOKEN_FILE or GOOGLE_OAUTH_TOKEN_JSON must be provided for sheets export")
		}
		if hasClientFile {
			if _, err := os.Stat(c.GoogleOAuthClientFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google OAuth client file does not exist: %s", c.GoogleOAuthClientFile))
			}
		}
		if hasTokenFile {
			if _, err := os.Stat(c.GoogleOAuthTokenFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google OAuth token file does not exist: %s", c.GoogleOAuthTokenFile))
			}
		}
	}

	if c.SyncBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at least 1", c.SyncBatchSize))
	} else if c.SyncBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at most 1000", c.SyncBatchSize))
	}

	if c.SyncInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	if c.RemoteTimeout < time.Second || c.RemoteTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid remote timeout %v: must be between 1 second and 5 minutes", c.RemoteTimeout))
	}
	if c.ConnectivityProbeInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid connectivity probe interval %v: must be at least 1 second", c.ConnectivityProbeInterval))
	}
	if c.AutosaveDelay <= 0 {
		errors = append(errors, fmt.Sprintf("invalid autosave delay %v: must be positive", c.AutosaveDelay))
	}
	if c.AutosaveGrace < 0 {
		errors = append(errors, fmt.Sprintf("invalid autosave grace %v: must not be negative", c.AutosaveGrace))
	}
	if c.DigestInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid digest interval %v: must be at least 1 minute", c.DigestInterval))
	}
	if !c.TrendDropThreshold.IsPositive() || c.TrendDropThreshold.GreaterThan(decimal.NewFromInt(1)) {
		errors = append(errors, fmt.Sprintf("invalid trend drop threshold %s: must be in (0, 1]", c.TrendDropThreshold))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}
