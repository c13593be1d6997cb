package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
)

// MemoryStoreURL selects the in-process store instead of the HTTP service.
const MemoryStoreURL = "memory://"

// Config holds all configuration for the application
type Config struct {
	LogLevel  string
	LogFormat string

	// Store service
	Port        string
	DatabaseURL string
	JWTSecret   string
	TokenTTL    time.Duration

	// Bot
	TelegramToken   string
	StoreURL        string
	ConfirmTimeout  time.Duration
	RefreshInterval time.Duration

	PrometheusPort string
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present; variables already set in
// the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:      getEnvOrDefault("LOG_FORMAT", "text"),
		Port:           getEnvOrDefault("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		StoreURL:       getEnvOrDefault("STORE_URL", MemoryStoreURL),
		PrometheusPort: getEnvOrDefault("PROMETHEUS_PORT", "9090"),
	}

	var result *multierror.Error
	var err error
	if cfg.TokenTTL, err = getDurationOrDefault("TOKEN_TTL", time.Hour); err != nil {
		result = multierror.Append(result, err)
	}
	if cfg.ConfirmTimeout, err = getDurationOrDefault("CONFIRM_TIMEOUT", time.Minute); err != nil {
		result = multierror.Append(result, err)
	}
	if cfg.RefreshInterval, err = getDurationOrDefault("REFRESH_INTERVAL", time.Minute); err != nil {
		result = multierror.Append(result, err)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		result = multierror.Append(result, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat))
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RequireServer checks the variables the store service cannot start without.
// DATABASE_URL is optional: without it the service keeps its data in memory.
func (c *Config) RequireServer() error {
	var result *multierror.Error
	if c.JWTSecret == "" {
		result = multierror.Append(result, fmt.Errorf("JWT_SECRET environment variable is required"))
	}
	if c.TokenTTL <= 0 {
		result = multierror.Append(result, fmt.Errorf("TOKEN_TTL must be positive"))
	}
	return result.ErrorOrNil()
}

// RequireBot checks the variables the Telegram front-end cannot start
// without.
func (c *Config) RequireBot() error {
	var result *multierror.Error
	if c.TelegramToken == "" {
		result = multierror.Append(result, fmt.Errorf("TELEGRAM_TOKEN environment variable is required"))
	}
	if !c.MemoryStore() && !strings.HasPrefix(c.StoreURL, "http://") && !strings.HasPrefix(c.StoreURL, "https://") {
		result = multierror.Append(result, fmt.Errorf("STORE_URL must be %s or an http(s) URL, got %q", MemoryStoreURL, c.StoreURL))
	}
	if c.ConfirmTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("CONFIRM_TIMEOUT must be positive"))
	}
	if c.RefreshInterval <= 0 {
		result = multierror.Append(result, fmt.Errorf("REFRESH_INTERVAL must be positive"))
	}
	return result.ErrorOrNil()
}

// MemoryStore reports whether the bot runs against the in-process store.
func (c *Config) MemoryStore() bool {
	return c.StoreURL == MemoryStoreURL
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}
