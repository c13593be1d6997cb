package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LOG_LEVEL", "LOG_FORMAT", "PORT", "DATABASE_URL", "JWT_SECRET", "TOKEN_TTL",
		"TELEGRAM_TOKEN", "STORE_URL", "PROMETHEUS_PORT", "CONFIRM_TIMEOUT", "REFRESH_INTERVAL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, time.Minute, cfg.ConfirmTimeout)
	assert.True(t, cfg.MemoryStore())
}

func TestLoad_ParsesDurations(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("REFRESH_INTERVAL", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
}

func TestLoad_ReportsEveryBadValue(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("TOKEN_TTL", "soon")
	t.Setenv("CONFIRM_TIMEOUT", "later")
	t.Setenv("LOG_FORMAT", "xml")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOKEN_TTL")
	assert.Contains(t, err.Error(), "CONFIRM_TIMEOUT")
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}

func TestRequireServer(t *testing.T) {
	cfg := &Config{TokenTTL: time.Hour}
	assert.ErrorContains(t, cfg.RequireServer(), "JWT_SECRET")

	cfg.JWTSecret = "secret"
	assert.NoError(t, cfg.RequireServer())
}

func TestRequireBot(t *testing.T) {
	cfg := &Config{StoreURL: "ftp://store", ConfirmTimeout: time.Minute, RefreshInterval: time.Minute}
	err := cfg.RequireBot()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_TOKEN")
	assert.Contains(t, err.Error(), "STORE_URL")

	cfg.TelegramToken = "token"
	cfg.StoreURL = "http://localhost:8080"
	assert.NoError(t, cfg.RequireBot())
	assert.False(t, cfg.MemoryStore())
}
