package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("MEDICOVER_USER", "12345678")
	t.Setenv("MEDICOVER_PASSWORD", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setCredentials(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "12345678", cfg.User)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, "https://mol.medicover.pl", cfg.BaseURL)
	assert.False(t, cfg.Debug)
	assert.Equal(t, time.Minute, cfg.WatchInterval)
}

func TestLoadMissingCredentials(t *testing.T) {
	t.Setenv("MEDICOVER_USER", "")
	t.Setenv("MEDICOVER_PASSWORD", "")

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingCredentials)

	t.Setenv("MEDICOVER_USER", "12345678")
	_, err = Load()
	assert.ErrorIs(t, err, ErrMissingCredentials, "password alone is not enough")
}

func TestLoadOverrides(t *testing.T) {
	setCredentials(t)
	t.Setenv("MEDICOVER_BASE_URL", "http://localhost:8080")
	t.Setenv("DEBUG", "true")
	t.Setenv("WATCH_INTERVAL", "15")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "1234")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 15*time.Second, cfg.WatchInterval)
	assert.Equal(t, "token", cfg.TelegramToken)
	assert.Equal(t, int64(1234), cfg.TelegramChatID)
}

func TestLoadInvalidChatID(t *testing.T) {
	setCredentials(t)
	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}
