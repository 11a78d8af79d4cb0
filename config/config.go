package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"mediplanner/medicover"
)

// ErrMissingCredentials is returned when the Medicover credentials are not
// configured. It is raised before any network call is attempted.
var ErrMissingCredentials = errors.New("config: MEDICOVER_USER and MEDICOVER_PASSWORD must be set")

// Config holds the application configuration, sourced from the environment
// and an optional .env file.
type Config struct {
	User     string
	Password string
	BaseURL  string
	Debug    bool

	// Telegram notifications for watch mode; optional.
	TelegramToken  string
	TelegramChatID int64

	WatchInterval time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first, without overriding already-exported
// variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		User:          os.Getenv("MEDICOVER_USER"),
		Password:      os.Getenv("MEDICOVER_PASSWORD"),
		BaseURL:       getEnv("MEDICOVER_BASE_URL", medicover.DefaultBaseURL),
		Debug:         getEnvBool("DEBUG", false),
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		WatchInterval: time.Duration(getEnvInt("WATCH_INTERVAL", 60)) * time.Second,
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		parsed, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, errors.New("config: TELEGRAM_CHAT_ID must be an integer")
		}
		cfg.TelegramChatID = parsed
	}

	if cfg.User == "" || cfg.Password == "" {
		return nil, ErrMissingCredentials
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
