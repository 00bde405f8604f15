package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for both binaries. The bot ignores the
// server fields and vice versa.
type Config struct {
	// Bot side.
	TelegramToken  string
	APIBaseURL     string
	StateDir       string
	DigestInterval time.Duration
	DigestTime     string // optional HH:MM; overrides the interval when set

	// Server side.
	ListenAddr  string
	DatabaseURL string
	SeedDemo    bool
}

// Load reads configuration from a .env file (when present) and the
// environment, filling in sane defaults.
func Load() (Config, error) {
	// Missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	cfg := Config{
		TelegramToken:  strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		APIBaseURL:     strings.TrimSpace(os.Getenv("API_BASE_URL")),
		StateDir:       strings.TrimSpace(os.Getenv("STATE_DIR")),
		DigestInterval: parseInterval(strings.TrimSpace(os.Getenv("DIGEST_INTERVAL_HOURS"))),
		DigestTime:     strings.TrimSpace(os.Getenv("DIGEST_TIME")),
		ListenAddr:     strings.TrimSpace(os.Getenv("LISTEN_ADDR")),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SeedDemo:       parseBool(strings.TrimSpace(os.Getenv("SEED_DEMO_DATA")), true),
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://localhost:3001"
	}
	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, err
		}
		cfg.StateDir = filepath.Join(home, ".taskdeck")
	}
	if cfg.DigestInterval == 0 {
		cfg.DigestInterval = 5 * time.Hour
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":3001"
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "taskdeck.db"
	}

	return cfg, nil
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}

func parseBool(raw string, fallback bool) bool {
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
