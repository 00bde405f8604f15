package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("STATE_DIR", "/tmp/taskdeck-test")
	t.Setenv("DIGEST_INTERVAL_HOURS", "")
	t.Setenv("DIGEST_TIME", "")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SEED_DEMO_DATA", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3001", cfg.APIBaseURL)
	assert.Equal(t, 5*time.Hour, cfg.DigestInterval)
	assert.Equal(t, ":3001", cfg.ListenAddr)
	assert.Equal(t, "taskdeck.db", cfg.DatabaseURL)
	assert.True(t, cfg.SeedDemo)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("API_BASE_URL", "http://api:9000")
	t.Setenv("STATE_DIR", "/var/lib/taskdeck")
	t.Setenv("DIGEST_INTERVAL_HOURS", "2")
	t.Setenv("DIGEST_TIME", "09:30")
	t.Setenv("LISTEN_ADDR", ":8080")
	t.Setenv("DATABASE_URL", "/data/tasks.db")
	t.Setenv("SEED_DEMO_DATA", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.TelegramToken)
	assert.Equal(t, "http://api:9000", cfg.APIBaseURL)
	assert.Equal(t, "/var/lib/taskdeck", cfg.StateDir)
	assert.Equal(t, 2*time.Hour, cfg.DigestInterval)
	assert.Equal(t, "09:30", cfg.DigestTime)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "/data/tasks.db", cfg.DatabaseURL)
	assert.False(t, cfg.SeedDemo)
}

func TestParseInterval(t *testing.T) {
	assert.Equal(t, time.Duration(0), parseInterval(""))
	assert.Equal(t, time.Duration(0), parseInterval("nope"))
	assert.Equal(t, time.Duration(0), parseInterval("-1"))
	assert.Equal(t, 3*time.Hour, parseInterval("3"))
}

func TestParseBool(t *testing.T) {
	assert.True(t, parseBool("yes", false))
	assert.False(t, parseBool("off", true))
	assert.True(t, parseBool("garbage", true))
	assert.False(t, parseBool("", false))
}
