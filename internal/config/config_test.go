package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "Australia/Melbourne", cfg.BusinessTimezone)
	assert.Equal(t, 72*time.Hour, cfg.FollowUpInterval)
	assert.Equal(t, 5*time.Minute, cfg.LeaderboardTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FOLLOW_UP_INTERVAL", "48h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://ops.example.com, https://admin.example.com")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 48*time.Hour, cfg.FollowUpInterval)
	assert.Equal(t, []string{"https://ops.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoadIgnoresInvalidDuration(t *testing.T) {
	t.Setenv("FOLLOW_UP_INTERVAL", "three days")

	cfg := Load()

	assert.Equal(t, 72*time.Hour, cfg.FollowUpInterval)
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("SOME_INT", "17")
	assert.Equal(t, 17, getEnvAsInt("SOME_INT", 3))
	assert.Equal(t, 3, getEnvAsInt("SOME_MISSING_INT", 3))
}
