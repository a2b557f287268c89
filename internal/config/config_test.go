package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
	assert.Equal(t, 5, cfg.History.MaxItems)
	assert.Equal(t, 10000, cfg.Engine.MaxTextLength)
	assert.Equal(t, 25, cfg.Engine.MaxRuleMatches)
	assert.Equal(t, "unknown", cfg.Engine.UnknownAgePolicy)
	assert.Empty(t, cfg.Database.URL)
	assert.False(t, cfg.IsProduction())
	assert.Empty(t, cfg.Server.AllowedOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("HISTORY_MAX_ITEMS", "10")
	t.Setenv("HISTORY_TTL_HOURS", "2")
	t.Setenv("ENGINE_UNKNOWN_DOMAIN_AGE", "simulated")
	t.Setenv("RULES_PATH", "/etc/scamcheck/rules.json")
	t.Setenv("DATABASE_URL", "postgres://localhost/scamcheck")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://scamcheck.app, ,http://localhost:3000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "cache:6380", cfg.RedisAddr())
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 10, cfg.History.MaxItems)
	assert.Equal(t, 2*time.Hour, cfg.HistoryTTL())
	assert.Equal(t, "simulated", cfg.Engine.UnknownAgePolicy)
	assert.Equal(t, "/etc/scamcheck/rules.json", cfg.Engine.RulesPath)
	assert.Equal(t, "postgres://localhost/scamcheck", cfg.Database.URL)
	assert.Equal(t, []string{"https://scamcheck.app", "http://localhost:3000"}, cfg.Server.AllowedOrigins)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("ENGINE_MAX_RULE_MATCHES", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Engine.MaxRuleMatches)
}

func TestLoadRejectsNonPositive(t *testing.T) {
	t.Setenv("HISTORY_MAX_ITEMS", "0")

	_, err := Load()
	assert.Error(t, err)
}
