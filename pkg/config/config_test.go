package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CHAT_RULES_CACHE_TTL", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("CHAT_MAX_MESSAGE_LENGTH", "")
	t.Setenv("CHAT_RESTRICTION_FAIL_CLOSED", "")
	t.Setenv("LOG_FORMAT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Logger.Format)

	assert.Equal(t, time.Duration(0), cfg.Chat.RulesCacheTTL)
	assert.False(t, cfg.Chat.RestrictionFailClosed)
	assert.Equal(t, 2000, cfg.Chat.MaxMessageLength)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_ChatOverrides(t *testing.T) {
	t.Setenv("CHAT_RULES_CACHE_TTL", "30")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CHAT_MAX_MESSAGE_LENGTH", "-5")
	t.Setenv("CHAT_RESTRICTION_FAIL_CLOSED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Chat.RulesCacheTTL)
	assert.True(t, cfg.Chat.RestrictionFailClosed)
	assert.Equal(t, 2000, cfg.Chat.MaxMessageLength)
	assert.True(t, cfg.Redis.Enabled())
}
