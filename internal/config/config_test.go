package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadParsesEnvironment(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("DEMO_MODE", "true")
	t.Setenv("AUTO_REFRESH_SECONDS", "30")
	t.Setenv("ADMIN_IDS", "7,42")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.BotToken)
	assert.True(t, cfg.DemoMode)
	assert.Equal(t, 30, cfg.AutoRefreshSeconds)
	assert.Equal(t, []int64{7, 42}, cfg.AdminIDs)
	assert.Equal(t, "https://api.homebird.app", cfg.BackendBaseURL)
}

func TestIsAdmin(t *testing.T) {
	cfg := &Config{AdminIDs: []int64{7, 42}}
	assert.True(t, cfg.IsAdmin(7))
	assert.True(t, cfg.IsAdmin(42))
	assert.False(t, cfg.IsAdmin(8))

	empty := &Config{}
	assert.False(t, empty.IsAdmin(7))
}
