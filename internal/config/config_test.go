package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Len(t, cfg.Reminders.Intervals, 14)
	assert.Equal(t, 60, cfg.Reminders.Intervals[0])
	assert.Equal(t, 5, cfg.Pack.DailyCap)
	assert.Equal(t, 3600, cfg.Pack.CooldownSeconds)
	assert.Equal(t, 1800, cfg.Pack.TickSeconds)
	assert.Equal(t, 25, cfg.View.PageSize)
	assert.Equal(t, "deepseek-chat", cfg.DeepSeek.Model)
	assert.NotEmpty(t, cfg.Database.Path)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pack:
  daily_cap: 3
view:
  page_size: 10
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Pack.DailyCap)
	assert.Equal(t, 10, cfg.View.PageSize)
	assert.Equal(t, 3600, cfg.Pack.CooldownSeconds, "untouched keys keep defaults")
}

func TestLoadEnvTokens(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok123")
	t.Setenv("DEEPSEEK_API_KEY", "key456")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "tok123", cfg.Telegram.BotToken)
	assert.Equal(t, "key456", cfg.DeepSeek.APIKey)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	assert.NoError(t, base().Validate())

	cfg := base()
	cfg.Reminders.Intervals = nil
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Reminders.Intervals = []int{60, 30}
	assert.Error(t, cfg.Validate(), "decreasing intervals")

	cfg = base()
	cfg.Reminders.Intervals = []int{0}
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Pack.DailyCap = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Pack.TickSeconds = 7200
	assert.Error(t, cfg.Validate(), "tick period above cooldown")

	cfg = base()
	cfg.Pack.CooldownSeconds = 0
	assert.NoError(t, cfg.Validate(), "no cooldown means any tick period works")

	cfg = base()
	cfg.View.PageSize = 0
	assert.Error(t, cfg.Validate())
}

func TestDurationHelpers(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	intervals := cfg.Intervals()
	require.Len(t, intervals, 14)
	assert.Equal(t, time.Minute, intervals[0])
	assert.Equal(t, 24*time.Hour, intervals[1])
	assert.Equal(t, time.Hour, cfg.Cooldown())
	assert.Equal(t, 30*time.Minute, cfg.TickPeriod())
}
