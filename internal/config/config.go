package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Telegram  TelegramConfig  `koanf:"telegram"`
	Reminders RemindersConfig `koanf:"reminders"`
	Pack      PackConfig      `koanf:"pack"`
	View      ViewConfig      `koanf:"view"`
	DeepSeek  DeepSeekConfig  `koanf:"deepseek"`
	Database  DatabaseConfig  `koanf:"database"`
}

type TelegramConfig struct {
	BotToken    string `koanf:"bot_token"`
	PollTimeout int    `koanf:"poll_timeout"` // long-poll timeout, seconds
}

type RemindersConfig struct {
	Intervals []int `koanf:"intervals"` // seconds, non-decreasing
}

type PackConfig struct {
	DailyCap        int               `koanf:"daily_cap"`
	CooldownSeconds int               `koanf:"cooldown_seconds"`
	TickSeconds     int               `koanf:"tick_seconds"`
	Files           map[string]string `koanf:"files"` // pack id -> word list path
}

type ViewConfig struct {
	PageSize int `koanf:"page_size"`
}

type DeepSeekConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
	Timeout int    `koanf:"timeout"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = expandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider("VOCAB_", ".", func(s string) string {
		return s
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		k.Set("telegram.bot_token", token)
	}
	if apiKey := os.Getenv("DEEPSEEK_API_KEY"); apiKey != "" {
		k.Set("deepseek.api_key", apiKey)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Database.Path = expandPath(cfg.Database.Path)
	for id, path := range cfg.Pack.Files {
		cfg.Pack.Files[id] = expandPath(path)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Reminders.Intervals) == 0 {
		return fmt.Errorf("at least one reminder interval is required")
	}
	for i, v := range c.Reminders.Intervals {
		if v <= 0 {
			return fmt.Errorf("reminder intervals must be positive, got %d", v)
		}
		if i > 0 && v < c.Reminders.Intervals[i-1] {
			return fmt.Errorf("reminder intervals must be non-decreasing")
		}
	}

	if c.Pack.DailyCap <= 0 {
		return fmt.Errorf("pack daily_cap must be positive")
	}
	if c.Pack.CooldownSeconds < 0 {
		return fmt.Errorf("pack cooldown_seconds must not be negative")
	}
	if c.Pack.TickSeconds <= 0 {
		return fmt.Errorf("pack tick_seconds must be positive")
	}
	if c.Pack.CooldownSeconds > 0 && c.Pack.TickSeconds >= c.Pack.CooldownSeconds {
		return fmt.Errorf("pack tick_seconds must be below cooldown_seconds (the cooldown is the throttle)")
	}

	if c.View.PageSize <= 0 {
		return fmt.Errorf("view page_size must be positive")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	return nil
}

// Intervals returns the reminder sequence as durations.
func (c *Config) Intervals() []time.Duration {
	out := make([]time.Duration, len(c.Reminders.Intervals))
	for i, s := range c.Reminders.Intervals {
		out[i] = time.Duration(s) * time.Second
	}
	return out
}

// Cooldown returns the minimum gap between pack admissions.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.Pack.CooldownSeconds) * time.Second
}

// TickPeriod returns the admission tick polling period.
func (c *Config) TickPeriod() time.Duration {
	return time.Duration(c.Pack.TickSeconds) * time.Second
}

func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}
