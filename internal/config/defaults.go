package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"telegram": map[string]interface{}{
			"bot_token":    "",
			"poll_timeout": 30,
		},
		"reminders": map[string]interface{}{
			// Widening review intervals, in seconds: 1 minute, then 1, 2, 4,
			// 8, 12, 16, 20, 26, 34, 48, ~60, 80 and 100 days.
			"intervals": []int{
				60, 86400, 172800, 345600, 691200, 1036800, 1382400, 1728000,
				2246400, 2937600, 4147200, 5186400, 6912000, 8640000,
			},
		},
		"pack": map[string]interface{}{
			"daily_cap":        5,
			"cooldown_seconds": 3600,
			// Tick period defaults to half the cooldown; the tick is only a
			// polling granularity, the cooldown is the throttle.
			"tick_seconds": 1800,
			"files": map[string]interface{}{
				"b2plus": "vocabulary_pack_b2plus.txt",
			},
		},
		"view": map[string]interface{}{
			"page_size": 25,
		},
		"deepseek": map[string]interface{}{
			"api_key":  "",
			"base_url": "https://api.deepseek.com",
			"model":    "deepseek-chat",
			"timeout":  120,
		},
		"database": map[string]interface{}{
			"path": "~/.vocab-trainer/vocab.db",
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.vocab-trainer/config.yaml"
}
