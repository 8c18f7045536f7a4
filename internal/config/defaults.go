package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"storage": map[string]interface{}{
			"path":          "~/.remindkit/reminders.db",
			"default_list":  "Reminders",
			"access_policy": PolicyGrant,
		},
		"ui": map[string]interface{}{
			"colored_output": true,
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.remindkit/config.yaml"
}
