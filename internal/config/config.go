package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Access policy constants (duplicated from the storage package to
// avoid an import cycle).
const (
	PolicyGrant = "grant"
	PolicyDeny  = "deny"
)

type Config struct {
	Storage StorageConfig `koanf:"storage"`
	UI      UIConfig      `koanf:"ui"`
}

type StorageConfig struct {
	Path        string `koanf:"path"`
	DefaultList string `koanf:"default_list"`
	// AccessPolicy decides how the first access request resolves:
	// "grant" or "deny".
	AccessPolicy string `koanf:"access_policy"`
}

type UIConfig struct {
	ColoredOutput bool `koanf:"colored_output"`
}

// Load layers defaults, then the YAML file at configPath (if present),
// then REMIND_-prefixed environment variables. A double underscore in
// an env name separates key segments: REMIND_STORAGE__PATH sets
// storage.path.
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

	if err := k.Load(env.Provider("REMIND_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "REMIND_"))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Storage.Path = expandPath(cfg.Storage.Path)

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Storage.Path == "" {
		return fmt.Errorf("storage path is required")
	}

	switch c.Storage.AccessPolicy {
	case PolicyGrant, PolicyDeny:
	default:
		return fmt.Errorf("unknown access policy: %s (supported: %s, %s)",
			c.Storage.AccessPolicy, PolicyGrant, PolicyDeny)
	}

	if c.Storage.DefaultList == "" {
		return fmt.Errorf("default list name is required")
	}

	return nil
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
