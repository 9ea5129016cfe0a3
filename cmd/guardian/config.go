package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the SDK's configuration surface in YAML form.
// Timeout is a duration string like "10s"; MaxRetries is a pointer so
// an explicit zero survives decoding.
type fileConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	RawTimeout string `yaml:"timeout"`
	MaxRetries *int   `yaml:"max_retries"`
	Debug      bool   `yaml:"debug"`

	Timeout time.Duration `yaml:"-"`
}

// loadFileConfig reads the YAML config at path. An empty path yields an
// empty config; a missing explicit path is an error.
func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.RawTimeout != "" {
		cfg.Timeout, err = time.ParseDuration(cfg.RawTimeout)
		if err != nil {
			return cfg, fmt.Errorf("parse config %s: invalid timeout %q: %w", path, cfg.RawTimeout, err)
		}
	}
	return cfg, nil
}
