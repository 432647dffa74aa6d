// Package config loads the CLI configuration: defaults, then an optional
// YAML file, then STAGEHAND_* environment overrides, in that order.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/wyattjouan/stagehand/pkg/domain"
)

// Config is the full CLI configuration.
type Config struct {
	// Options are the initial player options.
	Options domain.Options `yaml:"options"`

	// ProjectHost is the base URL of the remote project source.
	ProjectHost string `yaml:"project_host" env:"PROJECT_HOST"`

	// CloudBackend selects the cloud-log source: "http" (the project
	// host's log endpoint), "redis", or "" to disable replay.
	CloudBackend string `yaml:"cloud_backend" env:"CLOUD_BACKEND"`

	// RedisAddr is the address of the Redis cloud log, when selected.
	RedisAddr string `yaml:"redis_addr" env:"REDIS_ADDR"`

	// CloudFeedURL is the optional websocket feed for live cloud updates.
	CloudFeedURL string `yaml:"cloud_feed_url" env:"CLOUD_FEED_URL"`

	// CloudLimit is how many log entries a replay fetches.
	CloudLimit int `yaml:"cloud_limit" env:"CLOUD_LIMIT"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Options:      domain.DefaultOptions(),
		CloudBackend: "http",
		LogLevel:     "info",
	}
}

// Load builds the configuration. path may be empty; a missing file at an
// explicitly given path is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "STAGEHAND_"}); err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}
