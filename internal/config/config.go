// Package config holds the bridge's runtime configuration, loadable from
// a YAML file and overridable by flags.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the uibridge.yaml schema. Durations are milliseconds in the
// file for readability.
type Config struct {
	ListenPort      int    `yaml:"listen_port"`
	CallTimeoutMS   int    `yaml:"call_timeout_ms"`
	AcceptBackoffMS int    `yaml:"accept_backoff_ms"`
	MaxFrameBytes   uint32 `yaml:"max_frame_bytes"`
	LogLevel        string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenPort:      4242,
		CallTimeoutMS:   10000,
		AcceptBackoffMS: 500,
		MaxFrameBytes:   64 << 20,
		LogLevel:        "info",
	}
}

// Load reads a YAML config file over the defaults. Fields absent from the
// file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the bridge cannot run with.
func (c Config) Validate() error {
	if c.ListenPort < 1 || c.ListenPort > 65535 {
		return fmt.Errorf("listen_port %d out of range", c.ListenPort)
	}
	if c.CallTimeoutMS <= 0 {
		return fmt.Errorf("call_timeout_ms must be positive")
	}
	if c.MaxFrameBytes == 0 {
		return fmt.Errorf("max_frame_bytes must be positive")
	}
	return nil
}

// CallTimeout returns the per-round-trip timeout as a duration.
func (c Config) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutMS) * time.Millisecond
}

// AcceptBackoff returns the accept retry delay as a duration.
func (c Config) AcceptBackoff() time.Duration {
	return time.Duration(c.AcceptBackoffMS) * time.Millisecond
}
