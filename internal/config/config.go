// Package config loads host configuration from a YAML (or JSON) file,
// with defaults suitable for local development.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so config files can say "24h" or "90s".
type Duration time.Duration

// UnmarshalYAML parses a duration string like "30m" or a bare number of
// seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	return d.set(raw)
}

// UnmarshalJSON parses the JSON form of a duration.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return d.set(raw)
}

func (d *Duration) set(raw any) error {
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case int:
		*d = Duration(time.Duration(v) * time.Second)
	case float64:
		*d = Duration(time.Duration(v * float64(time.Second)))
	default:
		return fmt.Errorf("invalid duration value %v", raw)
	}
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config carries the settings shared by the serve, chat and mcp hosts.
type Config struct {
	ListenAddr string      `yaml:"listen_addr" json:"listen_addr"`
	LogLevel   string      `yaml:"log_level" json:"log_level"`
	Redis      RedisConfig `yaml:"redis" json:"redis"`
	SQLService SQLConfig   `yaml:"sql_service" json:"sql_service"`
}

// RedisConfig configures the Redis session store. An empty Addr keeps
// sessions in process memory.
type RedisConfig struct {
	Addr       string   `yaml:"addr" json:"addr"`
	Password   string   `yaml:"password" json:"password"`
	DB         int      `yaml:"db" json:"db"`
	SessionTTL Duration `yaml:"session_ttl" json:"session_ttl"`
}

// SQLConfig configures the remote SQL execution service.
type SQLConfig struct {
	URL     string   `yaml:"url" json:"url"`
	Timeout Duration `yaml:"timeout" json:"timeout"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		ListenAddr: ":8080",
		LogLevel:   "info",
		Redis: RedisConfig{
			SessionTTL: Duration(24 * time.Hour),
		},
		SQLService: SQLConfig{
			URL:     "http://localhost:9090",
			Timeout: Duration(60 * time.Second),
		},
	}
}

// Load reads a configuration file and merges it over the defaults. A
// missing file at the default path is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	if c.SQLService.URL == "" {
		return fmt.Errorf("sql_service.url must not be empty")
	}
	return nil
}
