package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     int    `yaml:"port"`
	Host     string `yaml:"host"`
	LogLevel string `yaml:"logLevel"`
	// UIPath overrides the embedded dashboard page when set.
	UIPath string `yaml:"uiPath"`
}

// Load builds the config from defaults, then the YAML file named by
// DASHBOARD_CONFIG (if any), then individual environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:     3456,
		LogLevel: "info",
	}

	if path := os.Getenv("DASHBOARD_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = envInt("POF_DASHBOARD_PORT", cfg.Port)
	cfg.Host = envStr("DASHBOARD_HOST", cfg.Host)
	cfg.LogLevel = envStr("LOG_LEVEL", cfg.LogLevel)
	cfg.UIPath = envStr("DASHBOARD_UI_PATH", cfg.UIPath)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("POF_DASHBOARD_PORT must be between 1 and 65535, got %d", c.Port)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	if c.UIPath != "" {
		if _, err := os.Stat(c.UIPath); err != nil {
			return fmt.Errorf("DASHBOARD_UI_PATH: %w", err)
		}
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
