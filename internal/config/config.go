// Package config loads the workspace configuration file and environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Environments
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// FileName is the config file name inside the workspace directory
const FileName = "config.yaml"

// Environment variable names
const (
	EnvVarEnv      = "DEVTASK_ENV"
	EnvVarDBPath   = "DEVTASK_DB_PATH"
	EnvVarLogLevel = "DEVTASK_LOG_LEVEL"
	EnvVarUser     = "DEVTASK_USER"
)

// Config is the runtime configuration of the devtask CLI
type Config struct {
	Env              string        `yaml:"env"`
	DBPath           string        `yaml:"db_path"`
	LogLevel         string        `yaml:"log_level"`
	LogPath          string        `yaml:"log_path"`
	ReminderInterval time.Duration `yaml:"reminder_interval"`
	User             string        `yaml:"user"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Env:              EnvLocal,
		ReminderInterval: 24 * time.Hour,
	}
}

// Load reads path (if present) over the defaults, then applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads path over the defaults without looking at the environment
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return cfg, nil
}

// Set assigns one field by its YAML key
func (c *Config) Set(key, value string) error {
	switch key {
	case "env":
		c.Env = value
	case "db_path":
		c.DBPath = value
	case "log_level":
		c.LogLevel = value
	case "log_path":
		c.LogPath = value
	case "user":
		c.User = value
	case "reminder_interval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid reminder_interval %q: %w", value, err)
		}
		c.ReminderInterval = d
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return c.Validate()
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvVarEnv); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv(EnvVarDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvVarLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvVarUser); v != "" {
		cfg.User = v
	}
}

// Validate rejects unknown environments and negative intervals
func (c *Config) Validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("invalid env %q (must be local/dev/prod)", c.Env)
	}
	if c.ReminderInterval < 0 {
		return fmt.Errorf("reminder_interval cannot be negative")
	}
	return nil
}

// ResolveLogPath returns LogPath, defaulting to devtask.log next to the database
func (c *Config) ResolveLogPath(dbPath string) string {
	if c.LogPath != "" {
		return c.LogPath
	}
	return filepath.Join(filepath.Dir(dbPath), "devtask.log")
}

// Write stores cfg as YAML at path
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
