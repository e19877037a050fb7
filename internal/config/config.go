// Package config loads dayplan settings. A DAYPLAN_* variable from the process
// environment beats the same variable from an optional .env file, and both
// beat the YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "DAYPLAN"

// Config holds every tunable of the application.
type Config struct {
	DBPath       string        `mapstructure:"db_path"`
	LogLevel     string        `mapstructure:"log_level"`
	LogPretty    bool          `mapstructure:"log_pretty"`
	LogFile      string        `mapstructure:"log_file"`
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// Timezone decides which calendar day "today" is. Empty means local time.
	Timezone string `mapstructure:"timezone"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	dir := DataDir()
	return &Config{
		DBPath:       filepath.Join(dir, "dayplan.db"),
		LogLevel:     "info",
		LogFile:      filepath.Join(dir, "dayplan.log"),
		TickInterval: time.Second,
	}
}

// DataDir returns ~/.config/dayplan, falling back to the working directory.
func DataDir() string {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return ".dayplan"
	}
	return filepath.Join(cfg, "dayplan")
}

// DefaultPath returns the config file consulted when no explicit path is given.
func DefaultPath() string {
	return filepath.Join(DataDir(), "config.yaml")
}

// Load merges defaults, the config file, .env and the environment. An explicit
// path must exist; the default path is optional.
func Load(path string) (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	defaults := DefaultConfig()
	v := viper.New()
	v.SetDefault("db_path", defaults.DBPath)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_pretty", defaults.LogPretty)
	v.SetDefault("log_file", defaults.LogFile)
	v.SetDefault("tick_interval", defaults.TickInterval)
	v.SetDefault("timezone", defaults.Timezone)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("config: db_path is empty")
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("config: tick_interval must be positive, got %s", c.TickInterval)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// WriteDefault writes a commented starter config to path.
func WriteDefault(path string) error {
	content := `# dayplan configuration

# SQLite database holding every collection as a JSON blob
# db_path: ~/.config/dayplan/dayplan.db

# debug | info | warn | error
log_level: info
log_pretty: false
# log_file: ~/.config/dayplan/dayplan.log

# How often running timers push live totals to the UI
tick_interval: 1s

# IANA zone deciding which plans count as "today" (empty = system local)
timezone: ""
`
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
