// Package config provides configuration file and environment variable support for reltime.
//
// Configuration priority (highest to lowest):
//  1. Command-line flags
//  2. Environment variables (RELTIME_*)
//  3. Config file (~/.reltime/config.toml)
//  4. Built-in defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/spetersoncode/reltime/internal/duration"
	"github.com/spetersoncode/reltime/internal/models"
)

// EnvPrefix is the name prefix of every environment override.
const EnvPrefix = "RELTIME_"

// Config represents the reltime configuration.
type Config struct {
	// DB is the path to the board database.
	// Default: ~/.reltime/reltime.db
	DB string `toml:"db" env:"DB"`

	// LogLevel is the minimum level logged (trace, debug, info, warn, error).
	// Default: warn
	LogLevel string `toml:"log_level" env:"LOG_LEVEL"`

	// LogJSON switches log output from the console writer to JSON lines.
	LogJSON bool `toml:"log_json" env:"LOG_JSON"`

	// DefaultFormat is used when --format is not specified.
	DefaultFormat models.Format `toml:"default_format" env:"DEFAULT_FORMAT"`

	// DefaultPrecision is used when --precision is not specified.
	DefaultPrecision duration.Unit `toml:"default_precision" env:"DEFAULT_PRECISION"`

	// DefaultThreshold is how long auto formats keep relative text.
	// Default: P30D
	DefaultThreshold duration.Duration `toml:"default_threshold" env:"DEFAULT_THRESHOLD"`

	// DefaultStyle is used when --style is not specified.
	DefaultStyle models.Style `toml:"default_style" env:"DEFAULT_STYLE"`

	// TimeZone is an IANA zone name for absolute dates.
	// Default: UTC
	TimeZone string `toml:"time_zone" env:"TIME_ZONE"`

	Serve ServeConfig `toml:"serve" envPrefix:"SERVE_"`

	Backup BackupConfig `toml:"backup" envPrefix:"BACKUP_"`
}

// ServeConfig configures `reltime serve`.
type ServeConfig struct {
	Host string `toml:"host" env:"HOST"`
	Port int    `toml:"port" env:"PORT"`
}

// BackupConfig configures automatic board database backups.
type BackupConfig struct {
	Enabled bool `toml:"enabled" env:"ENABLED"`
	// Interval is the minimum age of the newest backup before another is taken.
	Interval duration.Duration `toml:"interval" env:"INTERVAL"`
	// MaxCount is how many backups are kept.
	MaxCount int `toml:"max_count" env:"MAX_COUNT"`
	// Path is the backup directory, empty for the database's directory.
	Path string `toml:"path" env:"PATH"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		DB:               "", // Empty means use db.DefaultDBPath
		LogLevel:         "warn",
		DefaultFormat:    models.FormatAuto,
		DefaultPrecision: duration.Second,
		DefaultThreshold: duration.Duration{Days: 30},
		DefaultStyle:     models.StyleLong,
		TimeZone:         "UTC",
		Serve: ServeConfig{
			Host: "127.0.0.1",
			Port: 18808,
		},
		Backup: BackupConfig{
			Enabled:  true,
			Interval: duration.Duration{Days: 1},
			MaxCount: 5,
		},
	}
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".reltime", "config.toml")
}

// Load loads configuration from the default config file and the environment.
func Load() (*Config, error) {
	return LoadFromPath(DefaultConfigPath())
}

// LoadFromPath loads configuration from a specific file path, then applies
// environment overrides. A missing file yields the defaults.
func LoadFromPath(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if _, err := toml.DecodeFile(configPath, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", configPath, err)
			}
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every setting has a usable value.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if !c.DefaultFormat.IsValid() {
		return fmt.Errorf("invalid default_format %q", c.DefaultFormat)
	}
	if !c.DefaultPrecision.IsValid() {
		return fmt.Errorf("invalid default_precision %q", c.DefaultPrecision)
	}
	if !c.DefaultStyle.IsValid() {
		return fmt.Errorf("invalid default_style %q", c.DefaultStyle)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("invalid serve.port %d", c.Serve.Port)
	}
	if c.Backup.Enabled && c.Backup.MaxCount < 1 {
		return fmt.Errorf("invalid backup.max_count %d", c.Backup.MaxCount)
	}
	return nil
}

// Location resolves TimeZone.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time_zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// GetDB returns the database path, empty to signal use of db.DefaultDBPath.
func (c *Config) GetDB() string {
	return c.DB
}

// SampleConfig returns a sample configuration file content.
func SampleConfig() string {
	return `# reltime configuration file
# Location: ~/.reltime/config.toml
#
# Configuration priority (highest to lowest):
#   1. Command-line flags
#   2. Environment variables (RELTIME_*)
#   3. This config file
#   4. Built-in defaults

# Path to the board database
# Default: ~/.reltime/reltime.db
# Environment: RELTIME_DB
# db = "/path/to/reltime.db"

# Log level: trace, debug, info, warn, error
# Environment: RELTIME_LOG_LEVEL
# log_level = "warn"

# Log JSON lines instead of console output
# Environment: RELTIME_LOG_JSON
# log_json = false

# Default render format: auto, relative, duration, elapsed, micro, datetime
# Environment: RELTIME_DEFAULT_FORMAT
# default_format = "auto"

# Default precision: year, month, week, day, hour, minute, second, millisecond
# Environment: RELTIME_DEFAULT_PRECISION
# default_precision = "second"

# How far from now auto formats keep relative text (ISO-8601 duration)
# Environment: RELTIME_DEFAULT_THRESHOLD
# default_threshold = "P30D"

# Unit style: long, short, narrow
# Environment: RELTIME_DEFAULT_STYLE
# default_style = "long"

# Time zone for absolute dates
# Environment: RELTIME_TIME_ZONE
# time_zone = "UTC"

[serve]
# Environment: RELTIME_SERVE_HOST, RELTIME_SERVE_PORT
# host = "127.0.0.1"
# port = 18808

[backup]
# Copy the database before board changes when the newest copy is older
# than interval (ISO-8601 duration). Copies are named reltime.db.bak.N.
# Environment: RELTIME_BACKUP_ENABLED, RELTIME_BACKUP_INTERVAL,
#              RELTIME_BACKUP_MAX_COUNT, RELTIME_BACKUP_PATH
# enabled = true
# interval = "P1D"
# max_count = 5
# path = ""
`
}

// WriteConfigFile writes the sample config file to the specified path.
// Creates parent directories if needed.
func WriteConfigFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(SampleConfig()), 0644)
}
