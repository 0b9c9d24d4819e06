// Package config loads hix settings from the global YAML config file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/scholarboard/hix/internal/researcher"
)

// Config represents configuration stored in ~/.config/hix/config.yml.
type Config struct {
	DBPath            string                 `yaml:"db_path,omitempty" json:"db_path"`
	OpenAlexEmail     string                 `yaml:"openalex_email,omitempty" json:"openalex_email,omitempty"`
	OpenAlexURL       string                 `yaml:"openalex_url,omitempty" json:"openalex_url,omitempty"`
	RequestsPerSecond float64                `yaml:"requests_per_second,omitempty" json:"requests_per_second"`
	Workers           int                    `yaml:"workers,omitempty" json:"workers"`
	HistoryStart      int                    `yaml:"history_start,omitempty" json:"history_start"`
	HistoryEnd        int                    `yaml:"history_end,omitempty" json:"history_end"`
	LogLevel          string                 `yaml:"log_level,omitempty" json:"log_level"`
	LogFormat         string                 `yaml:"log_format,omitempty" json:"log_format"`
	Institutions      map[string]Institution `yaml:"institutions,omitempty" json:"institutions,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "hix"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
	// DefaultDBFile is the database file name under XDG_DATA_HOME/hix.
	DefaultDBFile = "hix.db"
)

// Defaults applied to unset fields.
const (
	DefaultRequestsPerSecond = 9.0
	DefaultWorkers           = 4
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
)

// Environment variables that override the file.
const (
	EnvDBPath        = "HIX_DB"
	EnvOpenAlexEmail = "OPENALEX_EMAIL"
	EnvOpenAlexURL   = "HIX_OPENALEX_URL"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// configCache caches the loaded config.
var configCache *Config

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/hix/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// DefaultDBPath returns XDG_DATA_HOME/hix/hix.db, falling back to
// ~/.local/share when XDG_DATA_HOME is unset.
func DefaultDBPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DefaultDBFile
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, GlobalConfigDir, DefaultDBFile)
}

// Load returns the effective configuration: the config file (if present)
// with environment overrides and defaults applied, then validated.
// The result is cached for the life of the process.
func Load() (*Config, error) {
	if configCache != nil {
		return configCache, nil
	}

	cfg, err := LoadFile(GlobalConfigPath())
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configCache = cfg
	return cfg, nil
}

// LoadFile parses a config file without applying env or defaults.
// A missing file yields an empty config, not an error.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// ResetCache clears the cached config.
// Useful for testing.
func ResetCache() {
	configCache = nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDBPath); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv(EnvOpenAlexEmail); v != "" {
		c.OpenAlexEmail = v
	}
	if v := os.Getenv(EnvOpenAlexURL); v != "" {
		c.OpenAlexURL = v
	}
}

func (c *Config) applyDefaults() {
	if c.DBPath == "" {
		c.DBPath = DefaultDBPath()
	}
	c.DBPath = ExpandPath(c.DBPath)
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.HistoryStart == 0 {
		c.HistoryStart = researcher.MinYear
	}
	if c.HistoryEnd == 0 {
		c.HistoryEnd = researcher.MaxYear
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
}

// Validate checks value ranges. It expects defaults to be applied.
func (c *Config) Validate() error {
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("%w: requests_per_second must be positive, got %v", ErrInvalidConfig, c.RequestsPerSecond)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.HistoryStart < researcher.MinYear || c.HistoryEnd > researcher.MaxYear || c.HistoryStart > c.HistoryEnd {
		return fmt.Errorf("%w: history range %d-%d must lie within %d-%d",
			ErrInvalidConfig, c.HistoryStart, c.HistoryEnd, researcher.MinYear, researcher.MaxYear)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	for key, inst := range c.Institutions {
		if inst.ROR == "" {
			return fmt.Errorf("%w: institution %q has no ror", ErrInvalidConfig, key)
		}
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
