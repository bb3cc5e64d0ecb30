// Package config provides configuration loading and access for the service.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all service configuration parameters.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Limits  LimitsConfig  `yaml:"limits"`
	Catalog CatalogConfig `yaml:"catalog"`
	History HistoryConfig `yaml:"history"`
	Logging LoggingConfig `yaml:"logging"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	CORSOrigins     []string `yaml:"cors_origins"`     // "*" allows any origin
	ReadTimeout     float64  `yaml:"read_timeout"`     // Seconds
	WriteTimeout    float64  `yaml:"write_timeout"`    // Seconds
	ShutdownTimeout float64  `yaml:"shutdown_timeout"` // Seconds
}

// LimitsConfig bounds what a single API call may ask for.
type LimitsConfig struct {
	MaxSteps        int     `yaml:"max_steps"`         // Reject runs with more ticks than this
	MaxInitialCells int     `yaml:"max_initial_cells"` // Reject runs seeding more cells than this
	RatePerSecond   float64 `yaml:"rate_per_second"`   // Sustained rate for compute routes
	RateBurst       int     `yaml:"rate_burst"`
}

// CatalogConfig points at an optional user cell line overlay.
type CatalogConfig struct {
	Path string `yaml:"path"` // Extra cell line YAML; empty = built-ins only
}

// HistoryConfig controls run persistence.
type HistoryConfig struct {
	Path string `yaml:"path"` // SQLite file; empty disables history
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ReadTimeout     time.Duration // Server.ReadTimeout as a duration
	WriteTimeout    time.Duration // Server.WriteTimeout as a duration
	ShutdownTimeout time.Duration // Server.ShutdownTimeout as a duration
	LogLevel        slog.Level    // Logging.Level parsed, info on unknown
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults
// if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ReadTimeout = secondsToDuration(c.Server.ReadTimeout)
	c.Derived.WriteTimeout = secondsToDuration(c.Server.WriteTimeout)
	c.Derived.ShutdownTimeout = secondsToDuration(c.Server.ShutdownTimeout)

	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		c.Derived.LogLevel = slog.LevelDebug
	case "warn":
		c.Derived.LogLevel = slog.LevelWarn
	case "error":
		c.Derived.LogLevel = slog.LevelError
	default:
		c.Derived.LogLevel = slog.LevelInfo
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
