package config

import (
	"os"
	"strings"

	"github.com/scorphus/hellotimer/internal/logger"
)

// Version is set at build time via -ldflags
// Default "dev" is used for development builds
var Version = "dev"

// Config holds all application configuration loaded from environment variables.
// All fields have sensible defaults if environment variables are not set.
type Config struct {
	// Name is who gets greeted (default: "World")
	Name string

	// LogLevel controls logging verbosity: "debug", "info", "warn", "error" (default: "info")
	LogLevel string

	// LogDir is the directory for the rotating log file (default: empty, stdout only)
	LogDir string

	// MetricsFile is where Prometheus metrics are written on exit (default: empty, disabled)
	MetricsFile string
}

// Global singleton
var cfg *Config

// Load reads configuration from environment variables with sensible defaults.
// Should be called once at application startup.
func Load() *Config {
	cfg = &Config{
		Name:        getEnvOrDefault("HELLOTIMER_NAME", "World"),
		LogLevel:    normalizeLogLevel(getEnvOrDefault("HELLOTIMER_LOG_LEVEL", "info")),
		LogDir:      getEnvOrDefault("HELLOTIMER_LOG_DIR", ""),
		MetricsFile: getEnvOrDefault("HELLOTIMER_METRICS_FILE", ""),
	}
	return cfg
}

// Get returns the current configuration. Panics if Load() hasn't been called.
func Get() *Config {
	if cfg == nil {
		panic("config.Load() must be called before config.Get()")
	}
	return cfg
}

// SetForTesting allows tests to set the global config without calling Load().
// This should ONLY be used in test code.
func SetForTesting(c *Config) {
	cfg = c
}

// NewTestConfig returns a minimal Config suitable for unit tests.
func NewTestConfig() *Config {
	return &Config{
		Name:     "Neo",
		LogLevel: "debug",
	}
}

// FlagOverrides holds command-line flag values that can override environment variables
type FlagOverrides struct {
	Name        *string
	LogLevel    *string
	LogDir      *string
	MetricsFile *string
}

// ApplyFlags applies command-line flag overrides to the configuration.
// Should be called after Load() and after flag parsing.
// Only non-nil, non-empty values override.
func ApplyFlags(flags FlagOverrides) {
	if cfg == nil {
		return
	}

	// An explicitly empty name is a valid greeting target, so only nil is skipped
	if flags.Name != nil {
		cfg.Name = *flags.Name
	}
	if flags.LogLevel != nil && *flags.LogLevel != "" {
		cfg.LogLevel = normalizeLogLevel(*flags.LogLevel)
	}
	if flags.LogDir != nil && *flags.LogDir != "" {
		cfg.LogDir = *flags.LogDir
	}
	if flags.MetricsFile != nil && *flags.MetricsFile != "" {
		cfg.MetricsFile = *flags.MetricsFile
	}
}

// normalizeLogLevel lowercases level and falls back to "info" when logger.ParseLevel rejects it.
func normalizeLogLevel(level string) string {
	level = strings.ToLower(level)
	if _, ok := logger.ParseLevel(level); !ok {
		return "info"
	}
	return level
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
