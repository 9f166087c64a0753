// Package logger provides configurable logging for shade.
package logger

import (
	"log/slog"
	"strings"
)

// Config holds all settings for the logger.
type Config struct {
	// LogLevel is the minimum level to log ("debug", "info", "warn", "error").
	LogLevel string `toml:"log_level"`

	// LogFilePath is the path to the output log file. Empty means stderr is
	// chosen by the caller.
	LogFilePath string `toml:"log_file"`

	// EnabledPackages only logs messages originating from these packages
	// (if non-empty). Package name is the immediate directory name
	// (e.g. "highlight", "buffer", "viewer").
	EnabledPackages []string `toml:"enabled_packages"`
	// DisabledPackages drops messages from these packages. Overrides
	// EnabledPackages.
	DisabledPackages []string `toml:"disabled_packages"`

	level               slog.Level
	enabledPackagesSet  map[string]struct{}
	disabledPackagesSet map[string]struct{}
}

// NewConfig creates a Config with default values.
func NewConfig() Config {
	return Config{
		LogLevel: "info",
	}
}

// process parses the string level and filter lists into lookup form.
func (c *Config) process() {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		c.level = slog.LevelDebug
	case "warn", "warning":
		c.level = slog.LevelWarn
	case "error":
		c.level = slog.LevelError
	default:
		c.level = slog.LevelInfo
	}

	c.enabledPackagesSet = toSet(c.EnabledPackages)
	c.disabledPackagesSet = toSet(c.DisabledPackages)
}

func toSet(items []string) map[string]struct{} {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[strings.ToLower(strings.TrimSpace(it))] = struct{}{}
	}
	return set
}
