// Package config provides configuration management for mrun.
package config

import (
	"errors"
	"time"
)

// Config holds the configuration for a single mrun invocation.
type Config struct {
	// WorkingDir is the project directory tasks run in (default: ".").
	WorkingDir string

	// ManifestPath is the package manifest whose scripts form the task registry
	// (default: "package.json", relative to WorkingDir).
	ManifestPath string

	// ConfigPath is the optional TOML file (default: ".mrun.toml", relative to WorkingDir).
	ConfigPath string

	// Shell interprets each task's command string. Empty selects the
	// platform shell (/bin/sh, or cmd.exe on Windows).
	Shell string

	// BinDir is prepended to PATH for every child (default: "node_modules/.bin",
	// relative to WorkingDir).
	BinDir string

	// RetryInterval is the delay between shutdown signal broadcasts (default: 100ms).
	RetryInterval time.Duration

	// MaxAttempts caps the number of broadcast rounds during shutdown.
	// Zero means retry until every process group has exited.
	MaxAttempts int

	// KillAfter switches the broadcast from SIGTERM to SIGKILL once this many
	// rounds have gone unanswered. Zero means never escalate.
	KillAfter int

	// Minimal forces the plain line-oriented output instead of the terminal panes.
	Minimal bool

	// Theme is the colour theme for the panes: "auto", "dark", or "light".
	Theme string

	// LogFile receives log output in addition to stderr. Empty disables it.
	LogFile string

	// LogLevel is one of debug, info, warn, error (default: "warn").
	LogLevel string
}

// Defaults applied by NewConfig.
const (
	DefaultManifest      = "package.json"
	DefaultConfigFile    = ".mrun.toml"
	DefaultBinDir        = "node_modules/.bin"
	DefaultRetryInterval = 100 * time.Millisecond
)

// NewConfig returns a new Config with default values.
func NewConfig() *Config {
	return &Config{
		WorkingDir:    ".",
		ManifestPath:  DefaultManifest,
		ConfigPath:    DefaultConfigFile,
		BinDir:        DefaultBinDir,
		RetryInterval: DefaultRetryInterval,
		Theme:         "auto",
		LogLevel:      "warn",
	}
}

// Validate checks that the configuration is valid.
// Returns an error if validation fails.
func (c *Config) Validate() error {
	if c.RetryInterval <= 0 {
		return errors.New("retry interval must be positive")
	}
	if c.MaxAttempts < 0 {
		return errors.New("max attempts cannot be negative")
	}
	if c.KillAfter < 0 {
		return errors.New("kill-after cannot be negative")
	}
	if c.MaxAttempts > 0 && c.KillAfter >= c.MaxAttempts {
		return errors.New("kill-after must be lower than max attempts")
	}
	switch c.Theme {
	case "auto", "dark", "light":
	default:
		return errors.New("theme must be one of auto, dark, light")
	}
	return nil
}
