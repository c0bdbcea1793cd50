package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the configuration loaded from .mrun.toml.
type FileConfig struct {
	// Shell overrides the interpreter used for task commands.
	Shell string `toml:"shell"`

	// BinDir overrides the directory prepended to PATH.
	BinDir string `toml:"bin_dir"`

	// Theme is the pane colour theme.
	Theme string `toml:"theme"`

	// Shutdown tunes the kill loop.
	Shutdown ShutdownConfig `toml:"shutdown"`

	// Tasks maps task names to shell commands. Entries here take precedence
	// over scripts of the same name in the manifest.
	Tasks map[string]string `toml:"tasks"`
}

// ShutdownConfig represents the [shutdown] section in .mrun.toml.
type ShutdownConfig struct {
	RetryInterval Duration `toml:"retry_interval"`
	MaxAttempts   int      `toml:"max_attempts"`
	KillAfter     int      `toml:"kill_after"`
}

// Duration is a time.Duration decoded from TOML strings such as "250ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

// LoadFileConfig reads .mrun.toml from the working directory.
// Returns nil if the file doesn't exist (not an error).
func LoadFileConfig(workingDir string) (*FileConfig, error) {
	return LoadFileConfigFrom(filepath.Join(workingDir, DefaultConfigFile))
}

// LoadFileConfigFrom reads configuration from a specific file path.
// Returns nil if the file doesn't exist (not an error).
func LoadFileConfigFrom(configPath string) (*FileConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var cfg FileConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Apply copies every value set in the file onto cfg, skipping the fields
// named in explicit (flags the user passed on the command line).
func (fc *FileConfig) Apply(cfg *Config, explicit map[string]bool) {
	if fc == nil {
		return
	}
	if fc.Shell != "" && !explicit["shell"] {
		cfg.Shell = fc.Shell
	}
	if fc.BinDir != "" && !explicit["bin-dir"] {
		cfg.BinDir = fc.BinDir
	}
	if fc.Theme != "" && !explicit["theme"] {
		cfg.Theme = fc.Theme
	}
	if fc.Shutdown.RetryInterval.Duration > 0 && !explicit["retry-interval"] {
		cfg.RetryInterval = fc.Shutdown.RetryInterval.Duration
	}
	if fc.Shutdown.MaxAttempts != 0 && !explicit["max-attempts"] {
		cfg.MaxAttempts = fc.Shutdown.MaxAttempts
	}
	if fc.Shutdown.KillAfter != 0 && !explicit["kill-after"] {
		cfg.KillAfter = fc.Shutdown.KillAfter
	}
}
