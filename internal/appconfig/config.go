// Package appconfig manages application configuration and runtime file paths.
package appconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Version is the local application version. The remote bootstrap step
// compares the installed agent's "--version" output against this value and
// reinstalls on mismatch.
const Version = "0.4.0"

// InstallerURL serves the install script that the remote host fetches with
// curl and pipes into "bash -s --" when the installed agent is missing or
// out of date.
const InstallerURL = "https://opencode.ai/install"

// HealthPath is the HTTP path probed by internal/health's default checker.
const HealthPath = "/health"

// Config holds application-level configuration.
type Config struct {
	// HealthCheckSeconds is the per-request health-check timeout stored in
	// config.yaml. internal/health does not read it; HTTPChecker uses its own
	// Timeout field (2s by default).
	HealthCheckSeconds int `yaml:"health_check_seconds"`
	// WatchRefreshSeconds is the watch TUI refresh interval stored in
	// config.yaml. internal/ui does not read it; the dashboard ticks every
	// 400ms.
	WatchRefreshSeconds int `yaml:"watch_refresh_seconds"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		HealthCheckSeconds:  5,
		WatchRefreshSeconds: 1,
	}
}

// ConfigDir returns the application config directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/ssh-core.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ssh-core"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return filepath.Join(home, ".config", "ssh-core"), nil
}

// SessionDir returns the scratch directory for a session keyed by its
// opaque session key. On Unix it lives under /tmp rather than the OS temp
// directory, dodging macOS's UDS path-length limit on /var/folders; on
// platforms with no control-socket multiplexing (no path-length concern)
// it uses the OS temp directory instead.
func SessionDir(key string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.TempDir(), "opencode-ssh-"+key)
	}
	return filepath.Join("/tmp", "opencode-ssh-"+key)
}

// Load reads config.yaml from the config directory.
// If the file doesn't exist, creates it with defaults.
func Load() (Config, error) {
	d, err := ConfigDir()
	if err != nil {
		return Config{}, err
	}
	if err := os.MkdirAll(d, 0o755); err != nil {
		return Config{}, err
	}
	path := filepath.Join(d, "config.yaml")
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if err := Save(cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return Config{}, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.HealthCheckSeconds <= 0 {
		cfg.HealthCheckSeconds = 5
	}
	if cfg.WatchRefreshSeconds <= 0 {
		cfg.WatchRefreshSeconds = 1
	}
	return cfg, nil
}

// Save writes config to config.yaml.
func Save(cfg Config) error {
	d, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(d, 0o755); err != nil {
		return err
	}
	path := filepath.Join(d, "config.yaml")
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
