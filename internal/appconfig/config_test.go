package appconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HealthCheckSeconds != 5 {
		t.Fatalf("unexpected health check seconds: %d", cfg.HealthCheckSeconds)
	}
	if cfg.WatchRefreshSeconds != 1 {
		t.Fatalf("unexpected watch refresh seconds: %d", cfg.WatchRefreshSeconds)
	}
}

func TestLoad_NormalizesInvalidValues(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	dir := filepath.Join(xdg, "ssh-core")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	content := []byte("health_check_seconds: -1\nwatch_refresh_seconds: 0\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HealthCheckSeconds != 5 {
		t.Fatalf("expected normalized health check seconds, got %d", cfg.HealthCheckSeconds)
	}
	if cfg.WatchRefreshSeconds != 1 {
		t.Fatalf("expected normalized watch refresh seconds, got %d", cfg.WatchRefreshSeconds)
	}
}

func TestSessionDir(t *testing.T) {
	d1 := SessionDir("abc123")
	d2 := SessionDir("abc123")
	if d1 != d2 {
		t.Fatalf("expected deterministic session dir for the same key")
	}
	if filepath.Base(d1) != "opencode-ssh-abc123" {
		t.Fatalf("unexpected session dir name: %s", d1)
	}
}
