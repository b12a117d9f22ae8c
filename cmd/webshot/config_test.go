package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/porticus-lab/go-webshot/shrink"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Budget.MaxBytes != shrink.DefaultMaxBytes {
		t.Errorf("default max_bytes = %d, want %d", cfg.Budget.MaxBytes, shrink.DefaultMaxBytes)
	}
	if cfg.Budget.MaxPixels != shrink.DefaultMaxPixels {
		t.Errorf("default max_pixels = %d, want %d", cfg.Budget.MaxPixels, shrink.DefaultMaxPixels)
	}
	if cfg.Viewport.Width != 1366 || cfg.Viewport.Height != 768 {
		t.Errorf("default viewport = %dx%d, want 1366x768", cfg.Viewport.Width, cfg.Viewport.Height)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "webshot.yaml")
	data := `
output:
  dir: /tmp/shots
viewport:
  width: 1920
  height: 1080
budget:
  max_bytes: 2097152
capture:
  timeout: 90s
  full_page: true
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Output.Dir != "/tmp/shots" {
		t.Errorf("output dir = %q, want /tmp/shots", cfg.Output.Dir)
	}
	if cfg.Viewport.Width != 1920 || cfg.Viewport.Height != 1080 {
		t.Errorf("viewport = %dx%d, want 1920x1080", cfg.Viewport.Width, cfg.Viewport.Height)
	}
	if cfg.Budget.MaxBytes != 2097152 {
		t.Errorf("max_bytes = %d, want 2097152", cfg.Budget.MaxBytes)
	}
	if cfg.Capture.Timeout != 90*time.Second {
		t.Errorf("timeout = %v, want 90s", cfg.Capture.Timeout)
	}
	if !cfg.Capture.FullPage {
		t.Error("full_page = false, want true")
	}
	// Unset fields keep their defaults.
	if cfg.Budget.MaxPixels != shrink.DefaultMaxPixels {
		t.Errorf("max_pixels = %d, want default %d", cfg.Budget.MaxPixels, shrink.DefaultMaxPixels)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("WEBSHOT_OUTPUT_DIR", "/tmp/env-shots")
	t.Setenv("WEBSHOT_MAX_BYTES", "1048576")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Output.Dir != "/tmp/env-shots" {
		t.Errorf("output dir = %q, want env override", cfg.Output.Dir)
	}
	if cfg.Budget.MaxBytes != 1048576 {
		t.Errorf("max_bytes = %d, want env override 1048576", cfg.Budget.MaxBytes)
	}
}

func TestLoadConfig_DefersValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "webshot.yaml")
	if err := os.WriteFile(path, []byte("viewport:\n  width: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// A broken file value may still be repaired by a flag, so loading must
	// succeed; only the later Validate rejects it.
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected Validate to reject the zero viewport width")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero viewport", func(c *Config) { c.Viewport.Width = 0 }},
		{"negative budget", func(c *Config) { c.Budget.MaxBytes = -1 }},
		{"empty output dir", func(c *Config) { c.Output.Dir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
