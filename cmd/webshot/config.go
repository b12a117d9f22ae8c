package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/porticus-lab/go-webshot/shrink"
)

// Config holds all CLI configuration.
type Config struct {
	Output   OutputConfig   `yaml:"output"`
	Viewport ViewportConfig `yaml:"viewport"`
	Budget   BudgetConfig   `yaml:"budget"`
	Capture  CaptureConfig  `yaml:"capture"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// OutputConfig controls where artifacts are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// ViewportConfig is the emulated browser viewport.
type ViewportConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// BudgetConfig bounds the written artifact.
type BudgetConfig struct {
	MaxBytes  int   `yaml:"max_bytes"`
	MaxPixels int64 `yaml:"max_pixels"`
}

// CaptureConfig controls the browser session and per-shot behavior.
type CaptureConfig struct {
	Timeout         time.Duration `yaml:"timeout"`
	FullPage        bool          `yaml:"full_page"`
	Delay           time.Duration `yaml:"delay"`
	WaitSelector    string        `yaml:"wait_selector"`
	UserAgent       string        `yaml:"user_agent"`
	ChromePath      string        `yaml:"chrome_path"`
	NoSandbox       bool          `yaml:"no_sandbox"`
	DownloadBrowser bool          `yaml:"download_browser"`
}

// LoggingConfig controls console logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Dir: ".",
		},
		Viewport: ViewportConfig{
			Width:  1366,
			Height: 768,
		},
		Budget: BudgetConfig{
			MaxBytes:  shrink.DefaultMaxBytes,
			MaxPixels: shrink.DefaultMaxPixels,
		},
		Capture: CaptureConfig{
			Timeout: 60 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig builds the effective configuration.
// Precedence order: command line flags > environment variables > .env file > config file > defaults.
// Flag application is handled by the caller; this loads everything beneath it.
func LoadConfig(path string) (*Config, error) {
	// Pick up .env overrides if present; ignore a missing file.
	_ = godotenv.Load(".env")

	cfg := DefaultConfig()

	if path == "" {
		if _, err := os.Stat("webshot.yaml"); err == nil {
			path = "webshot.yaml"
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()

	// Validation happens after the caller overlays flags: a file value a
	// flag would repair must not abort the run here.
	return cfg, nil
}

// applyEnv overlays WEBSHOT_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("WEBSHOT_OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv("WEBSHOT_CHROME_PATH"); v != "" {
		c.Capture.ChromePath = v
	}
	if v := os.Getenv("WEBSHOT_USER_AGENT"); v != "" {
		c.Capture.UserAgent = v
	}
	if v := os.Getenv("WEBSHOT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("WEBSHOT_MAX_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Budget.MaxBytes = n
		}
	}
	if v := os.Getenv("WEBSHOT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Capture.Timeout = d
		}
	}
}

// Validate rejects configurations the capture pipeline cannot honor.
func (c *Config) Validate() error {
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("viewport must be positive, got %dx%d", c.Viewport.Width, c.Viewport.Height)
	}
	if c.Budget.MaxBytes <= 0 {
		return fmt.Errorf("budget max_bytes must be positive, got %d", c.Budget.MaxBytes)
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output dir must not be empty")
	}
	return nil
}
