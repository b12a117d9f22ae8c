package webshot

import (
	"time"

	"github.com/rs/zerolog"
)

// capturerConfig holds internal configuration for a Capturer.
type capturerConfig struct {
	chromePath   string
	timeout      time.Duration
	noSandbox    bool
	headless     string
	autoDownload bool
	userAgent    string
	log          zerolog.Logger
}

func defaultConfig() capturerConfig {
	return capturerConfig{
		timeout:  60 * time.Second,
		headless: "new",
		log:      zerolog.Nop(),
	}
}

// Option configures a [Capturer].
type Option func(*capturerConfig)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default the library searches standard locations automatically.
func WithChromePath(path string) Option {
	return func(c *capturerConfig) {
		c.chromePath = path
	}
}

// WithTimeout sets the maximum duration for a single capture, including
// navigation, lazy-load elicitation, and the screenshot itself.
// Defaults to 60 seconds. A zero or negative value disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *capturerConfig) {
		c.timeout = d
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() Option {
	return func(c *capturerConfig) {
		c.noSandbox = true
	}
}

// WithAutoDownload downloads a compatible Chromium binary when no local
// Chrome installation is found. The binary is cached across runs.
func WithAutoDownload() Option {
	return func(c *capturerConfig) {
		c.autoDownload = true
	}
}

// WithUserAgent overrides the browser's default User-Agent header for
// every capture made by this Capturer.
func WithUserAgent(ua string) Option {
	return func(c *capturerConfig) {
		c.userAgent = ua
	}
}

// WithLogger sets a zerolog logger for debug output: navigation, scroll
// progress, and resolved page geometry. Logging is disabled by default.
func WithLogger(log zerolog.Logger) Option {
	return func(c *capturerConfig) {
		c.log = log
	}
}
