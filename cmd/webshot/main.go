// webshot captures rendered web pages as raster images whose file size
// never exceeds a configurable byte budget.
//
// Usage:
//
//	webshot [options] <url> [url...]
//	webshot [options] -f urls.txt
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	webshot "github.com/porticus-lab/go-webshot"
	"github.com/porticus-lab/go-webshot/shrink"
)

var (
	configFile      = flag.String("config", "", "path to a webshot.yaml configuration file")
	outputDir       = flag.String("o", "", "output directory for captures")
	urlFile         = flag.String("f", "", "file with URLs to capture, one per line")
	width           = flag.Int("width", 0, "viewport width in pixels")
	height          = flag.Int("height", 0, "viewport height in pixels")
	fullPage        = flag.Bool("full", false, "capture the full page, not just the viewport")
	maxBytes        = flag.Int("max-bytes", 0, "output size budget in bytes")
	timeout         = flag.Duration("timeout", 0, "per-capture timeout")
	delay           = flag.Duration("delay", 0, "extra settle delay before capturing")
	waitFor         = flag.String("wait-for", "", "CSS selector to wait for before capturing")
	chromePath      = flag.String("chrome", "", "path to the Chrome/Chromium executable")
	downloadBrowser = flag.Bool("download-browser", false, "download a Chromium binary if none is installed")
	noSandbox       = flag.Bool("no-sandbox", false, "disable the Chrome sandbox (needed when running as root)")
	userAgent       = flag.String("user-agent", "", "override the browser User-Agent")
	verbose         = flag.Bool("v", false, "enable debug logging")
)

func usage() {
	fmt.Fprint(os.Stderr, `webshot - capture web pages as size-bounded images

Usage:
  webshot [options] <url> [url...]
  webshot [options] -f urls.txt

Captures are written as PNG when they fit the byte budget, or re-encoded
as JPEG with progressively reduced quality, then dimensions, until they
do. A capture that cannot reach the budget is still written, with a
warning.

Options:
`)
	flag.PrintDefaults()
	fmt.Fprint(os.Stderr, `
Examples:
  webshot https://example.com
  webshot -full -o shots https://example.com
  webshot -max-bytes 2097152 -f urls.txt
`)
}

func main() {
	flag.Usage = usage
	flag.Parse()

	urls := flag.Args()
	if *urlFile != "" {
		fromFile, err := readURLList(*urlFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		usage()
		os.Exit(1)
	}

	cfg, err := LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg.Logging.Level, *verbose)

	opts := []webshot.Option{
		webshot.WithTimeout(cfg.Capture.Timeout),
		webshot.WithLogger(log),
	}
	if cfg.Capture.ChromePath != "" {
		opts = append(opts, webshot.WithChromePath(cfg.Capture.ChromePath))
	}
	if cfg.Capture.DownloadBrowser {
		opts = append(opts, webshot.WithAutoDownload())
	}
	if cfg.Capture.NoSandbox {
		opts = append(opts, webshot.WithNoSandbox())
	}
	if cfg.Capture.UserAgent != "" {
		opts = append(opts, webshot.WithUserAgent(cfg.Capture.UserAgent))
	}

	c, err := webshot.NewCapturer(opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("starting browser")
	}
	defer c.Close()

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Output.Dir).Msg("creating output directory")
	}

	shot := &webshot.ShotConfig{
		Width:        cfg.Viewport.Width,
		Height:       cfg.Viewport.Height,
		FullPage:     cfg.Capture.FullPage,
		WaitSelector: cfg.Capture.WaitSelector,
		Delay:        cfg.Capture.Delay,
	}
	budget := shrink.Budget{
		MaxBytes:  cfg.Budget.MaxBytes,
		MaxPixels: cfg.Budget.MaxPixels,
	}

	failed := 0
	for _, u := range urls {
		if err := captureOne(context.Background(), c, u, shot, budget, cfg.Output.Dir, log); err != nil {
			log.Error().Err(err).Str("url", u).Msg("capture failed")
			failed++
		}
	}
	if failed > 0 {
		log.Warn().Int("failed", failed).Int("total", len(urls)).Msg("finished with failures")
		os.Exit(1)
	}
}

// captureOne runs the full pipeline for a single URL: capture, reduce
// under budget, write.
func captureOne(ctx context.Context, c *webshot.Capturer, rawURL string, shot *webshot.ShotConfig, budget shrink.Budget, dir string, log zerolog.Logger) error {
	start := time.Now()

	res, err := c.CaptureURL(ctx, rawURL, shot)
	if err != nil {
		return err
	}

	out, err := shrink.ToBudget(res.Bytes(), budget)
	if err != nil {
		if out == nil {
			return err
		}
		// The compressor hands back the raw capture when the codec
		// chokes; persist it rather than losing the shot.
		log.Warn().Err(err).Str("url", rawURL).Msg("compression failed, writing raw capture")
	}
	if out.BestEffort {
		log.Warn().
			Str("url", rawURL).
			Int("bytes", len(out.Data)).
			Int("budget", budget.MaxBytes).
			Msg("could not reach budget, wrote smallest achievable")
	}

	path := uniquePath(filepath.Join(dir, filenameFor(rawURL, out.Ext, start)))
	if err := os.WriteFile(path, out.Data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	log.Info().
		Str("url", rawURL).
		Str("file", path).
		Int("bytes", len(out.Data)).
		Dur("took", time.Since(start).Round(time.Millisecond)).
		Msg("captured")
	return nil
}

// applyFlags overlays explicitly set command line flags onto cfg.
func applyFlags(cfg *Config) {
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *width > 0 {
		cfg.Viewport.Width = *width
	}
	if *height > 0 {
		cfg.Viewport.Height = *height
	}
	if *fullPage {
		cfg.Capture.FullPage = true
	}
	if *maxBytes > 0 {
		cfg.Budget.MaxBytes = *maxBytes
	}
	if *timeout > 0 {
		cfg.Capture.Timeout = *timeout
	}
	if *delay > 0 {
		cfg.Capture.Delay = *delay
	}
	if *waitFor != "" {
		cfg.Capture.WaitSelector = *waitFor
	}
	if *chromePath != "" {
		cfg.Capture.ChromePath = *chromePath
	}
	if *downloadBrowser {
		cfg.Capture.DownloadBrowser = true
	}
	if *noSandbox {
		cfg.Capture.NoSandbox = true
	}
	if *userAgent != "" {
		cfg.Capture.UserAgent = *userAgent
	}
}

// readURLList reads URLs from a file, one per line. Blank lines and
// #-comments are skipped.
func readURLList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening URL list: %w", err)
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading URL list: %w", err)
	}
	return urls, nil
}

// newLogger builds a console logger at the configured level; -v forces
// debug.
func newLogger(level string, verbose bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
