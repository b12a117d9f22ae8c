package webshot

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Capturer captures web pages as PNG images.
//
// A Capturer manages a headless browser instance that is reused across
// multiple captures for performance. It is safe for concurrent use; each
// capture runs in its own browser tab.
//
// Call [Capturer.Close] when the Capturer is no longer needed to release
// browser resources.
type Capturer struct {
	cfg           capturerConfig
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewCapturer creates a Capturer with the given options.
//
// It starts a headless browser in the background. The caller must call
// [Capturer.Close] when finished.
func NewCapturer(opts ...Option) (*Capturer, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.autoDownload && cfg.chromePath == "" {
		path, err := resolveBrowser()
		if err != nil {
			return nil, err
		}
		cfg.chromePath = path
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("headless", cfg.headless),
	)
	if cfg.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.chromePath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}
	if cfg.userAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(cfg.userAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so errors surface at creation time.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("webshot: starting browser: %w", err)
	}

	return &Capturer{
		cfg:           cfg,
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close releases all resources held by the Capturer, including the
// browser process. Close is idempotent.
func (c *Capturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.browserCancel()
	c.allocCancel()
	return nil
}

// CaptureURL captures the web page at rawURL.
// If shot is nil, [DefaultShotConfig] values are used.
func (c *Capturer) CaptureURL(ctx context.Context, rawURL string, shot *ShotConfig) (*Result, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("webshot: invalid URL %q: %w", rawURL, err)
	}
	return c.capture(ctx, rawURL, shot)
}

// CaptureFile captures a local HTML file.
// If shot is nil, [DefaultShotConfig] values are used.
func (c *Capturer) CaptureFile(ctx context.Context, path string, shot *ShotConfig) (*Result, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("webshot: resolving path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("webshot: %w", err)
	}
	return c.capture(ctx, "file://"+abs, shot)
}

// CaptureHTML renders an HTML string and captures it.
// If shot is nil, [DefaultShotConfig] values are used.
func (c *Capturer) CaptureHTML(ctx context.Context, html string, shot *ShotConfig) (*Result, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	f, err := os.CreateTemp("", "webshot-*.html")
	if err != nil {
		return nil, fmt.Errorf("webshot: creating temp file: %w", err)
	}
	name := f.Name()
	defer os.Remove(name)

	if _, err := f.WriteString(html); err != nil {
		f.Close()
		return nil, fmt.Errorf("webshot: writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("webshot: closing temp file: %w", err)
	}

	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, fmt.Errorf("webshot: resolving path: %w", err)
	}
	return c.capture(ctx, "file://"+abs, shot)
}

// capture performs the actual navigation and screenshot.
func (c *Capturer) capture(ctx context.Context, targetURL string, shot *ShotConfig) (*Result, error) {
	resolved := shot.resolved()

	tabCtx, tabCancel := chromedp.NewContext(c.browserCtx)
	defer tabCancel()

	// The run context must descend from the tab context so chromedp can
	// resolve its session, and it carries the per-capture deadline. Caller
	// cancellation is linked in so ctx stops the tab too.
	var runCtx context.Context
	var runCancel context.CancelFunc
	if c.cfg.timeout > 0 {
		runCtx, runCancel = context.WithTimeout(tabCtx, c.cfg.timeout)
	} else {
		runCtx, runCancel = context.WithCancel(tabCtx)
	}
	defer runCancel()
	stop := context.AfterFunc(ctx, runCancel)
	defer stop()

	c.cfg.log.Debug().Str("url", targetURL).Bool("full_page", resolved.FullPage).Msg("capturing")

	geom := Geometry{Width: resolved.Width, Height: resolved.Height}
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(resolved.Width), int64(resolved.Height)),
		chromedp.Navigate(targetURL),
		chromedp.WaitReady(resolved.WaitSelector, chromedp.ByQuery),
	}
	if resolved.Delay > 0 {
		tasks = append(tasks, chromedp.Sleep(resolved.Delay))
	}

	if resolved.FullPage {
		tasks = append(tasks, chromedp.ActionFunc(func(ctx context.Context) error {
			g, err := ResolveGeometry(ctx, cdpRenderer{})
			if err != nil {
				return err
			}
			// The document extent can never be smaller than the viewport.
			if g.Width < resolved.Width {
				g.Width = resolved.Width
			}
			if g.Height < resolved.Height {
				g.Height = resolved.Height
			}
			geom = g
			c.cfg.log.Debug().
				Int("width", g.Width).
				Int("height", g.Height).
				Msg("resolved full-page geometry")

			// Grow the emulated viewport to the full document so the
			// native capture sees every rendered pixel.
			return emulation.SetDeviceMetricsOverride(int64(g.Width), int64(g.Height), 1, false).Do(ctx)
		}))
	}

	var buf []byte
	tasks = append(tasks, chromedp.ActionFunc(func(ctx context.Context) error {
		b, err := page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatPng).
			Do(ctx)
		if err != nil {
			return &RendererError{Stage: "screenshot", Err: err}
		}
		buf = b
		return nil
	}))

	if err := chromedp.Run(runCtx, tasks); err != nil {
		if !IsRendererError(err) {
			err = &RendererError{Stage: "navigate", Err: err}
		}
		return nil, fmt.Errorf("webshot: capture failed: %w", err)
	}

	return &Result{data: buf, geom: geom}, nil
}

func (c *Capturer) checkClosed() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}

// --- Package-level convenience functions ---

// CaptureURL captures a web page using a temporary [Capturer]. This is
// convenient for one-off captures. For repeated use, create a [Capturer]
// with [NewCapturer] to reuse the browser instance.
func CaptureURL(ctx context.Context, rawURL string, shot *ShotConfig, opts ...Option) (*Result, error) {
	c, err := NewCapturer(opts...)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.CaptureURL(ctx, rawURL, shot)
}

// CaptureFile captures a local HTML file using a temporary [Capturer].
func CaptureFile(ctx context.Context, path string, shot *ShotConfig, opts ...Option) (*Result, error) {
	c, err := NewCapturer(opts...)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.CaptureFile(ctx, path, shot)
}

// CaptureHTML renders an HTML string using a temporary [Capturer].
func CaptureHTML(ctx context.Context, html string, shot *ShotConfig, opts ...Option) (*Result, error) {
	c, err := NewCapturer(opts...)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.CaptureHTML(ctx, html, shot)
}
