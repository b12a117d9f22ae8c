package webshot

import "time"

// ShotConfig controls how a single capture is taken.
//
// A nil ShotConfig or zero-value fields will use sensible defaults:
// a 1366x768 viewport, viewport-only capture, no extra settle delay.
type ShotConfig struct {
	// Width is the viewport width in logical pixels. Defaults to 1366.
	Width int

	// Height is the viewport height in logical pixels. Defaults to 768.
	Height int

	// FullPage captures the entire document rather than just the viewport.
	// The document is scrolled through first so lazy-loaded content
	// materializes, then measured across all DOM sources before the
	// screenshot is taken.
	FullPage bool

	// WaitSelector, when set, delays the capture until the first element
	// matching this CSS selector is ready. Defaults to "body".
	WaitSelector string

	// Delay is an extra settle time after the page reports ready, before
	// the document is measured and captured. Use it for pages with trailing
	// animations or late asynchronous content.
	Delay time.Duration
}

// Default viewport dimensions.
const (
	DefaultViewportWidth  = 1366
	DefaultViewportHeight = 768
)

// DefaultShotConfig returns a ShotConfig with sensible defaults.
func DefaultShotConfig() ShotConfig {
	return ShotConfig{
		Width:        DefaultViewportWidth,
		Height:       DefaultViewportHeight,
		WaitSelector: "body",
	}
}

// resolved returns a ShotConfig with all zero values replaced by defaults.
func (s *ShotConfig) resolved() ShotConfig {
	d := DefaultShotConfig()
	if s == nil {
		return d
	}
	r := *s
	if r.Width <= 0 {
		r.Width = d.Width
	}
	if r.Height <= 0 {
		r.Height = d.Height
	}
	if r.WaitSelector == "" {
		r.WaitSelector = d.WaitSelector
	}
	if r.Delay < 0 {
		r.Delay = 0
	}
	return r
}
