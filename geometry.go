package webshot

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Geometry is the resolved extent of a fully materialized document, in
// logical pixels. It is recomputed for every capture and never cached.
type Geometry struct {
	Width  int
	Height int
}

// Renderer is the minimal browser-session surface the dimension resolver
// needs. The chromedp-backed implementation used for real captures satisfies
// it; tests substitute fakes.
type Renderer interface {
	// ScrollBy scrolls the viewport by (dx, dy) logical pixels.
	ScrollBy(ctx context.Context, dx, dy int) error

	// ScrollTop resets the scroll position to (0, 0).
	ScrollTop(ctx context.Context) error

	// ScrollHeight returns the document's current scrollable height.
	// The value may grow between calls as lazy-loaded content appears.
	ScrollHeight(ctx context.Context) (int, error)

	// Measure returns the document extent, taking the maximum across the
	// content, offset, and client boxes of both the root element and body.
	Measure(ctx context.Context) (Geometry, error)
}

// Scroll-elicitation parameters. The step and cadence are small enough that
// infinite-scroll pages trigger their load thresholds the same way they do
// for a human reader; the settle delay gives trailing asynchronous content
// time to finish rendering after the final scroll.
const (
	scrollStep    = 100
	scrollCadence = 100 * time.Millisecond
	settleDelay   = 1 * time.Second
)

// ResolveGeometry scrolls through the document to force lazy-loaded content
// to materialize, then measures the full rendered extent. The scroll loop is
// driven by the document's own growth: it keeps going until the cumulative
// scrolled distance catches up with the latest observed scrollable height,
// however much the page grows along the way.
//
// The viewport is left at the top of the page, ready for capture. Renderer
// failures are returned as a [*RendererError]; ResolveGeometry does not retry.
func ResolveGeometry(ctx context.Context, r Renderer) (Geometry, error) {
	return resolveGeometry(ctx, r, scrollCadence, settleDelay)
}

func resolveGeometry(ctx context.Context, r Renderer, cadence, settle time.Duration) (Geometry, error) {
	height, err := r.ScrollHeight(ctx)
	if err != nil {
		return Geometry{}, &RendererError{Stage: "measure", Err: err}
	}

	scrolled := 0
	for scrolled < height {
		if err := r.ScrollBy(ctx, 0, scrollStep); err != nil {
			return Geometry{}, &RendererError{Stage: "scroll", Err: err}
		}
		scrolled += scrollStep

		if err := wait(ctx, cadence); err != nil {
			return Geometry{}, &RendererError{Stage: "scroll", Err: err}
		}

		// Re-read after every increment; the height only ever ratchets
		// upward so a shrinking DOM cannot stall the loop.
		h, err := r.ScrollHeight(ctx)
		if err != nil {
			return Geometry{}, &RendererError{Stage: "measure", Err: err}
		}
		if h > height {
			height = h
		}
	}

	// Capture coordinates assume an unscrolled page.
	if err := r.ScrollTop(ctx); err != nil {
		return Geometry{}, &RendererError{Stage: "scroll", Err: err}
	}
	if err := wait(ctx, settle); err != nil {
		return Geometry{}, &RendererError{Stage: "scroll", Err: err}
	}

	g, err := r.Measure(ctx)
	if err != nil {
		return Geometry{}, &RendererError{Stage: "measure", Err: err}
	}
	return g, nil
}

// wait sleeps for d or until ctx is done, whichever comes first.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// JavaScript expressions for document measurement. No single DOM source is
// reliable on its own: overflow rules, fixed positioning, and absolutely
// positioned footers each make individual boxes under-report, so the union
// of all of them is taken.
const (
	jsScrollHeight = `Math.max(document.body.scrollHeight, document.documentElement.scrollHeight)`

	jsDocumentWidth = `Math.max(
		document.body.scrollWidth, document.documentElement.scrollWidth,
		document.body.offsetWidth, document.documentElement.offsetWidth,
		document.body.clientWidth, document.documentElement.clientWidth
	)`

	jsDocumentHeight = `Math.max(
		document.body.scrollHeight, document.documentElement.scrollHeight,
		document.body.offsetHeight, document.documentElement.offsetHeight,
		document.body.clientHeight, document.documentElement.clientHeight
	)`
)

// cdpRenderer implements Renderer against a chromedp tab context.
type cdpRenderer struct{}

func (cdpRenderer) ScrollBy(ctx context.Context, dx, dy int) error {
	return chromedp.Evaluate(fmt.Sprintf("window.scrollBy(%d, %d)", dx, dy), nil).Do(ctx)
}

func (cdpRenderer) ScrollTop(ctx context.Context) error {
	return chromedp.Evaluate("window.scrollTo(0, 0)", nil).Do(ctx)
}

func (cdpRenderer) ScrollHeight(ctx context.Context) (int, error) {
	var h int
	if err := chromedp.Evaluate(jsScrollHeight, &h).Do(ctx); err != nil {
		return 0, err
	}
	return h, nil
}

func (cdpRenderer) Measure(ctx context.Context) (Geometry, error) {
	var g Geometry
	if err := chromedp.Evaluate(jsDocumentWidth, &g.Width).Do(ctx); err != nil {
		return Geometry{}, err
	}
	if err := chromedp.Evaluate(jsDocumentHeight, &g.Height).Do(ctx); err != nil {
		return Geometry{}, err
	}
	return g, nil
}
