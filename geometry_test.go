package webshot

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeRenderer simulates a document that grows as it is scrolled, the way
// infinite-scroll and lazy-image pages do.
type fakeRenderer struct {
	pos    int
	height int

	// maxHeight is the height the document converges to; growBy is added
	// whenever the scroll cursor comes within loadMargin of the bottom.
	maxHeight  int
	growBy     int
	loadMargin int

	width      int
	observed   []int
	scrolls    int
	resetAt    int // value of scrolls when ScrollTop was called, -1 if never
	measured   bool
	scrollErr  error
	heightErr  error
	measureErr error
}

func newFakeRenderer(initial, max int) *fakeRenderer {
	return &fakeRenderer{
		height:     initial,
		maxHeight:  max,
		growBy:     1000,
		loadMargin: 400,
		width:      1280,
		resetAt:    -1,
	}
}

func (f *fakeRenderer) ScrollBy(_ context.Context, dx, dy int) error {
	if f.scrollErr != nil {
		return f.scrollErr
	}
	f.scrolls++
	f.pos += dy
	if f.pos >= f.height-f.loadMargin && f.height < f.maxHeight {
		f.height += f.growBy
		if f.height > f.maxHeight {
			f.height = f.maxHeight
		}
	}
	return nil
}

func (f *fakeRenderer) ScrollTop(context.Context) error {
	f.pos = 0
	f.resetAt = f.scrolls
	return nil
}

func (f *fakeRenderer) ScrollHeight(context.Context) (int, error) {
	if f.heightErr != nil {
		return 0, f.heightErr
	}
	f.observed = append(f.observed, f.height)
	return f.height, nil
}

func (f *fakeRenderer) Measure(context.Context) (Geometry, error) {
	if f.measureErr != nil {
		return Geometry{}, f.measureErr
	}
	f.measured = true
	return Geometry{Width: f.width, Height: f.height}, nil
}

func TestResolveGeometry_LazyGrowth(t *testing.T) {
	// A page that reports 2000px at load time but grows to 6000px as the
	// scroll cursor approaches the bottom.
	f := newFakeRenderer(2000, 6000)

	g, err := resolveGeometry(context.Background(), f, 0, 0)
	if err != nil {
		t.Fatalf("resolveGeometry: %v", err)
	}

	if g.Height != 6000 {
		t.Errorf("height = %d, want the converged 6000, not the initial 2000", g.Height)
	}
	if g.Width != 1280 {
		t.Errorf("width = %d, want 1280", g.Width)
	}

	// The recorded scrollable height must never decrease.
	for i := 1; i < len(f.observed); i++ {
		if f.observed[i] < f.observed[i-1] {
			t.Fatalf("observed height decreased: %v", f.observed)
		}
	}

	// The loop must have kept scrolling until it caught up with the final
	// height, then reset to the top before measuring.
	if f.scrolls < 6000/scrollStep {
		t.Errorf("scrolled %d times, want at least %d", f.scrolls, 6000/scrollStep)
	}
	if f.pos != 0 {
		t.Errorf("final scroll position = %d, want 0", f.pos)
	}
	if f.resetAt != f.scrolls {
		t.Error("viewport was not reset after the scroll loop converged")
	}
	if !f.measured {
		t.Error("Measure was never called")
	}
}

func TestResolveGeometry_StaticPage(t *testing.T) {
	// A page that never grows: the loop covers it once and stops.
	f := newFakeRenderer(500, 500)

	g, err := resolveGeometry(context.Background(), f, 0, 0)
	if err != nil {
		t.Fatalf("resolveGeometry: %v", err)
	}
	if g.Height != 500 {
		t.Errorf("height = %d, want 500", g.Height)
	}
	if want := 500 / scrollStep; f.scrolls != want {
		t.Errorf("scrolled %d times, want exactly %d", f.scrolls, want)
	}
}

func TestResolveGeometry_ScrollFailure(t *testing.T) {
	f := newFakeRenderer(2000, 2000)
	f.scrollErr = errors.New("target closed")

	_, err := resolveGeometry(context.Background(), f, 0, 0)
	if err == nil {
		t.Fatal("expected error")
	}
	var re *RendererError
	if !errors.As(err, &re) {
		t.Fatalf("error %v is not a RendererError", err)
	}
	if re.Stage != "scroll" {
		t.Errorf("stage = %q, want %q", re.Stage, "scroll")
	}
}

func TestResolveGeometry_MeasureFailure(t *testing.T) {
	f := newFakeRenderer(200, 200)
	f.measureErr = errors.New("websocket closed")

	_, err := resolveGeometry(context.Background(), f, 0, 0)
	var re *RendererError
	if !errors.As(err, &re) {
		t.Fatalf("error %v is not a RendererError", err)
	}
	if re.Stage != "measure" {
		t.Errorf("stage = %q, want %q", re.Stage, "measure")
	}
}

func TestResolveGeometry_DeadlineBoundsGrowth(t *testing.T) {
	// A pathological page that grows by a full scroll step on every step
	// taken, so the loop can never converge on its own. The deadline on
	// the context is the only thing that stops it.
	f := newFakeRenderer(1000, 1<<30)
	f.growBy = scrollStep
	f.loadMargin = 1 << 30

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := resolveGeometry(ctx, f, time.Millisecond, 0)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want context.DeadlineExceeded", err)
	}
	if !IsRendererError(err) {
		t.Error("deadline expiry should surface as a renderer failure")
	}
}

func TestResolveGeometry_ContextCanceled(t *testing.T) {
	f := newFakeRenderer(10_000, 10_000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := resolveGeometry(ctx, f, scrollCadence, settleDelay)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if !IsRendererError(err) {
		t.Error("cancellation should surface as a renderer failure")
	}
}
