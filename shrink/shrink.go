// Package shrink reduces captured images under a byte budget.
//
// The reduction is staged so that fidelity is only sacrificed when cheaper
// levers are exhausted: captures that already fit pass through untouched,
// oversized captures are re-encoded as JPEG along a descending quality
// ladder, and only when no acceptable quality fits does the image itself
// get geometrically smaller. Inputs above the JPEG codec's pixel ceiling
// are pre-resized before any encode is attempted.
//
// The search is fully deterministic: the same input and budget always
// produce the same output.
package shrink

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Default limits.
const (
	// DefaultMaxBytes is the default output budget: 5 MiB.
	DefaultMaxBytes = 5 * 1024 * 1024

	// DefaultMaxPixels is the pixel-count ceiling above which the JPEG
	// encoder cannot safely operate on the full image.
	DefaultMaxPixels = 268_000_000
)

// pixelSafetyMargin leaves headroom between the pre-resized image and the
// codec ceiling against rounding and encoder-internal overhead.
const pixelSafetyMargin = 0.95

// fallbackQuality is the fixed JPEG quality used during geometric
// reduction, after the quality ladder alone has failed to fit the budget.
const fallbackQuality = 80

// Quality ladder bounds, in percent. Quality never drops below
// minQuality before geometric reduction is tried; scale never drops
// below minScalePct.
const (
	maxQuality  = 90
	minQuality  = 20
	qualityStep = 10

	maxScalePct  = 90
	minScalePct  = 30
	scaleStepPct = 10
)

// Sentinel errors for precondition violations.
var (
	// ErrInvalidBudget is returned when the byte budget is not positive.
	ErrInvalidBudget = errors.New("shrink: budget must be positive")

	// ErrEmptyInput is returned for a zero-length capture.
	ErrEmptyInput = errors.New("shrink: empty input")
)

// Budget bounds the compressor's output.
type Budget struct {
	// MaxBytes is the maximum acceptable output size. Must be positive.
	MaxBytes int

	// MaxPixels is the codec pixel-count ceiling. Zero or negative means
	// [DefaultMaxPixels]; this is a platform constant, not a tuning knob.
	MaxPixels int64
}

// DefaultBudget returns the default 5 MiB budget with the standard codec
// pixel ceiling.
func DefaultBudget() Budget {
	return Budget{MaxBytes: DefaultMaxBytes, MaxPixels: DefaultMaxPixels}
}

// Result is the outcome of a [ToBudget] call.
type Result struct {
	// Data is the encoded output. Unless BestEffort is set, its length
	// is within the budget.
	Data []byte

	// Ext is the suggested filename extension: ".png" while the capture
	// is lossless, ".jpg" once it has been re-encoded.
	Ext string

	// Lossless reports whether Data is the untouched original capture.
	Lossless bool

	// Quality is the JPEG quality of the chosen encoding. Zero when
	// Lossless.
	Quality int

	// Scale is the geometric scale applied during reduction, relative to
	// the working image. 1 when dimensions were not reduced to meet the
	// byte budget (a pixel-ceiling pre-resize does not count).
	Scale float64

	// Width and Height are the pixel dimensions of the output. Zero when
	// the input could not be decoded.
	Width  int
	Height int

	// BestEffort marks a result that exceeds the budget because no point
	// in the search space fit. It is the smallest encoding achieved and
	// should be surfaced as a warning, not an error.
	BestEffort bool
}

// ToBudget reduces a lossless capture under b.MaxBytes.
//
// Captures already within budget are returned byte-identical with zero
// re-encoding cost. Oversized captures are re-encoded as JPEG, trying
// qualities 90 down to 20 in steps of 10, then scales 0.9 down to 0.3 in
// steps of 0.1 at quality 80, stopping at the first fit. If nothing fits,
// the smallest encoding achieved is returned tagged BestEffort.
//
// A capture that cannot be decoded or re-encoded at all is returned
// unmodified alongside the diagnostic error, so the caller always has a
// buffer to persist.
func ToBudget(raw []byte, b Budget) (*Result, error) {
	if b.MaxBytes <= 0 {
		return nil, ErrInvalidBudget
	}
	if len(raw) == 0 {
		return nil, ErrEmptyInput
	}
	maxPixels := b.MaxPixels
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	// Common case: nothing to do.
	if len(raw) <= b.MaxBytes {
		res := &Result{Data: raw, Ext: ".png", Lossless: true, Scale: 1}
		if cfg, format, err := image.DecodeConfig(bytes.NewReader(raw)); err == nil {
			res.Width, res.Height = cfg.Width, cfg.Height
			res.Ext = extFor(format)
		}
		return res, nil
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return originalResult(raw), fmt.Errorf("shrink: decoding capture: %w", err)
	}

	// The encoder cannot operate above the pixel ceiling; bring the
	// working image underneath it before the first encode attempt.
	working := preResize(img, maxPixels)
	w := working.Bounds().Dx()
	h := working.Bounds().Dy()

	var (
		best     *Result
		diags    []error
		tryCheck = func(data []byte, quality int, scale float64, dw, dh int) *Result {
			r := &Result{
				Data:    data,
				Ext:     ".jpg",
				Quality: quality,
				Scale:   scale,
				Width:   dw,
				Height:  dh,
			}
			if best == nil || len(data) < len(best.Data) {
				best = r
			}
			if len(data) <= b.MaxBytes {
				return r
			}
			return nil
		}
	)

	// Quality search first: it preserves layout and text legibility far
	// better than throwing away pixels.
	for q := maxQuality; q >= minQuality; q -= qualityStep {
		data, err := encodeJPEG(working, q)
		if err != nil {
			diags = append(diags, fmt.Errorf("quality %d: %w", q, err))
			continue
		}
		if r := tryCheck(data, q, 1, w, h); r != nil {
			return r, nil
		}
	}

	// Geometric reduction, always from the working image's own
	// dimensions so the scale ladder is absolute, not compounding.
	for pct := maxScalePct; pct >= minScalePct; pct -= scaleStepPct {
		scale := float64(pct) / 100
		dw, dh := scaleDims(w, h, scale)
		data, err := encodeJPEG(imaging.Resize(working, dw, dh, imaging.Lanczos), fallbackQuality)
		if err != nil {
			diags = append(diags, fmt.Errorf("scale %d%%: %w", pct, err))
			continue
		}
		if r := tryCheck(data, fallbackQuality, scale, dw, dh); r != nil {
			return r, nil
		}
	}

	if best == nil {
		// Every encode attempt failed; hand back the capture untouched.
		return originalResult(raw), fmt.Errorf("shrink: all encode attempts failed: %w", errors.Join(diags...))
	}

	// Dense or high-entropy content that cannot reach the budget even at
	// the floor of the search space: return the smallest achieved.
	best.BestEffort = true
	return best, nil
}

// preResize scales img under the codec pixel ceiling, preserving aspect
// ratio. Images already under the ceiling are returned as is.
func preResize(img image.Image, maxPixels int64) image.Image {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	total := int64(w) * int64(h)
	if total <= maxPixels {
		return img
	}
	s := math.Sqrt(float64(maxPixels)/float64(total)) * pixelSafetyMargin
	dw, dh := scaleDims(w, h, s)
	return imaging.Resize(img, dw, dh, imaging.Lanczos)
}

// scaleDims applies a uniform scale factor to both dimensions, flooring
// the results and never collapsing a dimension to zero.
func scaleDims(w, h int, s float64) (int, int) {
	dw := int(math.Floor(float64(w) * s))
	dh := int(math.Floor(float64(h) * s))
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	return dw, dh
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// originalResult wraps the untouched input for codec-failure fallbacks.
func originalResult(raw []byte) *Result {
	return &Result{Data: raw, Ext: ".png", Lossless: true, Scale: 1}
}

func extFor(format string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	case "":
		return ".png"
	default:
		return "." + format
	}
}
