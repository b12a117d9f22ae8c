// Package webshot captures rendered web pages as raster images via headless
// Chrome (Chrome DevTools Protocol) and bounds the size of the artifact it
// produces.
//
// # Capturing
//
// For one-off captures use the package-level helpers:
//
//	res, err := webshot.CaptureURL(ctx, "https://example.com", nil)
//
// For repeated captures create a [Capturer], which reuses the browser process:
//
//	c, err := webshot.NewCapturer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	res, err := c.CaptureURL(ctx, "https://example.com", nil)
//	res, err  = c.CaptureFile(ctx, "report.html", nil)
//	res, err  = c.CaptureHTML(ctx, "<h1>Hello</h1>", nil)
//
// Use [ShotConfig] to control the viewport and full-page behavior:
//
//	shot := &webshot.ShotConfig{
//	    Width:    1366,
//	    Height:   768,
//	    FullPage: true,
//	}
//	res, err := c.CaptureURL(ctx, "https://example.com", shot)
//
// Full-page captures first scroll through the document in small increments so
// that lazy-loaded content materializes, then measure the true rendered extent
// across every DOM source before the screenshot is taken.
//
// A [Result] gives flexible access to the captured PNG bytes:
//
//	res.Bytes()                       // []byte
//	res.Base64()                      // base64 string (RFC 4648)
//	res.Reader()                      // *bytes.Reader
//	res.WriteTo(w)                    // io.WriterTo
//	res.WriteToFile("out.png", 0o644) // write to disk
//
// Chrome or Chromium must be available in PATH, or use [WithAutoDownload]:
//
//	c, err := webshot.NewCapturer(webshot.WithAutoDownload())
//
// # Bounding output size
//
// The [github.com/porticus-lab/go-webshot/shrink] package reduces a capture
// under a byte budget while preserving as much fidelity as possible:
//
//	out, err := shrink.ToBudget(res.Bytes(), shrink.DefaultBudget())
//	os.WriteFile("shot"+out.Ext, out.Data, 0o644)
//
// Captures that already fit pass through byte-identical. Oversized captures are
// re-encoded as JPEG, walking a quality ladder before any dimensions are
// sacrificed; a result that cannot be brought under budget is still returned,
// tagged best-effort.
package webshot
