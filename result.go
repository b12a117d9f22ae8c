package webshot

import (
	"bytes"
	"encoding/base64"
	"io"
	"os"
)

// Result holds a raw capture and provides helpers for common output forms.
//
// The pixel data is lossless PNG, exactly as produced by the browser. To
// bound its size, pass [Result.Bytes] through
// [github.com/porticus-lab/go-webshot/shrink.ToBudget].
//
// A Result is returned by every capture method. It is safe to call its
// methods multiple times — the underlying data is never modified.
type Result struct {
	data []byte
	geom Geometry
}

// Bytes returns the raw PNG content.
func (r *Result) Bytes() []byte {
	return r.data
}

// Geometry returns the dimensions of the capture: the viewport size for
// viewport captures, or the resolved full-document extent for full-page
// captures.
func (r *Result) Geometry() Geometry {
	return r.geom
}

// Base64 returns the PNG encoded as a standard base64 string (RFC 4648).
// This is useful for embedding in JSON payloads or data URIs.
func (r *Result) Base64() string {
	return base64.StdEncoding.EncodeToString(r.data)
}

// Reader returns an [*bytes.Reader] over the PNG content.
// This is suitable for streaming uploads to cloud storage or any API that
// accepts an [io.Reader].
func (r *Result) Reader() *bytes.Reader {
	return bytes.NewReader(r.data)
}

// WriteTo writes the full PNG content to w. It implements [io.WriterTo].
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.data)
	return int64(n), err
}

// WriteToFile writes the PNG to the file at path, creating it if needed.
func (r *Result) WriteToFile(path string, perm os.FileMode) error {
	return os.WriteFile(path, r.data, perm)
}

// Len returns the size of the capture in bytes.
func (r *Result) Len() int {
	return len(r.data)
}
