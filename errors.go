package webshot

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the library.
var (
	// ErrClosed is returned when attempting to use a closed [Capturer].
	ErrClosed = errors.New("webshot: capturer is closed")
)

// RendererError wraps a failure of the underlying browser session: navigation
// timeouts, disconnects during scroll elicitation, or a failed screenshot call.
// These failures are transient from the caller's point of view; the library
// performs no retries itself.
type RendererError struct {
	// Stage is the operation that failed: "navigate", "scroll", "measure",
	// or "screenshot".
	Stage string
	Err   error
}

func (e *RendererError) Error() string {
	return fmt.Sprintf("webshot: renderer %s: %v", e.Stage, e.Err)
}

func (e *RendererError) Unwrap() error { return e.Err }

// IsRendererError reports whether err is (or wraps) a [RendererError].
func IsRendererError(err error) bool {
	var re *RendererError
	return errors.As(err, &re)
}
