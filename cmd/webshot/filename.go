package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// filenameFor derives an output filename from the captured URL: host plus
// sanitized path, a timestamp, and the extension chosen by the compressor.
func filenameFor(rawURL, ext string, now time.Time) string {
	name := "page"
	if u, err := url.Parse(rawURL); err == nil {
		parts := []string{u.Host}
		if p := strings.Trim(u.Path, "/"); p != "" {
			parts = append(parts, p)
		}
		if s := sanitize(strings.Join(parts, "-")); s != "" {
			name = s
		}
	}
	return fmt.Sprintf("%s-%s%s", name, now.Format("20060102-150405"), ext)
}

// sanitize maps a URL fragment to a safe filename: anything outside
// [a-z0-9.] becomes a dash, runs of dashes collapse.
func sanitize(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// uniquePath returns path, or path with a numeric suffix if a file already
// exists there, so a batch run never overwrites its own artifacts.
func uniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
