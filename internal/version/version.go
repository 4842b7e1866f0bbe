// Package version exposes the voxide release version, embedded from the
// VERSION file at build time.
package version

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var raw string

// Get returns the voxide version string with surrounding whitespace
// trimmed.
func Get() string {
	return strings.TrimSpace(raw)
}
