// Package iso8601 formats and parses timestamps in the ISO 8601 profile
// used throughout the audit log: UTC with millisecond precision.
package iso8601

import (
	"fmt"
	"time"
)

// Layout is the canonical timestamp layout.
const Layout = "2006-01-02T15:04:05.000Z"

// Format renders t as an ISO 8601 UTC timestamp.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Parse reads a timestamp produced by Format. It also accepts RFC 3339
// timestamps with other offsets or precision, normalizing to UTC.
func Parse(s string) (time.Time, error) {
	if t, err := time.Parse(Layout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid ISO 8601 timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
