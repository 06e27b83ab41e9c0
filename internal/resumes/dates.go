// Package resumes turns employment spells into per-year rows. Each spell
// carries raw period strings; this package owns their parsing, the resolution
// of open-ended spells and the year-range expansion.
package resumes

import (
	"fmt"
	"strings"
	"time"
)

// periodLayout matches the leading year-month of a period string. Inputs vary
// between "2019-03", full dates and timestamps; the first seven characters
// are the part every variant shares.
const periodLayout = "2006-01"

// ParseYear extracts the calendar year from a period string. Anything without
// a valid year-month prefix is an error.
func ParseYear(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) < len(periodLayout) {
		return 0, fmt.Errorf("period %q is too short, want at least YYYY-MM", raw)
	}
	t, err := time.Parse(periodLayout, raw[:len(periodLayout)])
	if err != nil {
		return 0, fmt.Errorf("failed to parse period %q: %w", raw, err)
	}
	return t.Year(), nil
}
