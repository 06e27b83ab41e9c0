package config

import (
	"fmt"
	"strconv"
	"strings"
)

// memoryUnit pairs a size suffix with its byte multiplier (1024-based).
// Longer suffixes come first so "8GB" never parses as "8G" plus "B".
var memoryUnits = []struct {
	suffix string
	bytes  int64
}{
	{"TB", 1 << 40},
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// ParseMemoryLimit parses a human-readable size like "8GB" or "512MB" into
// bytes. A bare number is taken as bytes. The suffix is case-insensitive.
func ParseMemoryLimit(s string) (int64, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	if upper == "" {
		return 0, fmt.Errorf("empty size")
	}

	unit := int64(1)
	numPart := upper
	for _, u := range memoryUnits {
		if strings.HasSuffix(upper, u.suffix) && len(upper) > len(u.suffix) {
			unit = u.bytes
			numPart = strings.TrimSpace(strings.TrimSuffix(upper, u.suffix))
			break
		}
	}

	value, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	if value <= 0 {
		return 0, fmt.Errorf("size must be positive, got %q", s)
	}

	return int64(value * float64(unit)), nil
}
