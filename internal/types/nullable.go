// Package types provides type definitions for the tabular artifacts exchanged
// between pipeline stages.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strconv"
)

// formatFloat renders a float so that decoding it returns the identical value.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatNullableFloat renders a nullable float for CSV; nil becomes the empty field.
func formatNullableFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

// parseNullableFloat parses a CSV field into a nullable float; the empty field is nil.
func parseNullableFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid float %q: %w", s, err)
	}
	return &v, nil
}

// formatNullableString renders a nullable string for CSV; nil becomes the empty field.
func formatNullableString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// parseNullableString parses a CSV field into a nullable string; the empty field is nil.
func parseNullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Float64Ptr returns a pointer to v. Convenience for building rows in tests
// and for literal expected values.
func Float64Ptr(v float64) *float64 {
	return &v
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
