// Package skills implements skill normalization and the AI co-occurrence
// scoring that turns yearly posting batches into per-skill AI association
// scores.
package skills

import "strings"

// Normalize lowercases and trims a single skill token.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SplitSkills splits a raw delimiter-separated skill field into normalized
// tokens, dropping empties and de-duplicating while preserving first-seen
// order. Splitting an already-normalized field returns it unchanged.
func SplitSkills(raw, delim string) []string {
	if delim == "" {
		delim = "|"
	}
	parts := strings.Split(raw, delim)

	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		skill := Normalize(part)
		if skill == "" {
			continue
		}
		if _, ok := seen[skill]; ok {
			continue
		}
		seen[skill] = struct{}{}
		out = append(out, skill)
	}
	return out
}
