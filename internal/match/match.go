// Package match provides keyword lookup over free text. The classifier only
// depends on the Matcher interface, so the naive scan below can be swapped
// for a multi-pattern automaton if the keyword set ever grows past the
// hundred-ish entries it holds today.
package match

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/ai-exposure/internal/skills"
)

// Hit is one keyword occurrence in a scanned text.
type Hit struct {
	Keyword string
	Pos     int
}

// Matcher finds the winning keyword occurrence in a text, if any. The winner
// is the keyword starting at the smallest index; keywords tied on position
// resolve to the lexically smallest, so identical inputs always produce the
// same hit.
type Matcher interface {
	Match(text string) (Hit, bool)
}

// SubstringMatcher scans every keyword with a plain substring search.
type SubstringMatcher struct {
	keywords []string
}

// NewSubstringMatcher normalizes, deduplicates and sorts the keyword set.
func NewSubstringMatcher(keywords []string) (*SubstringMatcher, error) {
	seen := make(map[string]struct{}, len(keywords))
	cleaned := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = skills.Normalize(kw)
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		cleaned = append(cleaned, kw)
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("keyword set is empty")
	}
	sort.Strings(cleaned)

	return &SubstringMatcher{keywords: cleaned}, nil
}

// Keywords returns the normalized keyword set in lexical order.
func (m *SubstringMatcher) Keywords() []string {
	return m.keywords
}

// Match scans the text against every keyword. The scan is case-sensitive;
// callers pass text in the same case as the keyword set. Keywords are held in
// lexical order and a candidate only replaces the current best on a strictly
// smaller position, which makes the tie-break fall out of the iteration order.
func (m *SubstringMatcher) Match(text string) (Hit, bool) {
	best := Hit{Pos: -1}
	for _, kw := range m.keywords {
		pos := strings.Index(text, kw)
		if pos < 0 {
			continue
		}
		if best.Pos < 0 || pos < best.Pos {
			best = Hit{Keyword: kw, Pos: pos}
		}
	}
	return best, best.Pos >= 0
}
