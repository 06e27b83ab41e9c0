package skills

import "fmt"

// DefaultAITerms returns the built-in seed vocabulary. A job posting counts
// as AI-related when its skill set contains at least one of these.
func DefaultAITerms() []string {
	return []string{
		"ai",
		"artificial intelligence",
		"ml",
		"machine learning",
		"nlp",
		"natural language processing",
		"cv",
		"computer vision",
	}
}

// TermSet is a normalized set of seed terms.
type TermSet struct {
	terms map[string]struct{}
}

// NewTermSet builds a term set from raw terms, normalizing and de-duplicating
// them. An empty resulting set is an error: scoring against no terms would
// silently produce all-zero scores.
func NewTermSet(terms []string) (*TermSet, error) {
	set := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		normalized := Normalize(term)
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("seed term set is empty")
	}
	return &TermSet{terms: set}, nil
}

// Contains reports whether the normalized skill is a seed term.
func (t *TermSet) Contains(skill string) bool {
	_, ok := t.terms[skill]
	return ok
}

// ContainsAny reports whether any of the normalized skills is a seed term.
func (t *TermSet) ContainsAny(skills []string) bool {
	for _, skill := range skills {
		if t.Contains(skill) {
			return true
		}
	}
	return false
}

// Len returns the number of distinct terms.
func (t *TermSet) Len() int {
	return len(t.terms)
}
