package resumes

import (
	"fmt"
	"time"

	"github.com/jonathan/ai-exposure/internal/types"
)

// MissingEndPolicy resolves spells whose end date is absent or unparseable.
// Two policies exist in the wild and disagree, so the choice is explicit
// configuration rather than a silent default.
type MissingEndPolicy int

const (
	// EndAsCurrentYear treats a missing end date as still employed and closes
	// the spell at the reference year.
	EndAsCurrentYear MissingEndPolicy = iota
	// EndDrops removes spells with a missing end date unless the currency
	// flag says the person is still employed.
	EndDrops
)

// Policy names accepted in configuration.
const (
	PolicyCurrentYear = "current-year"
	PolicyDrop        = "drop"
)

// ParsePolicy maps a configuration string to a policy. Empty selects the
// default of closing open spells at the reference year.
func ParsePolicy(s string) (MissingEndPolicy, error) {
	switch s {
	case "", PolicyCurrentYear:
		return EndAsCurrentYear, nil
	case PolicyDrop:
		return EndDrops, nil
	}
	return 0, fmt.Errorf("unknown missing-end policy %q", s)
}

// Drop reasons returned by Expand, used for data-quality accounting.
const (
	DropBadStartDate = "bad_start_date"
	DropMissingEnd   = "missing_end_date"
)

// ExpandOptions configures spell expansion.
type ExpandOptions struct {
	Policy MissingEndPolicy
	// ReferenceYear stands in for "now" when closing open spells. Zero means
	// the current wall-clock year; tests and reproducible runs pin it.
	ReferenceYear int
}

// Expander emits one row per calendar year a spell covers.
type Expander struct {
	policy  MissingEndPolicy
	refYear int
}

// NewExpander builds an expander, defaulting the reference year to the
// wall clock.
func NewExpander(opts ExpandOptions) *Expander {
	ref := opts.ReferenceYear
	if ref == 0 {
		ref = time.Now().Year()
	}
	return &Expander{policy: opts.Policy, refYear: ref}
}

// Expand turns one spell into rows for every year in its inclusive range.
// A non-empty reason means the spell produced no rows and says why; the
// caller counts these rather than failing the run.
func (e *Expander) Expand(spell types.ResumeSpell) ([]types.ResumeYearRow, string) {
	startYear, err := ParseYear(spell.StartRaw)
	if err != nil {
		return nil, DropBadStartDate
	}

	endYear, ok := e.resolveEndYear(spell)
	if !ok {
		return nil, DropMissingEnd
	}
	// Inverted ranges are data errors; clamp instead of rejecting the spell.
	if endYear < startYear {
		endYear = startYear
	}

	rows := make([]types.ResumeYearRow, 0, endYear-startYear+1)
	for year := startYear; year <= endYear; year++ {
		rows = append(rows, types.ResumeYearRow{
			PersonID:    spell.PersonID,
			Title:       spell.Title,
			CompanyName: spell.CompanyName,
			Description: spell.Description,
			Year:        year,
		})
	}
	return rows, ""
}

// resolveEndYear picks the spell's final year. A parseable end date always
// wins; the currency flag closes open spells at the reference year; only
// then does the configured policy decide.
func (e *Expander) resolveEndYear(spell types.ResumeSpell) (int, bool) {
	if year, err := ParseYear(spell.EndRaw); err == nil {
		return year, true
	}
	if spell.IsCurrent != nil && *spell.IsCurrent {
		return e.refYear, true
	}
	if e.policy == EndDrops {
		return 0, false
	}
	return e.refYear, true
}
