// Package types provides type definitions for the tabular artifacts exchanged
// between pipeline stages.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strconv"
)

// ResumeSpell is one employment spell as read from the résumé input file.
// Date fields are kept raw; parsing and year resolution happen during
// expansion. IsCurrent is nil when the input has no currency column.
type ResumeSpell struct {
	PersonID    string `json:"person_id"`
	Title       string `json:"title"`
	CompanyName string `json:"company_name"`
	Description string `json:"description"`
	StartRaw    string `json:"start_raw"`
	EndRaw      string `json:"end_raw"`
	IsCurrent   *bool  `json:"is_current,omitempty"`
}

// ResumeYearRowHeader is the column order for the expanded spell artifact.
var ResumeYearRowHeader = []string{"person_id", "title", "company_name", "description", "year"}

// ResumeYearRow is one (person, year) row produced by spell expansion.
// A person can legitimately have several rows for the same year when spells
// overlap; de-duplication happens in the company roll-up, not here.
type ResumeYearRow struct {
	PersonID    string `json:"person_id"`
	Title       string `json:"title"`
	CompanyName string `json:"company_name"`
	Description string `json:"description"`
	Year        int    `json:"year"`
}

// Record returns the CSV record for the expanded row.
func (r ResumeYearRow) Record() []string {
	return []string{r.PersonID, r.Title, r.CompanyName, r.Description, strconv.Itoa(r.Year)}
}

// DecodeRecord populates the expanded row from a CSV record.
func (r *ResumeYearRow) DecodeRecord(rec []string) error {
	if len(rec) != len(ResumeYearRowHeader) {
		return fmt.Errorf("expected %d fields, got %d", len(ResumeYearRowHeader), len(rec))
	}
	year, err := strconv.Atoi(rec[4])
	if err != nil {
		return fmt.Errorf("invalid year %q: %w", rec[4], err)
	}
	r.PersonID, r.Title, r.CompanyName, r.Description, r.Year = rec[0], rec[1], rec[2], rec[3], year
	return nil
}

// FlaggedRowHeader is the column order for the classified résumé row artifact.
var FlaggedRowHeader = []string{"person_id", "company_name", "year", "ai_related", "first_hit_skill"}

// FlaggedRow is one classified (person, year) row. AIRelated is 1 when the
// row's text contained at least one keyword; FirstHitSkill is the keyword
// found at the earliest position, nil when there was no hit.
type FlaggedRow struct {
	PersonID      string  `json:"person_id"`
	CompanyName   string  `json:"company_name"`
	Year          int     `json:"year"`
	AIRelated     int     `json:"ai_related"`
	FirstHitSkill *string `json:"first_hit_skill"`
}

// Record returns the CSV record for the flagged row.
func (f FlaggedRow) Record() []string {
	return []string{
		f.PersonID,
		f.CompanyName,
		strconv.Itoa(f.Year),
		strconv.Itoa(f.AIRelated),
		formatNullableString(f.FirstHitSkill),
	}
}

// DecodeRecord populates the flagged row from a CSV record.
func (f *FlaggedRow) DecodeRecord(rec []string) error {
	if len(rec) != len(FlaggedRowHeader) {
		return fmt.Errorf("expected %d fields, got %d", len(FlaggedRowHeader), len(rec))
	}
	year, err := strconv.Atoi(rec[2])
	if err != nil {
		return fmt.Errorf("invalid year %q: %w", rec[2], err)
	}
	flag, err := strconv.Atoi(rec[3])
	if err != nil {
		return fmt.Errorf("invalid ai_related %q: %w", rec[3], err)
	}
	f.PersonID, f.CompanyName, f.Year, f.AIRelated = rec[0], rec[1], year, flag
	f.FirstHitSkill = parseNullableString(rec[4])
	return nil
}
