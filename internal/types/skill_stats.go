// Package types provides type definitions for the tabular artifacts exchanged
// between pipeline stages.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strconv"
)

// SkillYearStatHeader is the column order for per-year skill count artifacts.
var SkillYearStatHeader = []string{"skill", "cnt", "co"}

// SkillYearStat holds the per-year counts for a single normalized skill.
// Cnt is the number of distinct jobs mentioning the skill; Co is the number
// of those jobs that also mention at least one AI seed term.
type SkillYearStat struct {
	Skill string `json:"skill"`
	Cnt   int64  `json:"cnt"`
	Co    int64  `json:"co"`
}

// Record returns the CSV record for the stat row.
func (s SkillYearStat) Record() []string {
	return []string{s.Skill, strconv.FormatInt(s.Cnt, 10), strconv.FormatInt(s.Co, 10)}
}

// DecodeRecord populates the stat row from a CSV record.
func (s *SkillYearStat) DecodeRecord(rec []string) error {
	if len(rec) != len(SkillYearStatHeader) {
		return fmt.Errorf("expected %d fields, got %d", len(SkillYearStatHeader), len(rec))
	}
	cnt, err := strconv.ParseInt(rec[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid cnt %q: %w", rec[1], err)
	}
	co, err := strconv.ParseInt(rec[2], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid co %q: %w", rec[2], err)
	}
	s.Skill, s.Cnt, s.Co = rec[0], cnt, co
	return nil
}

// SkillScoreHeader is the column order for the merged skill score artifact.
var SkillScoreHeader = []string{"skill", "total_cnt", "total_co", "ai_score"}

// SkillScore holds the cross-year totals and AI association score for a skill.
// AIScore is TotalCo/TotalCnt, defined as 0 when TotalCnt is 0, so it is
// always in [0, 1].
type SkillScore struct {
	Skill    string  `json:"skill"`
	TotalCnt int64   `json:"total_cnt"`
	TotalCo  int64   `json:"total_co"`
	AIScore  float64 `json:"ai_score"`
}

// Record returns the CSV record for the score row.
func (s SkillScore) Record() []string {
	return []string{
		s.Skill,
		strconv.FormatInt(s.TotalCnt, 10),
		strconv.FormatInt(s.TotalCo, 10),
		formatFloat(s.AIScore),
	}
}

// DecodeRecord populates the score row from a CSV record.
func (s *SkillScore) DecodeRecord(rec []string) error {
	if len(rec) != len(SkillScoreHeader) {
		return fmt.Errorf("expected %d fields, got %d", len(SkillScoreHeader), len(rec))
	}
	cnt, err := strconv.ParseInt(rec[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid total_cnt %q: %w", rec[1], err)
	}
	co, err := strconv.ParseInt(rec[2], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid total_co %q: %w", rec[2], err)
	}
	score, err := strconv.ParseFloat(rec[3], 64)
	if err != nil {
		return fmt.Errorf("invalid ai_score %q: %w", rec[3], err)
	}
	s.Skill, s.TotalCnt, s.TotalCo, s.AIScore = rec[0], cnt, co, score
	return nil
}
