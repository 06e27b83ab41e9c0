// Package audit re-reads finished artifacts and checks the invariants the
// pipeline promises: score bounds, count arithmetic, null handling and the
// documented ordering contracts. It never mutates anything; violations are
// collected as findings for the caller to surface.
package audit

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/ai-exposure/internal/tabular"
	"github.com/jonathan/ai-exposure/internal/types"
)

// scoreTolerance absorbs float round-trips through the artifact encoding.
const scoreTolerance = 1e-9

// Finding is one invariant violation discovered in an artifact.
type Finding struct {
	Artifact string
	Check    string
	Detail   string
}

// Auditor accumulates findings across artifact checks.
type Auditor struct {
	threshold float64
	findings  []Finding
}

// New creates an auditor. threshold is the job-flagging bound the job score
// artifacts were produced with.
func New(threshold float64) *Auditor {
	return &Auditor{threshold: threshold}
}

// Findings returns every violation recorded so far.
func (a *Auditor) Findings() []Finding {
	return a.findings
}

func (a *Auditor) flag(artifact, check, format string, args ...any) {
	a.findings = append(a.findings, Finding{
		Artifact: artifact,
		Check:    check,
		Detail:   fmt.Sprintf(format, args...),
	})
}

// CheckSkillCounts verifies a per-year skill count artifact: co never
// exceeds cnt and rows follow the co desc, cnt desc, skill asc contract.
func (a *Auditor) CheckSkillCounts(path string) (int64, error) {
	var rows int64
	var prev types.SkillYearStat
	err := tabular.EachRow[types.SkillYearStat](path, types.SkillYearStatHeader, func(row types.SkillYearStat) error {
		rows++
		if row.Cnt < 0 || row.Co < 0 {
			a.flag(path, "count_bounds", "skill %q has negative counts cnt=%d co=%d", row.Skill, row.Cnt, row.Co)
		}
		if row.Co > row.Cnt {
			a.flag(path, "co_bound", "skill %q has co=%d > cnt=%d", row.Skill, row.Co, row.Cnt)
		}
		if rows > 1 && cmpSkillCounts(prev, row) > 0 {
			a.flag(path, "ordering", "skill %q sorts before its predecessor %q", row.Skill, prev.Skill)
		}
		prev = row
		return nil
	})
	return rows, err
}

func cmpSkillCounts(a, b types.SkillYearStat) int {
	if a.Co != b.Co {
		if a.Co > b.Co {
			return -1
		}
		return 1
	}
	if a.Cnt != b.Cnt {
		if a.Cnt > b.Cnt {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Skill, b.Skill)
}

// CheckSkillScores verifies a merged score artifact: scores stay in [0,1],
// agree with their count ratio and follow the ranking contract.
func (a *Auditor) CheckSkillScores(path string) (int64, error) {
	var rows int64
	var prev types.SkillScore
	err := tabular.EachRow[types.SkillScore](path, types.SkillScoreHeader, func(row types.SkillScore) error {
		rows++
		if row.AIScore < 0 || row.AIScore > 1 {
			a.flag(path, "score_bounds", "skill %q has ai_score=%g outside [0,1]", row.Skill, row.AIScore)
		}
		if row.TotalCo > row.TotalCnt {
			a.flag(path, "co_bound", "skill %q has total_co=%d > total_cnt=%d", row.Skill, row.TotalCo, row.TotalCnt)
		}
		if row.TotalCnt == 0 {
			if row.AIScore != 0 {
				a.flag(path, "score_arithmetic", "skill %q has ai_score=%g with total_cnt=0", row.Skill, row.AIScore)
			}
		} else if math.Abs(row.AIScore-float64(row.TotalCo)/float64(row.TotalCnt)) > scoreTolerance {
			a.flag(path, "score_arithmetic", "skill %q has ai_score=%g, want %d/%d", row.Skill, row.AIScore, row.TotalCo, row.TotalCnt)
		}
		if rows > 1 && cmpSkillScores(prev, row) > 0 {
			a.flag(path, "ordering", "skill %q sorts before its predecessor %q", row.Skill, prev.Skill)
		}
		prev = row
		return nil
	})
	return rows, err
}

func cmpSkillScores(a, b types.SkillScore) int {
	if a.AIScore != b.AIScore {
		if a.AIScore > b.AIScore {
			return -1
		}
		return 1
	}
	if a.TotalCnt != b.TotalCnt {
		if a.TotalCnt > b.TotalCnt {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Skill, b.Skill)
}

// CheckJobScores verifies a per-year job score artifact: matched counts never
// exceed totals, flags agree with the threshold and nil scores, and rows
// follow the score desc nulls last, matched desc, job id asc contract.
func (a *Auditor) CheckJobScores(path string) (int64, error) {
	var rows int64
	var prev types.JobScore
	err := tabular.EachRow[types.JobScore](path, types.JobScoreHeader, func(row types.JobScore) error {
		rows++
		if row.NMatchedSkills > row.NSkills {
			a.flag(path, "matched_bound", "job %q has n_matched_skills=%d > n_skills=%d", row.JobID, row.NMatchedSkills, row.NSkills)
		}
		if row.AIJob != 0 && row.AIJob != 1 {
			a.flag(path, "flag_domain", "job %q has ai_job=%d", row.JobID, row.AIJob)
		}
		switch {
		case row.JobAIScore == nil:
			if row.NMatchedSkills != 0 {
				a.flag(path, "null_contract", "job %q has a null score but %d matched skills", row.JobID, row.NMatchedSkills)
			}
			if row.AIJob != 0 {
				a.flag(path, "null_contract", "job %q has a null score but ai_job=%d", row.JobID, row.AIJob)
			}
		default:
			if *row.JobAIScore < 0 || *row.JobAIScore > 1 {
				a.flag(path, "score_bounds", "job %q has job_ai_score=%g outside [0,1]", row.JobID, *row.JobAIScore)
			}
			want := 0
			if *row.JobAIScore > a.threshold {
				want = 1
			}
			if row.AIJob != want {
				a.flag(path, "threshold", "job %q has ai_job=%d for score %g with threshold %g", row.JobID, row.AIJob, *row.JobAIScore, a.threshold)
			}
		}
		if rows > 1 && cmpJobScores(prev, row) > 0 {
			a.flag(path, "ordering", "job %q sorts before its predecessor %q", row.JobID, prev.JobID)
		}
		prev = row
		return nil
	})
	return rows, err
}

func cmpJobScores(a, b types.JobScore) int {
	if c := cmpScoreDescNilsLast(a.JobAIScore, b.JobAIScore); c != 0 {
		return c
	}
	if a.NMatchedSkills != b.NMatchedSkills {
		if a.NMatchedSkills > b.NMatchedSkills {
			return -1
		}
		return 1
	}
	return strings.Compare(a.JobID, b.JobID)
}

func cmpScoreDescNilsLast(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a > *b:
		return -1
	case *a < *b:
		return 1
	}
	return 0
}

// CheckCompanyShare verifies a per-year company share artifact: shares agree
// with their counts and rows follow the share desc nulls last, postings desc,
// name asc contract.
func (a *Auditor) CheckCompanyShare(path string) (int64, error) {
	var rows int64
	var prev types.CompanyShare
	err := tabular.EachRow[types.CompanyShare](path, types.CompanyShareHeader, func(row types.CompanyShare) error {
		rows++
		if row.NAIJobs > row.NPostings {
			a.flag(path, "count_bounds", "company %q has n_ai_jobs=%d > n_postings=%d", row.CompanyName, row.NAIJobs, row.NPostings)
		}
		switch {
		case row.NPostings == 0:
			if row.AIJobShare != nil {
				a.flag(path, "null_contract", "company %q has a share with zero postings", row.CompanyName)
			}
		case row.AIJobShare == nil:
			a.flag(path, "null_contract", "company %q has %d postings but a null share", row.CompanyName, row.NPostings)
		case math.Abs(*row.AIJobShare-float64(row.NAIJobs)/float64(row.NPostings)) > scoreTolerance:
			a.flag(path, "share_arithmetic", "company %q has ai_job_share=%g, want %d/%d", row.CompanyName, *row.AIJobShare, row.NAIJobs, row.NPostings)
		}
		if rows > 1 && cmpCompanyShares(prev, row) > 0 {
			a.flag(path, "ordering", "company %q sorts before its predecessor %q", row.CompanyName, prev.CompanyName)
		}
		prev = row
		return nil
	})
	return rows, err
}

func cmpCompanyShares(a, b types.CompanyShare) int {
	if c := cmpScoreDescNilsLast(a.AIJobShare, b.AIJobShare); c != 0 {
		return c
	}
	if a.NPostings != b.NPostings {
		if a.NPostings > b.NPostings {
			return -1
		}
		return 1
	}
	return strings.Compare(a.CompanyName, b.CompanyName)
}

// CheckResumeYears verifies the expansion artifact: years are plausible and
// rows follow the person asc, title asc, year asc contract. Year gaps inside
// a person-title block are legitimate (a person can return to the same title
// after time away), so only the ordering is enforced.
func (a *Auditor) CheckResumeYears(path string) (int64, error) {
	var rows int64
	var prev types.ResumeYearRow
	err := tabular.EachRow[types.ResumeYearRow](path, types.ResumeYearRowHeader, func(row types.ResumeYearRow) error {
		rows++
		if row.Year < 1900 || row.Year > 2100 {
			a.flag(path, "year_sanity", "person %q has year %d", row.PersonID, row.Year)
		}
		if rows > 1 && cmpResumeYears(prev, row) > 0 {
			a.flag(path, "ordering", "person %q year %d sorts before its predecessor", row.PersonID, row.Year)
		}
		prev = row
		return nil
	})
	return rows, err
}

func cmpResumeYears(a, b types.ResumeYearRow) int {
	if c := strings.Compare(a.PersonID, b.PersonID); c != 0 {
		return c
	}
	if c := strings.Compare(a.Title, b.Title); c != 0 {
		return c
	}
	if a.Year != b.Year {
		if a.Year < b.Year {
			return -1
		}
		return 1
	}
	return 0
}

// CheckResumeFlags verifies the classified artifact: flags stay in {0,1} and
// a flag of 1 carries a hit keyword while 0 carries none.
func (a *Auditor) CheckResumeFlags(path string) (int64, error) {
	var rows int64
	var prev types.FlaggedRow
	err := tabular.EachRow[types.FlaggedRow](path, types.FlaggedRowHeader, func(row types.FlaggedRow) error {
		rows++
		if row.AIRelated != 0 && row.AIRelated != 1 {
			a.flag(path, "flag_domain", "person %q year %d has ai_related=%d", row.PersonID, row.Year, row.AIRelated)
		}
		if (row.AIRelated == 1) != (row.FirstHitSkill != nil) {
			a.flag(path, "hit_contract", "person %q year %d has ai_related=%d with first_hit_skill=%v", row.PersonID, row.Year, row.AIRelated, row.FirstHitSkill)
		}
		// Classification is row-for-row over the expansion artifact, so the
		// person column stays non-decreasing.
		if rows > 1 && strings.Compare(prev.PersonID, row.PersonID) > 0 {
			a.flag(path, "ordering", "person %q sorts before its predecessor %q", row.PersonID, prev.PersonID)
		}
		prev = row
		return nil
	})
	return rows, err
}

// CheckCompanyMeasures verifies the final measure artifact: employee counts
// are consistent, measures agree with their ratio, and rows follow the
// company asc, year asc contract.
func (a *Auditor) CheckCompanyMeasures(path string) (int64, error) {
	var rows int64
	var prev types.CompanyYearMeasure
	err := tabular.EachRow[types.CompanyYearMeasure](path, types.CompanyYearMeasureHeader, func(row types.CompanyYearMeasure) error {
		rows++
		if row.AIEmployees > row.Employees {
			a.flag(path, "count_bounds", "company %q year %d has n_ai_employees=%d > n_employees=%d", row.CompanyName, row.Year, row.AIEmployees, row.Employees)
		}
		switch {
		case row.Employees == 0:
			if row.AIMeasure != nil {
				a.flag(path, "null_contract", "company %q year %d has a measure with zero employees", row.CompanyName, row.Year)
			}
		case row.AIMeasure == nil:
			a.flag(path, "null_contract", "company %q year %d has %d employees but a null measure", row.CompanyName, row.Year, row.Employees)
		case math.Abs(*row.AIMeasure-float64(row.AIEmployees)/float64(row.Employees)) > scoreTolerance:
			a.flag(path, "measure_arithmetic", "company %q year %d has ai_measure=%g, want %d/%d", row.CompanyName, row.Year, *row.AIMeasure, row.AIEmployees, row.Employees)
		}
		if rows > 1 && cmpCompanyMeasures(prev, row) > 0 {
			a.flag(path, "ordering", "company %q year %d sorts before its predecessor", row.CompanyName, row.Year)
		}
		prev = row
		return nil
	})
	return rows, err
}

func cmpCompanyMeasures(a, b types.CompanyYearMeasure) int {
	if c := strings.Compare(a.CompanyName, b.CompanyName); c != 0 {
		return c
	}
	if a.Year != b.Year {
		if a.Year < b.Year {
			return -1
		}
		return 1
	}
	return 0
}
