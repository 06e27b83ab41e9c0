// Package types provides type definitions for the tabular artifacts exchanged
// between pipeline stages.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strconv"
)

// Posting is one job posting row as read from the yearly input files.
// SkillsRaw is the delimiter-separated skill field before normalization.
type Posting struct {
	JobID       string `json:"job_id"`
	Company     string `json:"company"`
	CompanyName string `json:"company_name"`
	SkillsRaw   string `json:"skills_raw"`
}

// JobScoreHeader is the column order for the per-year job score artifact.
var JobScoreHeader = []string{"job_id", "company", "company_name", "n_skills", "n_matched_skills", "job_ai_score", "ai_job"}

// JobScore holds the AI score derived for a single job posting.
// JobAIScore is the mean score over the posting's matched skills; it is nil
// when none of the skills appear in the score table, which is distinct from
// a score of zero. AIJob is 1 only when the score is non-nil and above the
// configured threshold.
type JobScore struct {
	JobID          string   `json:"job_id"`
	Company        string   `json:"company"`
	CompanyName    string   `json:"company_name"`
	NSkills        int      `json:"n_skills"`
	NMatchedSkills int      `json:"n_matched_skills"`
	JobAIScore     *float64 `json:"job_ai_score"`
	AIJob          int      `json:"ai_job"`
}

// Record returns the CSV record for the job score row.
func (j JobScore) Record() []string {
	return []string{
		j.JobID,
		j.Company,
		j.CompanyName,
		strconv.Itoa(j.NSkills),
		strconv.Itoa(j.NMatchedSkills),
		formatNullableFloat(j.JobAIScore),
		strconv.Itoa(j.AIJob),
	}
}

// DecodeRecord populates the job score row from a CSV record.
func (j *JobScore) DecodeRecord(rec []string) error {
	if len(rec) != len(JobScoreHeader) {
		return fmt.Errorf("expected %d fields, got %d", len(JobScoreHeader), len(rec))
	}
	nSkills, err := strconv.Atoi(rec[3])
	if err != nil {
		return fmt.Errorf("invalid n_skills %q: %w", rec[3], err)
	}
	nMatched, err := strconv.Atoi(rec[4])
	if err != nil {
		return fmt.Errorf("invalid n_matched_skills %q: %w", rec[4], err)
	}
	score, err := parseNullableFloat(rec[5])
	if err != nil {
		return fmt.Errorf("invalid job_ai_score: %w", err)
	}
	aiJob, err := strconv.Atoi(rec[6])
	if err != nil {
		return fmt.Errorf("invalid ai_job %q: %w", rec[6], err)
	}
	j.JobID, j.Company, j.CompanyName = rec[0], rec[1], rec[2]
	j.NSkills, j.NMatchedSkills, j.JobAIScore, j.AIJob = nSkills, nMatched, score, aiJob
	return nil
}

// CompanyShareHeader is the column order for the per-year company share artifact.
var CompanyShareHeader = []string{"company_name", "n_postings", "n_ai_jobs", "ai_job_share"}

// CompanyShare holds a company's share of AI-flagged postings within one year.
type CompanyShare struct {
	CompanyName string   `json:"company_name"`
	NPostings   int64    `json:"n_postings"`
	NAIJobs     int64    `json:"n_ai_jobs"`
	AIJobShare  *float64 `json:"ai_job_share"`
}

// Record returns the CSV record for the company share row.
func (c CompanyShare) Record() []string {
	return []string{
		c.CompanyName,
		strconv.FormatInt(c.NPostings, 10),
		strconv.FormatInt(c.NAIJobs, 10),
		formatNullableFloat(c.AIJobShare),
	}
}

// DecodeRecord populates the company share row from a CSV record.
func (c *CompanyShare) DecodeRecord(rec []string) error {
	if len(rec) != len(CompanyShareHeader) {
		return fmt.Errorf("expected %d fields, got %d", len(CompanyShareHeader), len(rec))
	}
	n, err := strconv.ParseInt(rec[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid n_postings %q: %w", rec[1], err)
	}
	nAI, err := strconv.ParseInt(rec[2], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid n_ai_jobs %q: %w", rec[2], err)
	}
	share, err := parseNullableFloat(rec[3])
	if err != nil {
		return fmt.Errorf("invalid ai_job_share: %w", err)
	}
	c.CompanyName, c.NPostings, c.NAIJobs, c.AIJobShare = rec[0], n, nAI, share
	return nil
}
