package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/ai-exposure/internal/tabular"
)

// Stage names as they appear in banners, reports and the run catalog.
const (
	StageSkillCounts    = "skill-counts"
	StageMergeSkills    = "merge-skills"
	StageJobScores      = "job-scores"
	StageExpandSpells   = "expand-spells"
	StageFlagResumes    = "flag-resumes"
	StageCompanyMeasure = "company-measure"
)

// Drop reasons used by stage reports. The expansion-specific reasons live in
// internal/resumes next to the code that decides them.
const (
	DropEmptySkills     = "empty_skills"
	DropMalformedRow    = "malformed_row"
	DropBelowMinSupport = "below_min_support"
)

// Paths resolves artifact locations under the output directory. All stages
// and the audit command go through it so the naming scheme lives in one
// place.
type Paths struct {
	OutDir string
	Format tabular.Format
}

// NewPaths validates the output format and returns the path resolver.
func NewPaths(outDir, saveAs string) (Paths, error) {
	format, err := tabular.ParseFormat(saveAs)
	if err != nil {
		return Paths{}, err
	}
	if outDir == "" {
		return Paths{}, fmt.Errorf("output directory is empty")
	}
	return Paths{OutDir: outDir, Format: format}, nil
}

// EnsureOutDir creates the output directory if needed.
func (p Paths) EnsureOutDir() error {
	if err := os.MkdirAll(p.OutDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", p.OutDir, err)
	}
	return nil
}

func (p Paths) yearly(year int, name string) string {
	return filepath.Join(p.OutDir, fmt.Sprintf("%d_%s.%s", year, name, p.Format.Ext()))
}

func (p Paths) global(name string) string {
	return filepath.Join(p.OutDir, fmt.Sprintf("%s.%s", name, p.Format.Ext()))
}

// SkillCounts is the per-year skill co-occurrence count artifact.
func (p Paths) SkillCounts(year int) string { return p.yearly(year, "skill_counts") }

// SkillScores is the merged, ranked skill score artifact.
func (p Paths) SkillScores() string { return p.global("skill_scores") }

// TopSkills is the top-K prefix of the skill score ranking.
func (p Paths) TopSkills() string { return p.global("top_skills") }

// JobScores is the per-year job score artifact.
func (p Paths) JobScores(year int) string { return p.yearly(year, "job_scores") }

// CompanyShare is the per-year posting-based company share artifact.
func (p Paths) CompanyShare(year int) string { return p.yearly(year, "company_share") }

// ResumeYears is the expanded employment spell artifact.
func (p Paths) ResumeYears() string { return p.global("resume_years") }

// ResumeFlags is the classified résumé row artifact.
func (p Paths) ResumeFlags() string { return p.global("resume_flags") }

// CompanyMeasures is the final person-based company measure artifact.
func (p Paths) CompanyMeasures() string { return p.global("company_measures") }
