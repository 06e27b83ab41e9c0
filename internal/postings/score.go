// Package postings derives per-job AI exposure from the merged skill score
// table.
package postings

import (
	"github.com/jonathan/ai-exposure/internal/skills"
	"github.com/jonathan/ai-exposure/internal/types"
)

// ScoreTable indexes merged skill scores for lookup by normalized skill.
type ScoreTable struct {
	scores map[string]float64
}

// NewScoreTable builds the lookup index. Later duplicates win, which cannot
// happen with a well-formed merged table.
func NewScoreTable(rows []types.SkillScore) *ScoreTable {
	scores := make(map[string]float64, len(rows))
	for _, row := range rows {
		scores[skills.Normalize(row.Skill)] = row.AIScore
	}
	return &ScoreTable{scores: scores}
}

// Lookup returns a skill's score and whether the table contains it.
func (t *ScoreTable) Lookup(skill string) (float64, bool) {
	score, ok := t.scores[skill]
	return score, ok
}

// Len returns the number of indexed skills.
func (t *ScoreTable) Len() int {
	return len(t.scores)
}

// Scorer computes per-job scores against one score table.
type Scorer struct {
	table     *ScoreTable
	delimiter string
	threshold float64
}

// NewScorer builds a job scorer. threshold is the exclusive lower bound a
// job's mean score must clear to be flagged.
func NewScorer(table *ScoreTable, delimiter string, threshold float64) *Scorer {
	return &Scorer{table: table, delimiter: delimiter, threshold: threshold}
}

// ScoreJob scores one posting. The job score is the mean over the skills the
// table knows; unmatched skills are ignored rather than counted as zero, and
// a job with no matched skills gets a nil score. Returns false when the
// posting has no usable skills at all.
func (s *Scorer) ScoreJob(p types.Posting) (types.JobScore, bool) {
	set := skills.SplitSkills(p.SkillsRaw, s.delimiter)
	if len(set) == 0 {
		return types.JobScore{}, false
	}

	js := types.JobScore{
		JobID:       p.JobID,
		Company:     p.Company,
		CompanyName: p.CompanyName,
		NSkills:     len(set),
	}

	var sum float64
	for _, skill := range set {
		score, ok := s.table.Lookup(skill)
		if !ok {
			continue
		}
		js.NMatchedSkills++
		sum += score
	}

	if js.NMatchedSkills > 0 {
		js.JobAIScore = types.Float64Ptr(sum / float64(js.NMatchedSkills))
		// A nil score never clears the threshold; the comparison only runs
		// for matched jobs.
		if *js.JobAIScore > s.threshold {
			js.AIJob = 1
		}
	}
	return js, true
}
