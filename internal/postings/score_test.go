package postings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/ai-exposure/internal/types"
)

func scoringTable() *ScoreTable {
	return NewScoreTable([]types.SkillScore{
		{Skill: "python", TotalCnt: 100, TotalCo: 40, AIScore: 0.4},
		{Skill: "excel", TotalCnt: 50, TotalCo: 0, AIScore: 0.0},
		{Skill: "ml", TotalCnt: 80, TotalCo: 72, AIScore: 0.9},
	})
}

func TestScoreTable_Lookup(t *testing.T) {
	table := scoringTable()

	score, ok := table.Lookup("python")
	assert.True(t, ok)
	assert.Equal(t, 0.4, score)

	_, ok = table.Lookup("cobol")
	assert.False(t, ok)

	assert.Equal(t, 3, table.Len())
}

func TestScoreJob_MeanOverMatchedSkills(t *testing.T) {
	scorer := NewScorer(scoringTable(), "|", 0.1)

	js, ok := scorer.ScoreJob(types.Posting{
		JobID:       "j1",
		Company:     "c1",
		CompanyName: "Acme",
		SkillsRaw:   "python|excel",
	})
	require.True(t, ok)

	assert.Equal(t, 2, js.NSkills)
	assert.Equal(t, 2, js.NMatchedSkills)
	require.NotNil(t, js.JobAIScore)
	assert.InDelta(t, 0.2, *js.JobAIScore, 1e-12)
	assert.Equal(t, 1, js.AIJob)
	assert.Equal(t, "j1", js.JobID)
	assert.Equal(t, "Acme", js.CompanyName)
}

func TestScoreJob_UnmatchedSkillsIgnoredNotZero(t *testing.T) {
	scorer := NewScorer(scoringTable(), "|", 0.1)

	// cobol is unknown; the mean runs over python alone, not {0.4, 0}.
	js, ok := scorer.ScoreJob(types.Posting{JobID: "j2", SkillsRaw: "python|cobol"})
	require.True(t, ok)

	assert.Equal(t, 2, js.NSkills)
	assert.Equal(t, 1, js.NMatchedSkills)
	require.NotNil(t, js.JobAIScore)
	assert.Equal(t, 0.4, *js.JobAIScore)
	assert.Equal(t, 1, js.AIJob)
}

func TestScoreJob_NoMatchedSkillsYieldsNilScore(t *testing.T) {
	scorer := NewScorer(scoringTable(), "|", 0.1)

	js, ok := scorer.ScoreJob(types.Posting{JobID: "j3", SkillsRaw: "cobol|fortran"})
	require.True(t, ok)

	assert.Equal(t, 2, js.NSkills)
	assert.Equal(t, 0, js.NMatchedSkills)
	assert.Nil(t, js.JobAIScore)
	assert.Equal(t, 0, js.AIJob)
}

func TestScoreJob_ThresholdIsExclusive(t *testing.T) {
	table := NewScoreTable([]types.SkillScore{{Skill: "python", AIScore: 0.1}})
	scorer := NewScorer(table, "|", 0.1)

	js, ok := scorer.ScoreJob(types.Posting{JobID: "j4", SkillsRaw: "python"})
	require.True(t, ok)

	require.NotNil(t, js.JobAIScore)
	assert.Equal(t, 0.1, *js.JobAIScore)
	assert.Equal(t, 0, js.AIJob)
}

func TestScoreJob_DeduplicatesSkills(t *testing.T) {
	scorer := NewScorer(scoringTable(), "|", 0.1)

	js, ok := scorer.ScoreJob(types.Posting{JobID: "j5", SkillsRaw: "python|Python|PYTHON"})
	require.True(t, ok)

	assert.Equal(t, 1, js.NSkills)
	assert.Equal(t, 1, js.NMatchedSkills)
	require.NotNil(t, js.JobAIScore)
	assert.Equal(t, 0.4, *js.JobAIScore)
}

func TestScoreJob_EmptySkillField(t *testing.T) {
	scorer := NewScorer(scoringTable(), "|", 0.1)

	_, ok := scorer.ScoreJob(types.Posting{JobID: "j6", SkillsRaw: " | "})
	assert.False(t, ok)

	_, ok = scorer.ScoreJob(types.Posting{JobID: "j7"})
	assert.False(t, ok)
}

func TestScoreJob_MatchedNeverExceedsTotal(t *testing.T) {
	scorer := NewScorer(scoringTable(), "|", 0.1)

	for _, raw := range []string{"python", "python|cobol", "python|excel|ml|cobol", "cobol"} {
		js, ok := scorer.ScoreJob(types.Posting{JobID: "j", SkillsRaw: raw})
		require.True(t, ok)
		assert.LessOrEqual(t, js.NMatchedSkills, js.NSkills)
	}
}
