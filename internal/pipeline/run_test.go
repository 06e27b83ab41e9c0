package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/ai-exposure/internal/config"
	"github.com/jonathan/ai-exposure/internal/report"
	"github.com/jonathan/ai-exposure/internal/tabular"
	"github.com/jonathan/ai-exposure/internal/types"
)

// fixtureConfig lays out a two-year posting tree and a résumé file in a temp
// directory and returns a config pointing at them. The numbers asserted in
// the tests below are derived by hand from this data.
//
// Postings (skills are |-separated; "ml" and "nlp" are seed terms):
//
//	2019: j1 Acme python|ml|pandas, j2 Acme python|excel,
//	      j3 Zen excel|word, j4 Zen go|ml|python, j5 Bolt <empty>
//	2020: j6 Acme python|nlp, j7 Zen excel,
//	      j8 Bolt python|spark|ml, j9 Bolt java
//
// Résumé spells: p1 has two overlapping Acme spells (one open, current),
// p2 a closed Zen spell, p3 an unparseable start date, p4 an open
// non-current Acme spell, p5 a closed Zen spell with no AI text.
func fixtureConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()

	write := func(rel, content string) {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	write("postings/2019/postings/jobs.csv",
		"job_id,company,company_name,skills_name\n"+
			"j1,c-acme,Acme,python|ml|pandas\n"+
			"j2,c-acme,Acme,python|excel\n"+
			"j3,c-zen,Zen,excel|word\n"+
			"j4,c-zen,Zen,go|ml|python\n"+
			"j5,c-bolt,Bolt,\n")
	write("postings/2020/postings/jobs.csv",
		"job_id,company,company_name,skills_name\n"+
			"j6,c-acme,Acme,python|nlp\n"+
			"j7,c-zen,Zen,excel\n"+
			"j8,c-bolt,Bolt,python|spark|ml\n"+
			"j9,c-bolt,Bolt,java\n")
	write("resumes.csv",
		"id,title_name,company_name,description,start_date,end_date,is_current\n"+
			"p1,data scientist,Acme,built ml models,2019-03,2020-11,false\n"+
			"p1,senior data scientist,Acme,lead ml team,2020-01,,true\n"+
			"p2,analyst,Zen,excel reporting,2018-06,2019-02,false\n"+
			"p3,engineer,Bolt,backend apis,2019-13,2020-01,false\n"+
			"p4,ml engineer,Acme,python pipelines,2020-05,,false\n"+
			"p5,accountant,Zen,ledger closing,2019-01,2019-12,false\n")

	cfg := config.Defaults()
	cfg.PostingsRoot = filepath.Join(root, "postings")
	cfg.ResumePath = filepath.Join(root, "resumes.csv")
	cfg.OutDir = filepath.Join(root, "out")
	cfg.YearFrom = 2019
	cfg.YearTo = 2020
	cfg.TopK = 3
	minSupport := int64(2)
	cfg.MinSupport = &minSupport
	cfg.ReferenceYear = 2021
	cfg.Workers = 2
	cfg.MemoryLimit = "64MB"
	return &cfg
}

func TestRunPipeline_EndToEnd(t *testing.T) {
	cfg := fixtureConfig(t)
	require.NoError(t, RunPipeline(context.Background(), cfg))

	paths, err := NewPaths(cfg.OutDir, cfg.SaveAs)
	require.NoError(t, err)

	// Per-year counts ordered by co desc, cnt desc, skill asc. Seed terms
	// count like any other skill.
	counts2019, err := tabular.ReadAll[types.SkillYearStat](paths.SkillCounts(2019), types.SkillYearStatHeader)
	require.NoError(t, err)
	assert.Equal(t, []types.SkillYearStat{
		{Skill: "python", Cnt: 3, Co: 2},
		{Skill: "ml", Cnt: 2, Co: 2},
		{Skill: "go", Cnt: 1, Co: 1},
		{Skill: "pandas", Cnt: 1, Co: 1},
		{Skill: "excel", Cnt: 2, Co: 0},
		{Skill: "word", Cnt: 1, Co: 0},
	}, counts2019)

	counts2020, err := tabular.ReadAll[types.SkillYearStat](paths.SkillCounts(2020), types.SkillYearStatHeader)
	require.NoError(t, err)
	assert.Equal(t, []types.SkillYearStat{
		{Skill: "python", Cnt: 2, Co: 2},
		{Skill: "ml", Cnt: 1, Co: 1},
		{Skill: "nlp", Cnt: 1, Co: 1},
		{Skill: "spark", Cnt: 1, Co: 1},
		{Skill: "excel", Cnt: 1, Co: 0},
		{Skill: "java", Cnt: 1, Co: 0},
	}, counts2020)

	// Min support 2 keeps python (5), ml (3) and excel (3); the six
	// single-occurrence skills are filtered before ranking.
	scores, err := tabular.ReadAll[types.SkillScore](paths.SkillScores(), types.SkillScoreHeader)
	require.NoError(t, err)
	require.Len(t, scores, 3)
	assert.Equal(t, "ml", scores[0].Skill)
	assert.Equal(t, int64(3), scores[0].TotalCnt)
	assert.Equal(t, int64(3), scores[0].TotalCo)
	assert.InDelta(t, 1.0, scores[0].AIScore, 1e-9)
	assert.Equal(t, "python", scores[1].Skill)
	assert.Equal(t, int64(5), scores[1].TotalCnt)
	assert.Equal(t, int64(4), scores[1].TotalCo)
	assert.InDelta(t, 0.8, scores[1].AIScore, 1e-9)
	assert.Equal(t, "excel", scores[2].Skill)
	assert.Equal(t, int64(3), scores[2].TotalCnt)
	assert.Equal(t, int64(0), scores[2].TotalCo)
	assert.InDelta(t, 0.0, scores[2].AIScore, 1e-9)

	top, err := tabular.ReadAll[types.SkillScore](paths.TopSkills(), types.SkillScoreHeader)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "ml", top[0].Skill)

	// 2019 job scores: j1 and j4 both average (1.0+0.8)/2 over their matched
	// skills and tie on matched count, so job id breaks the tie. j3 matches
	// only excel and lands exactly on 0, which is below the 0.1 threshold.
	jobs2019, err := tabular.ReadAll[types.JobScore](paths.JobScores(2019), types.JobScoreHeader)
	require.NoError(t, err)
	require.Len(t, jobs2019, 4)
	assert.Equal(t, []string{"j1", "j4", "j2", "j3"}, jobIDs(jobs2019))
	assert.Equal(t, types.JobScore{
		JobID: "j1", Company: "c-acme", CompanyName: "Acme",
		NSkills: 3, NMatchedSkills: 2, JobAIScore: types.Float64Ptr(0.9), AIJob: 1,
	}, jobs2019[0])
	require.NotNil(t, jobs2019[2].JobAIScore)
	assert.InDelta(t, 0.4, *jobs2019[2].JobAIScore, 1e-9)
	assert.Equal(t, 1, jobs2019[2].AIJob)
	require.NotNil(t, jobs2019[3].JobAIScore)
	assert.InDelta(t, 0.0, *jobs2019[3].JobAIScore, 1e-9)
	assert.Equal(t, 0, jobs2019[3].AIJob)

	// 2020: j9 matches nothing, so its score is nil (not zero) and it sorts
	// after every scored posting.
	jobs2020, err := tabular.ReadAll[types.JobScore](paths.JobScores(2020), types.JobScoreHeader)
	require.NoError(t, err)
	require.Len(t, jobs2020, 4)
	assert.Equal(t, []string{"j8", "j6", "j7", "j9"}, jobIDs(jobs2020))
	require.NotNil(t, jobs2020[1].JobAIScore)
	assert.InDelta(t, 0.8, *jobs2020[1].JobAIScore, 1e-9)
	assert.Equal(t, 1, jobs2020[1].NMatchedSkills)
	assert.Nil(t, jobs2020[3].JobAIScore)
	assert.Equal(t, 0, jobs2020[3].NMatchedSkills)
	assert.Equal(t, 0, jobs2020[3].AIJob)

	share2019, err := tabular.ReadAll[types.CompanyShare](paths.CompanyShare(2019), types.CompanyShareHeader)
	require.NoError(t, err)
	require.Len(t, share2019, 2)
	assert.Equal(t, "Acme", share2019[0].CompanyName)
	assert.Equal(t, int64(2), share2019[0].NPostings)
	assert.Equal(t, int64(2), share2019[0].NAIJobs)
	require.NotNil(t, share2019[0].AIJobShare)
	assert.InDelta(t, 1.0, *share2019[0].AIJobShare, 1e-9)
	assert.Equal(t, "Zen", share2019[1].CompanyName)
	assert.Equal(t, int64(1), share2019[1].NAIJobs)
	require.NotNil(t, share2019[1].AIJobShare)
	assert.InDelta(t, 0.5, *share2019[1].AIJobShare, 1e-9)

	share2020, err := tabular.ReadAll[types.CompanyShare](paths.CompanyShare(2020), types.CompanyShareHeader)
	require.NoError(t, err)
	require.Len(t, share2020, 3)
	assert.Equal(t, "Acme", share2020[0].CompanyName)
	assert.Equal(t, "Bolt", share2020[1].CompanyName)
	assert.Equal(t, "Zen", share2020[2].CompanyName)
	require.NotNil(t, share2020[2].AIJobShare)
	assert.InDelta(t, 0.0, *share2020[2].AIJobShare, 1e-9)

	// Spell expansion: p1's open spell closes at the 2021 reference year via
	// the currency flag, p4's via the missing-end policy, and p3 is dropped
	// for its unparseable start date. Rows come out person, title, year.
	years, err := tabular.ReadAll[types.ResumeYearRow](paths.ResumeYears(), types.ResumeYearRowHeader)
	require.NoError(t, err)
	wantYears := []struct {
		person string
		title  string
		year   int
	}{
		{"p1", "data scientist", 2019},
		{"p1", "data scientist", 2020},
		{"p1", "senior data scientist", 2020},
		{"p1", "senior data scientist", 2021},
		{"p2", "analyst", 2018},
		{"p2", "analyst", 2019},
		{"p4", "ml engineer", 2020},
		{"p4", "ml engineer", 2021},
		{"p5", "accountant", 2019},
	}
	require.Len(t, years, len(wantYears))
	for i, want := range wantYears {
		assert.Equal(t, want.person, years[i].PersonID, "row %d", i)
		assert.Equal(t, want.title, years[i].Title, "row %d", i)
		assert.Equal(t, want.year, years[i].Year, "row %d", i)
	}

	// Classification uses the top skills as keywords, so even excel (score 0)
	// flags p2's rows. p5 has no keyword hit at all.
	flags, err := tabular.ReadAll[types.FlaggedRow](paths.ResumeFlags(), types.FlaggedRowHeader)
	require.NoError(t, err)
	require.Len(t, flags, 9)
	flagged := 0
	for _, f := range flags {
		flagged += f.AIRelated
	}
	assert.Equal(t, 8, flagged)
	require.NotNil(t, flags[0].FirstHitSkill)
	assert.Equal(t, "ml", *flags[0].FirstHitSkill)
	require.NotNil(t, flags[4].FirstHitSkill)
	assert.Equal(t, "excel", *flags[4].FirstHitSkill)
	assert.Equal(t, "p5", flags[8].PersonID)
	assert.Equal(t, 0, flags[8].AIRelated)
	assert.Nil(t, flags[8].FirstHitSkill)

	// Roll-up de-duplicates p1's two 2020 titles into one employee and keeps
	// years outside the posting range (Zen 2018, the 2021 open spells).
	measures, err := tabular.ReadAll[types.CompanyYearMeasure](paths.CompanyMeasures(), types.CompanyYearMeasureHeader)
	require.NoError(t, err)
	require.Len(t, measures, 5)
	wantMeasures := []struct {
		company   string
		year      int
		employees int64
		ai        int64
		measure   float64
	}{
		{"Acme", 2019, 1, 1, 1.0},
		{"Acme", 2020, 2, 2, 1.0},
		{"Acme", 2021, 2, 2, 1.0},
		{"Zen", 2018, 1, 1, 1.0},
		{"Zen", 2019, 2, 1, 0.5},
	}
	for i, want := range wantMeasures {
		assert.Equal(t, want.company, measures[i].CompanyName, "row %d", i)
		assert.Equal(t, want.year, measures[i].Year, "row %d", i)
		assert.Equal(t, want.employees, measures[i].Employees, "row %d", i)
		assert.Equal(t, want.ai, measures[i].AIEmployees, "row %d", i)
		require.NotNil(t, measures[i].AIMeasure, "row %d", i)
		assert.InDelta(t, want.measure, *measures[i].AIMeasure, 1e-9, "row %d", i)
	}

	// Every artifact carries a sibling stage report.
	artifacts := []string{
		paths.SkillCounts(2019), paths.SkillCounts(2020),
		paths.SkillScores(), paths.TopSkills(),
		paths.JobScores(2019), paths.JobScores(2020),
		paths.CompanyShare(2019), paths.CompanyShare(2020),
		paths.ResumeYears(), paths.ResumeFlags(), paths.CompanyMeasures(),
	}
	for _, artifact := range artifacts {
		assert.FileExists(t, report.Path(artifact), "report for %s", artifact)
	}

	counts2019Report := readReport(t, report.Path(paths.SkillCounts(2019)))
	assert.Equal(t, "skill-counts", counts2019Report.Stage)
	assert.Equal(t, 2019, counts2019Report.Year)
	assert.Equal(t, int64(5), counts2019Report.RowsIn)
	assert.Equal(t, int64(6), counts2019Report.RowsOut)
	assert.Equal(t, int64(1), counts2019Report.RowsDropped)
	assert.Equal(t, int64(1), counts2019Report.Drops["empty_skills"])

	mergeReport := readReport(t, report.Path(paths.SkillScores()))
	assert.Equal(t, "merge-skills", mergeReport.Stage)
	assert.Equal(t, 0, mergeReport.Year)
	assert.Equal(t, int64(12), mergeReport.RowsIn)
	assert.Equal(t, int64(3), mergeReport.RowsOut)
	assert.Equal(t, int64(6), mergeReport.Drops["below_min_support"])

	jobs2019Report := readReport(t, report.Path(paths.JobScores(2019)))
	assert.Equal(t, int64(5), jobs2019Report.RowsIn)
	assert.Equal(t, int64(4), jobs2019Report.RowsOut)
	assert.Equal(t, int64(1), jobs2019Report.Drops["empty_skills"])

	expandReport := readReport(t, report.Path(paths.ResumeYears()))
	assert.Equal(t, int64(6), expandReport.RowsIn)
	assert.Equal(t, int64(9), expandReport.RowsOut)
	assert.Equal(t, int64(1), expandReport.Drops["bad_start_date"])
}

// The spill path and the in-memory path must produce identical artifacts, and
// JSONL must round-trip nil scores. A 1KB memory limit forces every buffer
// and counter to scratch SQLite.
func TestRunPipeline_SpillAndJSONL(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.SaveAs = "jsonl"
	cfg.MemoryLimit = "1KB"
	require.NoError(t, RunPipeline(context.Background(), cfg))

	paths, err := NewPaths(cfg.OutDir, cfg.SaveAs)
	require.NoError(t, err)

	scores, err := tabular.ReadAll[types.SkillScore](paths.SkillScores(), types.SkillScoreHeader)
	require.NoError(t, err)
	require.Len(t, scores, 3)
	assert.Equal(t, "ml", scores[0].Skill)
	assert.Equal(t, "python", scores[1].Skill)
	assert.Equal(t, "excel", scores[2].Skill)

	jobs2020, err := tabular.ReadAll[types.JobScore](paths.JobScores(2020), types.JobScoreHeader)
	require.NoError(t, err)
	assert.Equal(t, []string{"j8", "j6", "j7", "j9"}, jobIDs(jobs2020))
	assert.Nil(t, jobs2020[3].JobAIScore)

	years, err := tabular.ReadAll[types.ResumeYearRow](paths.ResumeYears(), types.ResumeYearRowHeader)
	require.NoError(t, err)
	assert.Len(t, years, 9)

	measures, err := tabular.ReadAll[types.CompanyYearMeasure](paths.CompanyMeasures(), types.CompanyYearMeasureHeader)
	require.NoError(t, err)
	require.Len(t, measures, 5)
	assert.Equal(t, "Acme", measures[0].CompanyName)
	assert.Equal(t, 2019, measures[0].Year)
	assert.Equal(t, "Zen", measures[4].CompanyName)
	assert.Equal(t, int64(2), measures[4].Employees)
}

func TestRunPipeline_RequiresYearRange(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.YearFrom = 0
	cfg.YearTo = 0
	err := RunPipeline(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "year range is required")
}

func TestRunPipeline_RequiresResumePath(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.ResumePath = ""
	err := RunPipeline(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resume_path")
}

func jobIDs(jobs []types.JobScore) []string {
	ids := make([]string, len(jobs))
	for i, j := range jobs {
		ids[i] = j.JobID
	}
	return ids
}

func readReport(t *testing.T, path string) report.Report {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var r report.Report
	require.NoError(t, json.Unmarshal(data, &r))
	return r
}
