package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/ai-exposure/internal/audit"
	"github.com/jonathan/ai-exposure/internal/report"
	"github.com/jonathan/ai-exposure/internal/types"
)

func TestPrintTopSkills(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	rows := []types.SkillScore{
		{Skill: "ml", TotalCnt: 80, TotalCo: 72, AIScore: 0.9},
		{Skill: "python", TotalCnt: 100, TotalCo: 40, AIScore: 0.4},
		{Skill: "a", AIScore: 0.3},
		{Skill: "b", AIScore: 0.2},
		{Skill: "c", AIScore: 0.2},
		{Skill: "d", AIScore: 0.1},
	}

	p.PrintTopSkills(rows)
	output := buf.String()

	assert.Contains(t, output, "TOP AI-ASSOCIATED SKILLS")
	assert.Contains(t, output, "#1  ml")
	assert.Contains(t, output, "0.9000")
	assert.Contains(t, output, "... and 1 more skills")
	assert.NotContains(t, output, "#6")
}

func TestPrintTopSkills_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintTopSkills(nil)

	assert.Empty(t, buf.String())
}

func TestPrintJobScores(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	rows := []types.JobScore{
		{JobID: "j1", CompanyName: "Acme", NSkills: 2, NMatchedSkills: 2, JobAIScore: types.Float64Ptr(0.2), AIJob: 1},
		{JobID: "j2", CompanyName: "Zen", NSkills: 1},
	}

	p.PrintJobScores(2020, rows)
	output := buf.String()

	assert.Contains(t, output, "JOB SCORES 2020")
	assert.Contains(t, output, "Postings scored: 2")
	assert.Contains(t, output, "Flagged as AI jobs: 1")
	assert.Contains(t, output, "j1 (Acme)")
	assert.Contains(t, output, "no matched skills")
}

func TestPrintCompanyMeasures(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	rows := []types.CompanyYearMeasure{
		{CompanyName: "acme", Year: 2020, Employees: 3, AIEmployees: 2, AIMeasure: types.Float64Ptr(0.6667)},
	}

	p.PrintCompanyMeasures(rows)
	output := buf.String()

	assert.Contains(t, output, "COMPANY AI MEASURES")
	assert.Contains(t, output, "acme 2020")
	assert.Contains(t, output, "2 of 3 employees")
}

func TestPrintStageReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	r := report.New("expand-spells", 0)
	r.In(10)
	r.Drop("bad_start_date", 2)
	r.Out(8)
	r.Finish("/out/resume_years.csv")

	p.PrintStageReport(r)
	output := buf.String()

	assert.Contains(t, output, "STAGE REPORT")
	assert.Contains(t, output, "expand-spells")
	assert.Contains(t, output, "10 in, 8 out, 2 dropped")
	assert.Contains(t, output, "bad_start_date: 2")
}

func TestPrintStageReport_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintStageReport(nil)

	assert.Empty(t, buf.String())
}

func TestPrintAuditFindings_NoViolations(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAuditFindings(nil)

	assert.Contains(t, buf.String(), "NO VIOLATIONS FOUND")
}

func TestPrintAuditFindings_WithViolations(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	findings := []audit.Finding{
		{Artifact: "skill_scores.csv", Check: "score_bounds", Detail: "skill \"weird\" has ai_score=1.2 outside [0,1]"},
		{Artifact: "company_measures.csv", Check: "ordering", Detail: "company \"acme\" year 2020 sorts before its predecessor"},
	}

	p.PrintAuditFindings(findings)
	output := buf.String()

	assert.Contains(t, output, "ARTIFACT VIOLATIONS")
	assert.Contains(t, output, "Found 2 violations")
	assert.Contains(t, output, "score_bounds")
	assert.Contains(t, output, "ordering")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("x", 200))
	output := buf.String()

	assert.Contains(t, output, "...")
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
}
