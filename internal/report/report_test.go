package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/ai-exposure/internal/schemas"
)

func TestPath_SwapsExtension(t *testing.T) {
	assert.Equal(t, "/out/2019_job_scores.report.json", Path("/out/2019_job_scores.csv"))
	assert.Equal(t, "/out/company_measures.report.json", Path("/out/company_measures.jsonl"))
}

func TestReport_DropAccounting(t *testing.T) {
	r := New("expand-spells", 0)
	r.In(10)
	r.Drop("bad_start_date", 2)
	r.Drop("missing_end_date", 1)
	r.Drop("bad_start_date", 1)
	r.Drop("empty", 0)
	r.Out(6)

	assert.Equal(t, int64(10), r.RowsIn)
	assert.Equal(t, int64(6), r.RowsOut)
	assert.Equal(t, int64(4), r.RowsDropped)
	assert.Equal(t, map[string]int64{"bad_start_date": 3, "missing_end_date": 1}, r.Drops)
}

func TestReport_WriteBesideArtifact(t *testing.T) {
	dir := t.TempDir()
	artifact := filepath.Join(dir, "2020_skill_counts.csv")

	r := New("skill-counts", 2020)
	r.In(100)
	r.Drop("empty_skills", 5)
	r.Out(95)
	r.Finish(artifact)
	require.NoError(t, r.Write())

	data, err := os.ReadFile(filepath.Join(dir, "2020_skill_counts.report.json"))
	require.NoError(t, err)

	var got Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "skill-counts", got.Stage)
	assert.Equal(t, 2020, got.Year)
	assert.Equal(t, artifact, got.Artifact)
	assert.Equal(t, int64(100), got.RowsIn)
	assert.Equal(t, int64(95), got.RowsOut)
	assert.Equal(t, int64(5), got.RowsDropped)
	assert.Equal(t, map[string]int64{"empty_skills": 5}, got.Drops)
}

func TestReport_WriteRequiresFinish(t *testing.T) {
	r := New("skill-counts", 2020)

	err := r.Write()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Finish")
}

func TestReport_WriteRejectsInvalidCounts(t *testing.T) {
	dir := t.TempDir()

	r := New("skill-counts", 2020)
	r.RowsIn = -1
	r.Finish(filepath.Join(dir, "bad.csv"))

	err := r.Write()
	require.Error(t, err)

	var validationErr *schemas.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
