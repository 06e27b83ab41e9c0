package schemas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"required": ["name", "count"],
	"properties": {
		"name": {"type": "string"},
		"count": {"type": "integer", "minimum": 0}
	}
}`

func TestValidateJSONString_Valid(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"name": "python", "count": 5}`)
	assert.NoError(t, err)
}

func TestValidateJSONString_MissingField(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"name": "python"}`)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidateJSONString_WrongType(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"name": "python", "count": "five"}`)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	assert.Greater(t, len(validationErr.Errors), 0)
	assert.Contains(t, validationErr.Error(), "count")
}

func TestValidateJSONString_BrokenSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": [`, `{"name": "python"}`)
	require.Error(t, err)

	_, ok := err.(*SchemaLoadError)
	assert.True(t, ok, "error should be SchemaLoadError type")
}

func TestStageReportSchema_IsValidJSON(t *testing.T) {
	var v map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(StageReportSchema), &v))

	_, hasType := v["type"]
	_, hasProps := v["properties"]
	assert.True(t, hasType && hasProps)
}

func TestValidateStageReport(t *testing.T) {
	valid := `{
		"stage": "skill-counts",
		"year": 2020,
		"artifact": "/out/2020_skill_counts.csv",
		"rows_in": 100,
		"rows_out": 95,
		"rows_dropped": 5,
		"drops": {"empty_skills": 5},
		"started_at": "2026-01-10T12:00:00Z",
		"duration_ms": 1200
	}`
	assert.NoError(t, ValidateStageReport(valid))

	missingStage := `{
		"artifact": "/out/2020_skill_counts.csv",
		"rows_in": 100,
		"rows_out": 95,
		"rows_dropped": 5,
		"started_at": "2026-01-10T12:00:00Z",
		"duration_ms": 1200
	}`
	err := ValidateStageReport(missingStage)
	require.Error(t, err)
	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	assert.Greater(t, len(validationErr.Errors), 0)

	unknownField := `{
		"stage": "skill-counts",
		"artifact": "/out/2020_skill_counts.csv",
		"rows_in": 100,
		"rows_out": 95,
		"rows_dropped": 5,
		"started_at": "2026-01-10T12:00:00Z",
		"duration_ms": 1200,
		"surprise": true
	}`
	assert.Error(t, ValidateStageReport(unknownField))
}
