package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_TrimsAndLowercases(t *testing.T) {
	assert.Equal(t, "machine learning", Normalize("  Machine Learning "))
	assert.Equal(t, "python", Normalize("PYTHON"))
	assert.Equal(t, "", Normalize("   "))
}

func TestSplitSkills_DefaultDelimiter(t *testing.T) {
	got := SplitSkills("Python|SQL|Machine Learning", "")
	assert.Equal(t, []string{"python", "sql", "machine learning"}, got)
}

func TestSplitSkills_CustomDelimiter(t *testing.T) {
	got := SplitSkills("python;sql", ";")
	assert.Equal(t, []string{"python", "sql"}, got)
}

func TestSplitSkills_DropsEmptyEntries(t *testing.T) {
	got := SplitSkills("python|| |sql|", "|")
	assert.Equal(t, []string{"python", "sql"}, got)
}

func TestSplitSkills_DeduplicatesPreservingOrder(t *testing.T) {
	got := SplitSkills("SQL|python|sql|Python", "|")
	assert.Equal(t, []string{"sql", "python"}, got)
}

func TestSplitSkills_EmptyInput(t *testing.T) {
	assert.Empty(t, SplitSkills("", "|"))
	assert.Empty(t, SplitSkills(" | | ", "|"))
}
