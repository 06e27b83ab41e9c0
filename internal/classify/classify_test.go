package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/ai-exposure/internal/match"
	"github.com/jonathan/ai-exposure/internal/types"
)

func newMatcher(t *testing.T, keywords ...string) match.Matcher {
	t.Helper()
	m, err := match.NewSubstringMatcher(keywords)
	require.NoError(t, err)
	return m
}

func TestBuildText_LowercasesAndJoins(t *testing.T) {
	assert.Equal(t, "ml engineer built nlp models", BuildText("ML Engineer", "Built NLP models"))
	assert.Equal(t, "analyst ", BuildText("Analyst", ""))
}

func TestClassify_TitleHit(t *testing.T) {
	m := newMatcher(t, "machine learning")

	got := Classify(m, types.ResumeYearRow{
		PersonID:    "p1",
		Title:       "Machine Learning Engineer",
		CompanyName: "acme",
		Year:        2020,
	})

	assert.Equal(t, 1, got.AIRelated)
	require.NotNil(t, got.FirstHitSkill)
	assert.Equal(t, "machine learning", *got.FirstHitSkill)
	assert.Equal(t, "p1", got.PersonID)
	assert.Equal(t, "acme", got.CompanyName)
	assert.Equal(t, 2020, got.Year)
}

func TestClassify_DescriptionHit(t *testing.T) {
	m := newMatcher(t, "computer vision")

	got := Classify(m, types.ResumeYearRow{
		PersonID:    "p2",
		Title:       "Engineer",
		Description: "Shipped a Computer Vision product",
		Year:        2021,
	})

	assert.Equal(t, 1, got.AIRelated)
	require.NotNil(t, got.FirstHitSkill)
	assert.Equal(t, "computer vision", *got.FirstHitSkill)
}

func TestClassify_TitleHitBeatsDescriptionHit(t *testing.T) {
	m := newMatcher(t, "nlp", "python")

	got := Classify(m, types.ResumeYearRow{
		PersonID:    "p3",
		Title:       "NLP Researcher",
		Description: "python tooling",
		Year:        2019,
	})

	require.NotNil(t, got.FirstHitSkill)
	assert.Equal(t, "nlp", *got.FirstHitSkill)
}

func TestClassify_NoHit(t *testing.T) {
	m := newMatcher(t, "nlp")

	got := Classify(m, types.ResumeYearRow{
		PersonID: "p4",
		Title:    "Accountant",
		Year:     2018,
	})

	assert.Equal(t, 0, got.AIRelated)
	assert.Nil(t, got.FirstHitSkill)
}
