package steps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageRegistry(t *testing.T) {
	// Verify all expected stages are in the registry
	expectedStages := []string{
		SkillCounts, MergeSkills, JobScores,
		ExpandSpells, FlagResumes, CompanyMeasure,
	}

	for _, stageName := range expectedStages {
		def, ok := StageRegistry[stageName]
		require.True(t, ok, "Stage %s should be in registry", stageName)
		assert.Equal(t, stageName, def.Name)
	}

	assert.Len(t, StageRegistry, len(expectedStages))
}

func TestStageRegistry_DependenciesExist(t *testing.T) {
	// Every dependency must itself be a registered stage
	for name, def := range StageRegistry {
		for _, dep := range def.Dependencies {
			_, ok := StageRegistry[dep]
			assert.True(t, ok, "Stage %s has unknown dependency %s", name, dep)
		}
		for _, dep := range def.Optional {
			_, ok := StageRegistry[dep]
			assert.True(t, ok, "Stage %s has unknown optional dependency %s", name, dep)
		}
	}
}

func TestExecutionOrder_RespectsDependencies(t *testing.T) {
	order := ExecutionOrder()
	assert.Len(t, order, len(StageRegistry))

	seen := map[string]bool{}
	for _, name := range order {
		def, ok := StageRegistry[name]
		require.True(t, ok)
		for _, dep := range def.Dependencies {
			assert.True(t, seen[dep], "Stage %s runs before its dependency %s", name, dep)
		}
		seen[name] = true
	}
}

func TestExecutionOrder_ReturnsCopy(t *testing.T) {
	order := ExecutionOrder()
	order[0] = "tampered"
	assert.Equal(t, SkillCounts, ExecutionOrder()[0])
}

func TestValidateDependencies(t *testing.T) {
	// No dependencies: always valid
	err := ValidateDependencies(SkillCounts, map[string]bool{})
	assert.NoError(t, err)

	// Unmet dependency
	err = ValidateDependencies(MergeSkills, map[string]bool{})
	require.Error(t, err)
	var depErr *DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, MergeSkills, depErr.Stage)
	assert.Contains(t, depErr.MissingDependencies, SkillCounts)

	// Met dependency
	err = ValidateDependencies(MergeSkills, map[string]bool{SkillCounts: true})
	assert.NoError(t, err)

	// Unknown stage
	err = ValidateDependencies("no-such-stage", map[string]bool{})
	assert.Error(t, err)
	assert.NotErrorAs(t, err, &depErr)
}

func TestValidateDependencies_OptionalNotRequired(t *testing.T) {
	// flag-resumes needs expand-spells but merge-skills is only optional
	err := ValidateDependencies(FlagResumes, map[string]bool{ExpandSpells: true})
	assert.NoError(t, err)
}

func TestAvailableStages(t *testing.T) {
	// Fresh run: only the two root stages can start
	available := AvailableStages(map[string]bool{})
	assert.ElementsMatch(t, []string{SkillCounts, ExpandSpells}, available)

	// After the postings branch roots complete, their dependents open up
	completed := map[string]bool{SkillCounts: true, ExpandSpells: true}
	available = AvailableStages(completed)
	assert.ElementsMatch(t, []string{MergeSkills, FlagResumes}, available)

	// Everything done: nothing left
	for name := range StageRegistry {
		completed[name] = true
	}
	assert.Empty(t, AvailableStages(completed))
}

func TestBlockedStages(t *testing.T) {
	blocked := BlockedStages(map[string]bool{})
	assert.ElementsMatch(t, []string{MergeSkills, JobScores, FlagResumes, CompanyMeasure}, blocked)

	completed := map[string]bool{
		SkillCounts:  true,
		MergeSkills:  true,
		ExpandSpells: true,
		FlagResumes:  true,
	}
	blocked = BlockedStages(completed)
	assert.Empty(t, blocked)
}
