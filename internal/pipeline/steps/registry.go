// Package steps provides stage definitions and dependency validation for the
// measurement pipeline. Dependencies are expressed between stages; whether a
// dependency is satisfied is decided by the caller from the artifacts that
// exist on disk, since file artifacts are the canonical exchange medium.
package steps

import (
	"fmt"
)

// Stage name constants, matching the CLI subcommands.
const (
	SkillCounts    = "skill-counts"
	MergeSkills    = "merge-skills"
	JobScores      = "job-scores"
	ExpandSpells   = "expand-spells"
	FlagResumes    = "flag-resumes"
	CompanyMeasure = "company-measure"
)

// StageDefinition defines metadata for a pipeline stage
type StageDefinition struct {
	Name         string
	PerYear      bool     // stage produces one artifact per year
	Dependencies []string // stages whose artifacts must exist
	Optional     []string // stages whose artifacts are used when present
}

// StageRegistry holds all stage definitions
var StageRegistry = map[string]StageDefinition{
	SkillCounts: {
		Name:         SkillCounts,
		PerYear:      true,
		Dependencies: []string{},
		Optional:     []string{},
	},
	MergeSkills: {
		Name:         MergeSkills,
		Dependencies: []string{SkillCounts},
		Optional:     []string{},
	},
	JobScores: {
		Name:         JobScores,
		PerYear:      true,
		Dependencies: []string{MergeSkills},
		Optional:     []string{},
	},
	ExpandSpells: {
		Name:         ExpandSpells,
		Dependencies: []string{},
		Optional:     []string{},
	},
	FlagResumes: {
		Name:         FlagResumes,
		Dependencies: []string{ExpandSpells},
		// The default keyword source is the top-skills artifact; a
		// configured keyword file removes the merge-skills dependency.
		Optional: []string{MergeSkills},
	},
	CompanyMeasure: {
		Name:         CompanyMeasure,
		Dependencies: []string{FlagResumes},
		Optional:     []string{},
	},
}

// executionOrder is the barrier order used by the run command. Postings and
// résumé branches are interleaved so the cross-branch dependency of
// flag-resumes on merge-skills is always satisfied.
var executionOrder = []string{
	SkillCounts,
	MergeSkills,
	JobScores,
	ExpandSpells,
	FlagResumes,
	CompanyMeasure,
}

// ExecutionOrder returns the stages in the order the run command executes
// them. Every stage appears after all of its dependencies.
func ExecutionOrder() []string {
	order := make([]string, len(executionOrder))
	copy(order, executionOrder)
	return order
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Stage               string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("stage %s is missing dependencies: %v (run those stages first)", e.Stage, e.MissingDependencies)
}

// ValidateDependencies checks that every required dependency of a stage is in
// the completed set. Completion is decided by the caller, normally from the
// presence of the dependency's artifacts.
func ValidateDependencies(stageName string, completed map[string]bool) error {
	def, ok := StageRegistry[stageName]
	if !ok {
		return fmt.Errorf("unknown stage: %s", stageName)
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if !completed[dep] {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &DependencyError{
			Stage:               stageName,
			MissingDependencies: missing,
		}
	}
	return nil
}

// AvailableStages returns stages whose dependencies are all completed and
// which are not completed themselves.
func AvailableStages(completed map[string]bool) []string {
	var available []string
	for _, name := range executionOrder {
		if completed[name] {
			continue
		}
		if err := ValidateDependencies(name, completed); err != nil {
			continue
		}
		available = append(available, name)
	}
	return available
}

// BlockedStages returns stages that cannot run yet because a dependency is
// not completed.
func BlockedStages(completed map[string]bool) []string {
	var blocked []string
	for _, name := range executionOrder {
		if completed[name] {
			continue
		}
		if err := ValidateDependencies(name, completed); err != nil {
			blocked = append(blocked, name)
		}
	}
	return blocked
}
