package main

import (
	"fmt"
	"os"

	"github.com/jonathan/ai-exposure/internal/config"
	"github.com/jonathan/ai-exposure/internal/observability"
	"github.com/jonathan/ai-exposure/internal/pipeline"
	"github.com/jonathan/ai-exposure/internal/pipeline/steps"
	"github.com/jonathan/ai-exposure/internal/report"
)

// loadBaseConfig loads the optional JSON config file. An empty path returns
// the zero config; flags and defaults fill the rest.
func loadBaseConfig(configPath string, verbose bool) (config.Config, error) {
	var cfg config.Config
	if configPath == "" {
		return cfg, nil
	}

	loaded, err := config.LoadConfig(configPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}
	cfg = *loaded
	if verbose {
		_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", configPath)
	}
	return cfg, nil
}

// finalizeConfig fills unset fields from the built-in defaults and validates
// the merged result.
func finalizeConfig(cfg config.Config) (config.Config, error) {
	merged := cfg.MergeWithDefaults(config.Defaults())
	if err := merged.Validate(); err != nil {
		return merged, err
	}
	return merged, nil
}

// completedStages reports which stages already have their artifacts on disk.
// Per-year stages count as complete only when every year in the configured
// range is present.
func completedStages(cfg *config.Config, paths pipeline.Paths) map[string]bool {
	exists := func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}
	allYears := func(artifact func(int) string) bool {
		if cfg.YearFrom == 0 || cfg.YearTo == 0 {
			return false
		}
		for year := cfg.YearFrom; year <= cfg.YearTo; year++ {
			if !exists(artifact(year)) {
				return false
			}
		}
		return true
	}

	return map[string]bool{
		steps.SkillCounts:    allYears(paths.SkillCounts),
		steps.MergeSkills:    exists(paths.SkillScores()) && exists(paths.TopSkills()),
		steps.JobScores:      allYears(paths.JobScores),
		steps.ExpandSpells:   exists(paths.ResumeYears()),
		steps.FlagResumes:    exists(paths.ResumeFlags()),
		steps.CompanyMeasure: exists(paths.CompanyMeasures()),
	}
}

// requireStageInputs fails with a dependency error when a stage's upstream
// artifacts are missing from the output directory.
func requireStageInputs(stage string, cfg *config.Config, paths pipeline.Paths) error {
	return steps.ValidateDependencies(stage, completedStages(cfg, paths))
}

// printReports writes one summary line per artifact, plus the full stage
// report box in verbose mode.
func printReports(printer *observability.Printer, reports []*report.Report, verbose bool) {
	for _, rep := range reports {
		_, _ = fmt.Fprintf(os.Stdout, "  %s (%d rows, %d dropped)\n", rep.Artifact, rep.RowsOut, rep.RowsDropped)
		if verbose {
			printer.PrintStageReport(rep)
		}
	}
}
