// Package pipeline provides the high-level orchestration for the exposure
// measurement process: six barrier stages, each materializing its artifact
// before the next starts, with optional run tracking in the Postgres catalog.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/jonathan/ai-exposure/internal/config"
	"github.com/jonathan/ai-exposure/internal/db"
	"github.com/jonathan/ai-exposure/internal/engine"
	"github.com/jonathan/ai-exposure/internal/observability"
	"github.com/jonathan/ai-exposure/internal/report"
	"github.com/jonathan/ai-exposure/internal/tabular"
	"github.com/jonathan/ai-exposure/internal/types"
)

// stageFunc is one barrier stage of the measurement pipeline.
type stageFunc func(ctx context.Context, cfg *config.Config, sess *engine.Session, paths Paths) ([]*report.Report, error)

// RunPipeline orchestrates the full measurement pipeline
func RunPipeline(ctx context.Context, cfg *config.Config) error {

	// Initialize observability printer for verbose output
	printer := observability.NewPrinter(os.Stdout)

	paths, sess, err := Setup(cfg)
	if err != nil {
		return err
	}

	// Initialize database connection if configured
	var database *db.DB
	var runID uuid.UUID
	if cfg.DatabaseURL != "" {
		database, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: Failed to connect to database: %v\n", err)
			fmt.Printf("Continuing without run tracking...\n")
			database = nil
		} else {
			defer database.Close()
			if cfg.Verbose {
				fmt.Printf("[VERBOSE] Connected to database\n")
			}
			if err := database.EnsureSchema(ctx); err != nil {
				fmt.Printf("Warning: Failed to prepare catalog schema: %v\n", err)
				database = nil
			}
		}
	}

	if database != nil {
		keywordSource := cfg.KeywordPath
		if keywordSource == "" {
			keywordSource = paths.TopSkills()
		}
		runID, err = database.CreateRun(ctx, cfg.YearFrom, cfg.YearTo, keywordSource)
		if err != nil {
			fmt.Printf("Warning: Failed to create database run: %v\n", err)
		} else if cfg.Verbose {
			fmt.Printf("[VERBOSE] Created database run: %s\n", runID)
		}
	}

	stages := []struct {
		name   string
		banner string
		run    stageFunc
	}{
		{StageSkillCounts, "Counting skill/AI co-occurrence per year", RunSkillCounts},
		{StageMergeSkills, "Merging yearly counts into skill scores", RunMergeSkills},
		{StageJobScores, "Scoring job postings and company shares", RunJobScores},
		{StageExpandSpells, "Expanding employment spells into person-years", RunExpandSpells},
		{StageFlagResumes, "Flagging AI-related person-years", RunFlagResumes},
		{StageCompanyMeasure, "Rolling up company-year measures", RunCompanyMeasure},
	}

	for i, stage := range stages {
		fmt.Printf("Step %d/%d: %s...\n", i+1, len(stages), stage.banner)

		reports, err := stage.run(ctx, cfg, sess, paths)
		if err != nil {
			recordFailure(ctx, database, runID, stage.name, err)
			return fmt.Errorf("%s failed: %w", stage.name, err)
		}

		for _, rep := range reports {
			if cfg.Verbose {
				printer.PrintStageReport(rep)
			}
			recordStage(ctx, database, runID, rep)
		}
	}

	if cfg.Verbose {
		printTopSkills(printer, paths)
		printCompanyMeasures(printer, paths)
	}

	if database != nil && runID != uuid.Nil {
		storeMeasures(ctx, cfg, database, runID, paths)
		_ = database.CompleteRun(ctx, runID, db.RunStatusCompleted)
	}

	fmt.Printf("Done! Artifacts written to %s\n", paths.OutDir)
	return nil
}

// recordStage stores a completed stage report in the catalog. Catalog
// failures are warnings; the file artifacts remain canonical.
func recordStage(ctx context.Context, database *db.DB, runID uuid.UUID, rep *report.Report) {
	if database == nil || runID == uuid.Nil {
		return
	}
	_, err := database.RecordStage(ctx, runID, &db.StageRunInput{
		Stage:       rep.Stage,
		Year:        rep.Year,
		Status:      db.StageStatusCompleted,
		RowsIn:      rep.RowsIn,
		RowsOut:     rep.RowsOut,
		RowsDropped: rep.RowsDropped,
		DurationMs:  rep.DurationMs,
		Artifact:    rep.Artifact,
	})
	if err != nil {
		fmt.Printf("Warning: Failed to record stage %s: %v\n", rep.Stage, err)
	}
}

// recordFailure marks the failed stage and the whole run in the catalog.
func recordFailure(ctx context.Context, database *db.DB, runID uuid.UUID, stage string, stageErr error) {
	if database == nil || runID == uuid.Nil {
		return
	}
	_, _ = database.RecordStage(ctx, runID, &db.StageRunInput{
		Stage:        stage,
		Status:       db.StageStatusFailed,
		ErrorMessage: stageErr.Error(),
	})
	_ = database.CompleteRun(ctx, runID, db.RunStatusFailed)
}

// storeMeasures bulk-loads the final measure artifact into the catalog.
func storeMeasures(ctx context.Context, cfg *config.Config, database *db.DB, runID uuid.UUID, paths Paths) {
	measures, err := tabular.ReadAll[types.CompanyYearMeasure](paths.CompanyMeasures(), types.CompanyYearMeasureHeader)
	if err != nil {
		fmt.Printf("Warning: Failed to read measures for catalog: %v\n", err)
		return
	}
	n, err := database.InsertCompanyMeasures(ctx, runID, measures)
	if err != nil {
		fmt.Printf("Warning: Failed to store measures in catalog: %v\n", err)
		return
	}
	if cfg.Verbose {
		fmt.Printf("[VERBOSE] Stored %d company measures in catalog\n", n)
	}
}

func printTopSkills(printer *observability.Printer, paths Paths) {
	rows, err := tabular.ReadAll[types.SkillScore](paths.TopSkills(), types.SkillScoreHeader)
	if err != nil {
		return
	}
	printer.PrintTopSkills(rows)
}

func printCompanyMeasures(printer *observability.Printer, paths Paths) {
	rows, err := tabular.ReadAll[types.CompanyYearMeasure](paths.CompanyMeasures(), types.CompanyYearMeasureHeader)
	if err != nil {
		return
	}
	printer.PrintCompanyMeasures(rows)
}
