package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jonathan/ai-exposure/internal/db"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List, inspect, or delete runs recorded in the catalog",
	Long: `Browses the measure runs the pipeline recorded in PostgreSQL.

Without --show or --delete the command lists recent runs, newest first.
--show prints one run with its stage outcomes and a sample of its stored
measures; --delete removes a run and everything recorded under it.`,
	RunE: runRunsCmd,
}

var (
	runsConfigPath  string
	runsDatabaseURL string
	runsStatus      string
	runsYear        int
	runsLimit       int
	runsShow        string
	runsDelete      string
)

func init() {
	runsCmd.Flags().StringVar(&runsConfigPath, "config", "", "Path to config.json file (used for its database_url)")
	runsCmd.Flags().StringVar(&runsDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	runsCmd.Flags().StringVar(&runsStatus, "status", "", "Only list runs with this status: running, completed or failed")
	runsCmd.Flags().IntVar(&runsYear, "year", 0, "Only list runs whose year range covers this year")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs to list")
	runsCmd.Flags().StringVar(&runsShow, "show", "", "Run ID to print in detail")
	runsCmd.Flags().StringVar(&runsDelete, "delete", "", "Run ID to delete, including its stages and measures")

	rootCmd.AddCommand(runsCmd)
}

func runRunsCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	if runsShow != "" && runsDelete != "" {
		return fmt.Errorf("--show and --delete are mutually exclusive")
	}

	// Resolve the database URL: flag, then config file, then environment.
	dsn := runsDatabaseURL
	if dsn == "" && runsConfigPath != "" {
		cfg, err := loadBaseConfig(runsConfigPath, false)
		if err != nil {
			return err
		}
		dsn = cfg.DatabaseURL
	}
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		return fmt.Errorf("a database URL is required (--db-url flag, 'database_url' in config, or DATABASE_URL env var)")
	}

	database, err := db.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer database.Close()

	switch {
	case runsShow != "":
		return showRun(ctx, database, runsShow)
	case runsDelete != "":
		return removeRun(ctx, database, runsDelete)
	}
	return listRuns(ctx, database)
}

func listRuns(ctx context.Context, database *db.DB) error {
	var runs []db.MeasureRun
	var err error
	if runsStatus == "" && runsYear == 0 {
		runs, err = database.ListRuns(ctx, runsLimit)
	} else {
		runs, err = database.ListRunsFiltered(ctx, db.RunFilters{
			Status: runsStatus,
			Year:   runsYear,
			Limit:  runsLimit,
		})
	}
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Printf("Found %d run(s):\n\n", len(runs))
	for _, run := range runs {
		fmt.Printf("  %s  %d-%d  %-9s  %s  keywords: %s\n",
			run.ID, run.YearFrom, run.YearTo, run.Status,
			run.CreatedAt.Format("2006-01-02 15:04"), run.KeywordSource)
	}
	return nil
}

func showRun(ctx context.Context, database *db.DB, rawID string) error {
	runID, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid run ID %q: %w", rawID, err)
	}

	run, err := database.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run not found: %s", runID)
	}

	fmt.Printf("Run %s\n", run.ID)
	fmt.Printf("  Years:     %d-%d\n", run.YearFrom, run.YearTo)
	fmt.Printf("  Status:    %s\n", run.Status)
	fmt.Printf("  Keywords:  %s\n", run.KeywordSource)
	fmt.Printf("  Created:   %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	if run.CompletedAt != nil {
		fmt.Printf("  Completed: %s\n", run.CompletedAt.Format("2006-01-02 15:04:05"))
	}

	stages, err := database.ListStages(ctx, runID, nil)
	if err != nil {
		return err
	}
	if len(stages) > 0 {
		fmt.Printf("\nStages (%d):\n", len(stages))
		for _, stage := range stages {
			name := stage.Stage
			if stage.Year != nil {
				name = fmt.Sprintf("%s (%d)", stage.Stage, *stage.Year)
			}
			fmt.Printf("  %-24s %-9s  %d in, %d out, %d dropped, %dms\n",
				name, stage.Status, stage.RowsIn, stage.RowsOut, stage.RowsDropped, stage.DurationMs)
			if stage.ErrorMessage != nil {
				fmt.Printf("    error: %s\n", *stage.ErrorMessage)
			}
		}
	}

	total, err := database.CountCompanyMeasures(ctx, runID)
	if err != nil {
		return err
	}
	if total == 0 {
		fmt.Println("\nNo measures stored for this run.")
		return nil
	}

	const sample = 10
	measures, err := database.ListCompanyMeasures(ctx, runID, sample)
	if err != nil {
		return err
	}

	fmt.Printf("\nMeasures: %d row(s)\n", total)
	for _, m := range measures {
		if m.AIMeasure != nil {
			fmt.Printf("  %s %d: %d employees, %d AI-related (%.4f)\n",
				m.CompanyName, m.Year, m.Employees, m.AIEmployees, *m.AIMeasure)
		} else {
			fmt.Printf("  %s %d: no employees\n", m.CompanyName, m.Year)
		}
	}
	if total > int64(len(measures)) {
		fmt.Printf("  ... and %d more\n", total-int64(len(measures)))
	}
	return nil
}

func removeRun(ctx context.Context, database *db.DB, rawID string) error {
	runID, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid run ID %q: %w", rawID, err)
	}
	if err := database.DeleteRun(ctx, runID); err != nil {
		return err
	}
	fmt.Printf("Deleted run %s\n", runID)
	return nil
}
