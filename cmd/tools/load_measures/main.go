// Command load_measures bulk-loads a company measures artifact into the
// Postgres catalog, so finished measures can be queried alongside the run
// history without re-running the pipeline.
//
// Usage:
//
//	go run cmd/tools/load_measures/main.go <company_measures artifact> [run-id]
//
// Requires DATABASE_URL environment variable to be set. Without a run-id a
// new catalog run covering the artifact's year range is created.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jonathan/ai-exposure/internal/db"
	"github.com/jonathan/ai-exposure/internal/tabular"
	"github.com/jonathan/ai-exposure/internal/types"
)

func main() {
	if len(os.Args) < 2 || len(os.Args) > 3 {
		fmt.Fprintln(os.Stderr, "Usage: load_measures <company_measures artifact> [run-id]")
		os.Exit(1)
	}
	artifactPath := os.Args[1]

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "ERROR: DATABASE_URL environment variable not set")
		os.Exit(1)
	}

	ctx := context.Background()

	database, err := db.Connect(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to apply catalog schema: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Company Measure Loader ===")
	fmt.Println()

	measures, err := tabular.ReadAll[types.CompanyYearMeasure](artifactPath, types.CompanyYearMeasureHeader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to read %s: %v\n", artifactPath, err)
		os.Exit(1)
	}

	if len(measures) == 0 {
		fmt.Println("No measures found in the artifact.")
		fmt.Println("This is expected if the pipeline processed no résumé rows.")
		return
	}

	yearFrom, yearTo := measures[0].Year, measures[0].Year
	for _, m := range measures {
		if m.Year < yearFrom {
			yearFrom = m.Year
		}
		if m.Year > yearTo {
			yearTo = m.Year
		}
	}
	fmt.Printf("Found %d measures covering %d-%d in %s\n\n", len(measures), yearFrom, yearTo, artifactPath)

	var runID uuid.UUID
	createdRun := false
	if len(os.Args) == 3 {
		runID, err = uuid.Parse(os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Invalid run-id %q: %v\n", os.Args[2], err)
			os.Exit(1)
		}
		run, err := database.GetRun(ctx, runID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Failed to look up run %s: %v\n", runID, err)
			os.Exit(1)
		}
		if run == nil {
			fmt.Fprintf(os.Stderr, "ERROR: Run %s not found in the catalog\n", runID)
			os.Exit(1)
		}
		fmt.Printf("  • Attaching to existing run %s (%d-%d, %s)\n", run.ID, run.YearFrom, run.YearTo, run.Status)
	} else {
		runID, err = database.CreateRun(ctx, yearFrom, yearTo, artifactPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Failed to create catalog run: %v\n", err)
			os.Exit(1)
		}
		createdRun = true
		fmt.Printf("  ✓ Created run %s\n", runID)
	}

	inserted, err := database.InsertCompanyMeasures(ctx, runID, measures)
	if err != nil {
		if createdRun {
			_ = database.CompleteRun(ctx, runID, db.RunStatusFailed)
		}
		fmt.Fprintf(os.Stderr, "ERROR: Failed to insert measures: %v\n", err)
		os.Exit(1)
	}

	if createdRun {
		if err := database.CompleteRun(ctx, runID, db.RunStatusCompleted); err != nil {
			fmt.Fprintf(os.Stderr, "WARNING: Failed to mark run completed: %v\n", err)
		}
	}

	fmt.Println()
	fmt.Println("=== Load Summary ===")
	fmt.Printf("  Inserted: %d\n", inserted)
	fmt.Printf("  Run ID: %s\n", runID)
}
