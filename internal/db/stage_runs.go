package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Stage Run Methods
// -----------------------------------------------------------------------------

// RecordStage inserts a finished stage record for a measure run
func (db *DB) RecordStage(ctx context.Context, runID uuid.UUID, input *StageRunInput) (*StageRun, error) {
	var year any
	if input.Year != 0 {
		year = input.Year
	}
	var artifact any
	if input.Artifact != "" {
		artifact = input.Artifact
	}
	var errorMessage any
	if input.ErrorMessage != "" {
		errorMessage = input.ErrorMessage
	}

	var run StageRun
	err := db.pool.QueryRow(ctx,
		`INSERT INTO stage_runs (run_id, stage, year, status, rows_in, rows_out,
		                         rows_dropped, duration_ms, artifact, error_message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, run_id, stage, year, status, rows_in, rows_out,
		           rows_dropped, duration_ms, artifact, error_message, created_at`,
		runID, input.Stage, year, input.Status, input.RowsIn, input.RowsOut,
		input.RowsDropped, input.DurationMs, artifact, errorMessage,
	).Scan(&run.ID, &run.RunID, &run.Stage, &run.Year, &run.Status, &run.RowsIn,
		&run.RowsOut, &run.RowsDropped, &run.DurationMs, &run.Artifact,
		&run.ErrorMessage, &run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record stage: %w", err)
	}

	return &run, nil
}

// ListStages retrieves all stage records for a run, optionally filtered by status
func (db *DB) ListStages(ctx context.Context, runID uuid.UUID, status *string) ([]StageRun, error) {
	query := `SELECT id, run_id, stage, year, status, rows_in, rows_out,
	                 rows_dropped, duration_ms, artifact, error_message, created_at
	          FROM stage_runs
	          WHERE run_id = $1`
	args := []any{runID}

	if status != nil {
		query += " AND status = $2"
		args = append(args, *status)
	}

	query += " ORDER BY created_at ASC"

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}
	defer rows.Close()

	var stages []StageRun
	for rows.Next() {
		var run StageRun
		if err := rows.Scan(&run.ID, &run.RunID, &run.Stage, &run.Year, &run.Status,
			&run.RowsIn, &run.RowsOut, &run.RowsDropped, &run.DurationMs,
			&run.Artifact, &run.ErrorMessage, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stage: %w", err)
		}
		stages = append(stages, run)
	}
	return stages, nil
}
