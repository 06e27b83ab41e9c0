// Package db provides PostgreSQL catalog access for measure runs.
//
// The catalog is optional: the pipeline works entirely on file artifacts
// and only records runs, stage outcomes and final measures here when a
// database URL is configured.
package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// CreateRun creates a new measure run record and returns its ID
func (db *DB) CreateRun(ctx context.Context, yearFrom, yearTo int, keywordSource string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO measure_runs (year_from, year_to, keyword_source, status)
		 VALUES ($1, $2, $3, 'running')
		 RETURNING id`,
		yearFrom, yearTo, keywordSource,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a measure run as completed or failed
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE measure_runs SET status = $1, completed_at = NOW() WHERE id = $2`,
		status, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// GetRun retrieves a measure run by ID. Returns nil if not found.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*MeasureRun, error) {
	var run MeasureRun
	err := db.pool.QueryRow(ctx,
		`SELECT id, year_from, year_to, keyword_source, status, created_at, completed_at
		 FROM measure_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.YearFrom, &run.YearTo, &run.KeywordSource, &run.Status, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns retrieves recent measure runs
func (db *DB) ListRuns(ctx context.Context, limit int) ([]MeasureRun, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, year_from, year_to, keyword_source, status, created_at, completed_at
		 FROM measure_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []MeasureRun
	for rows.Next() {
		var run MeasureRun
		if err := rows.Scan(&run.ID, &run.YearFrom, &run.YearTo, &run.KeywordSource, &run.Status, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// ListRunsFiltered retrieves measure runs matching the given filters
func (db *DB) ListRunsFiltered(ctx context.Context, filters RunFilters) ([]MeasureRun, error) {
	query := `SELECT id, year_from, year_to, keyword_source, status, created_at, completed_at
		 FROM measure_runs WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filters.Status)
		argNum++
	}
	if filters.Year != 0 {
		query += fmt.Sprintf(" AND year_from <= $%d AND year_to >= $%d", argNum, argNum)
		args = append(args, filters.Year)
		argNum++
	}

	query += " ORDER BY created_at DESC"
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []MeasureRun
	for rows.Next() {
		var run MeasureRun
		if err := rows.Scan(&run.ID, &run.YearFrom, &run.YearTo, &run.KeywordSource, &run.Status, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// DeleteRun removes a measure run and its stage and measure rows
func (db *DB) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM measure_runs WHERE id = $1`,
		runID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}
