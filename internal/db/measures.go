package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/ai-exposure/internal/types"
)

// -----------------------------------------------------------------------------
// Company Measure Methods
// -----------------------------------------------------------------------------

// InsertCompanyMeasures bulk-loads final company-year measures for a run
// using the COPY protocol. Returns the number of rows written.
func (db *DB) InsertCompanyMeasures(ctx context.Context, runID uuid.UUID, measures []types.CompanyYearMeasure) (int64, error) {
	if len(measures) == 0 {
		return 0, nil
	}

	columns := []string{"run_id", "company_name", "year", "n_employees", "n_ai_employees", "ai_measure"}
	source := pgx.CopyFromSlice(len(measures), func(i int) ([]any, error) {
		m := measures[i]
		var aiMeasure any
		if m.AIMeasure != nil {
			aiMeasure = *m.AIMeasure
		}
		return []any{runID, m.CompanyName, m.Year, m.Employees, m.AIEmployees, aiMeasure}, nil
	})

	count, err := db.pool.CopyFrom(ctx, pgx.Identifier{"company_measures"}, columns, source)
	if err != nil {
		return 0, fmt.Errorf("failed to copy company measures: %w", err)
	}
	return count, nil
}

// ListCompanyMeasures retrieves the measures stored for a run, ordered the
// same way as the file artifact (company name, then year).
func (db *DB) ListCompanyMeasures(ctx context.Context, runID uuid.UUID, limit int) ([]types.CompanyYearMeasure, error) {
	query := `SELECT company_name, year, n_employees, n_ai_employees, ai_measure
	          FROM company_measures
	          WHERE run_id = $1
	          ORDER BY company_name ASC, year ASC`
	args := []any{runID}

	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list company measures: %w", err)
	}
	defer rows.Close()

	var measures []types.CompanyYearMeasure
	for rows.Next() {
		var m types.CompanyYearMeasure
		if err := rows.Scan(&m.CompanyName, &m.Year, &m.Employees, &m.AIEmployees, &m.AIMeasure); err != nil {
			return nil, fmt.Errorf("failed to scan company measure: %w", err)
		}
		measures = append(measures, m)
	}
	return measures, nil
}

// CountCompanyMeasures returns the number of measure rows stored for a run
func (db *DB) CountCompanyMeasures(ctx context.Context, runID uuid.UUID) (int64, error) {
	var count int64
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM company_measures WHERE run_id = $1`,
		runID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count company measures: %w", err)
	}
	return count, nil
}
