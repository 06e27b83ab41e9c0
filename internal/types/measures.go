// Package types provides type definitions for the tabular artifacts exchanged
// between pipeline stages.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strconv"
)

// CompanyYearMeasureHeader is the column order for the final measure artifact.
var CompanyYearMeasureHeader = []string{"company_name", "year", "n_employees", "n_ai_employees", "ai_measure"}

// CompanyYearMeasure is the person-based AI exposure measure for one company
// and year. Employees counts distinct people after de-duplication across
// titles; AIMeasure is AIEmployees/Employees, nil when Employees is 0.
type CompanyYearMeasure struct {
	CompanyName string   `json:"company_name"`
	Year        int      `json:"year"`
	Employees   int64    `json:"n_employees"`
	AIEmployees int64    `json:"n_ai_employees"`
	AIMeasure   *float64 `json:"ai_measure"`
}

// Record returns the CSV record for the measure row.
func (m CompanyYearMeasure) Record() []string {
	return []string{
		m.CompanyName,
		strconv.Itoa(m.Year),
		strconv.FormatInt(m.Employees, 10),
		strconv.FormatInt(m.AIEmployees, 10),
		formatNullableFloat(m.AIMeasure),
	}
}

// DecodeRecord populates the measure row from a CSV record.
func (m *CompanyYearMeasure) DecodeRecord(rec []string) error {
	if len(rec) != len(CompanyYearMeasureHeader) {
		return fmt.Errorf("expected %d fields, got %d", len(CompanyYearMeasureHeader), len(rec))
	}
	year, err := strconv.Atoi(rec[1])
	if err != nil {
		return fmt.Errorf("invalid year %q: %w", rec[1], err)
	}
	employees, err := strconv.ParseInt(rec[2], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid n_employees %q: %w", rec[2], err)
	}
	aiEmployees, err := strconv.ParseInt(rec[3], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid n_ai_employees %q: %w", rec[3], err)
	}
	measure, err := parseNullableFloat(rec[4])
	if err != nil {
		return fmt.Errorf("invalid ai_measure: %w", err)
	}
	m.CompanyName, m.Year, m.Employees, m.AIEmployees, m.AIMeasure = rec[0], year, employees, aiEmployees, measure
	return nil
}
