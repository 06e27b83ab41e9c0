package db

import (
	"time"

	"github.com/google/uuid"
)

// MeasureRun represents one pipeline invocation recorded in the catalog
type MeasureRun struct {
	ID            uuid.UUID  `json:"id"`
	YearFrom      int        `json:"year_from"`
	YearTo        int        `json:"year_to"`
	KeywordSource string     `json:"keyword_source"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// Run status constants
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// RunFilters defines filtering options for listing measure runs
type RunFilters struct {
	Status string // filter by run status (empty = all)
	Year   int    // only runs whose year range covers this year (0 = all)
	Limit  int    // maximum number of results (0 = no limit)
}
