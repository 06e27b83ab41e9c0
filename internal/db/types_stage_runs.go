package db

import (
	"time"

	"github.com/google/uuid"
)

// StageStatus constants
const (
	StageStatusCompleted = "completed"
	StageStatusFailed    = "failed"
)

// StageRun represents a single stage execution recorded for a measure run
type StageRun struct {
	ID           uuid.UUID `json:"id"`
	RunID        uuid.UUID `json:"run_id"`
	Stage        string    `json:"stage"`
	Year         *int      `json:"year,omitempty"`
	Status       string    `json:"status"`
	RowsIn       int64     `json:"rows_in"`
	RowsOut      int64     `json:"rows_out"`
	RowsDropped  int64     `json:"rows_dropped"`
	DurationMs   int64     `json:"duration_ms"`
	Artifact     *string   `json:"artifact,omitempty"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// StageRunInput represents input for recording a finished stage
type StageRunInput struct {
	Stage        string
	Year         int // 0 for stages that span all years
	Status       string
	RowsIn       int64
	RowsOut      int64
	RowsDropped  int64
	DurationMs   int64
	Artifact     string
	ErrorMessage string
}
