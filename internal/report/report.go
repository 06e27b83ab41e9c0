// Package report tracks per-stage row accounting and writes the JSON report
// published beside every artifact.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/ai-exposure/internal/schemas"
)

// Report records one stage's accounting: row volumes, drops by reason and
// where the artifact went. Stages mutate it while running and publish it
// next to the finished artifact for data-quality auditing.
type Report struct {
	Stage       string           `json:"stage"`
	Year        int              `json:"year,omitempty"`
	Artifact    string           `json:"artifact"`
	RowsIn      int64            `json:"rows_in"`
	RowsOut     int64            `json:"rows_out"`
	RowsDropped int64            `json:"rows_dropped"`
	Drops       map[string]int64 `json:"drops,omitempty"`
	StartedAt   time.Time        `json:"started_at"`
	DurationMs  int64            `json:"duration_ms"`
}

// New starts a report for one stage. Year is 0 for cross-year stages.
func New(stage string, year int) *Report {
	return &Report{
		Stage:     stage,
		Year:      year,
		Drops:     make(map[string]int64),
		StartedAt: time.Now().UTC(),
	}
}

// In counts rows read from the stage's input.
func (r *Report) In(n int64) {
	r.RowsIn += n
}

// Out counts rows written to the artifact.
func (r *Report) Out(n int64) {
	r.RowsOut += n
}

// Drop counts rows excluded for a reason.
func (r *Report) Drop(reason string, n int64) {
	if n == 0 {
		return
	}
	if r.Drops == nil {
		r.Drops = make(map[string]int64)
	}
	r.Drops[reason] += n
	r.RowsDropped += n
}

// Finish stamps the artifact location and the elapsed duration.
func (r *Report) Finish(artifact string) {
	r.Artifact = artifact
	r.DurationMs = time.Since(r.StartedAt).Milliseconds()
}

// Path returns the report's location next to its artifact: the artifact path
// with the format extension swapped for ".report.json".
func Path(artifactPath string) string {
	return strings.TrimSuffix(artifactPath, filepath.Ext(artifactPath)) + ".report.json"
}

// Write validates the report against the embedded schema and writes it next
// to the artifact. A validation failure is a bug in the producing stage, not
// a data problem, so it fails the run.
func (r *Report) Write() error {
	if r.Artifact == "" {
		return fmt.Errorf("report has no artifact path, call Finish first")
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode stage report: %w", err)
	}
	if err := schemas.ValidateStageReport(string(data)); err != nil {
		return fmt.Errorf("stage report for %s is malformed: %w", r.Stage, err)
	}
	path := Path(r.Artifact)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write stage report %s: %w", path, err)
	}
	return nil
}
