// Package tabular reads and writes the flat files exchanged between pipeline
// stages: CSV or JSONL artifacts owned by this pipeline, plus the foreign
// CSV inputs it consumes.
package tabular

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
)

// Format selects the artifact encoding.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
)

// ParseFormat maps a configuration string to a format. Empty selects CSV.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", string(FormatCSV):
		return FormatCSV, nil
	case string(FormatJSONL):
		return FormatJSONL, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Ext returns the filename extension for the format, without the dot.
func (f Format) Ext() string {
	return string(f)
}

// Row is an artifact row that can render itself as a CSV record. Every row
// type also carries JSON tags, which the JSONL encoding uses directly.
type Row interface {
	Record() []string
}

// Writer writes one artifact file. CSV output starts with the header row;
// JSONL output is one JSON object per line with nil fields as null.
type Writer struct {
	f      *os.File
	format Format
	csv    *csv.Writer
	enc    *json.Encoder
	rows   int64
}

// NewWriter creates the artifact file, truncating any previous run's output.
func NewWriter(path string, format Format, header []string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact %s: %w", path, err)
	}

	w := &Writer{f: f, format: format}
	switch format {
	case FormatCSV:
		w.csv = csv.NewWriter(f)
		if err := w.csv.Write(header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header to %s: %w", path, err)
		}
	case FormatJSONL:
		w.enc = json.NewEncoder(f)
	default:
		f.Close()
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	return w, nil
}

// Write appends one row.
func (w *Writer) Write(row Row) error {
	var err error
	switch w.format {
	case FormatCSV:
		err = w.csv.Write(row.Record())
	case FormatJSONL:
		err = w.enc.Encode(row)
	}
	if err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	w.rows++
	return nil
}

// Rows returns the number of rows written so far, excluding the header.
func (w *Writer) Rows() int64 {
	return w.rows
}

// Close flushes and closes the artifact file.
func (w *Writer) Close() error {
	if w.csv != nil {
		w.csv.Flush()
		if err := w.csv.Error(); err != nil {
			w.f.Close()
			return fmt.Errorf("failed to flush artifact: %w", err)
		}
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("failed to close artifact: %w", err)
	}
	return nil
}
