package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// Source reads a foreign CSV input by named columns. Inputs come from
// outside the pipeline, so rows that fail to parse or disagree with the
// header's width are counted and skipped rather than failing the run.
type Source struct {
	path    string
	f       *os.File
	r       *csv.Reader
	idx     map[string]int
	width   int
	dropped int64
}

// OpenSource opens the input and checks that every required column exists in
// its header.
func OpenSource(path string, required []string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input %s: %w", path, err)
	}

	r := csv.NewReader(f)
	// Width is checked per row below so bad rows drop instead of aborting.
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		f.Close()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("input %s is empty, want header row", path)
		}
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[col] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			f.Close()
			return nil, fmt.Errorf("input %s is missing required column %q", path, col)
		}
	}

	return &Source{path: path, f: f, r: r, idx: idx, width: len(header)}, nil
}

// HasColumn reports whether the input carries a column at all. Callers use it
// to tell "empty value" apart from "no such column", which matters for the
// résumé currency flag.
func (s *Source) HasColumn(col string) bool {
	_, ok := s.idx[col]
	return ok
}

// SourceRow gives field access by column header.
type SourceRow struct {
	rec []string
	idx map[string]int
}

// Field returns the row's value for a column, empty when the input has no
// such column.
func (r SourceRow) Field(col string) string {
	i, ok := r.idx[col]
	if !ok || i >= len(r.rec) {
		return ""
	}
	return r.rec[i]
}

// Each streams the input's data rows.
func (s *Source) Each(fn func(SourceRow) error) error {
	for {
		rec, err := s.r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			s.dropped++
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", s.path, err)
		}
		if len(rec) != s.width {
			s.dropped++
			continue
		}
		if err := fn(SourceRow{rec: rec, idx: s.idx}); err != nil {
			return err
		}
	}
}

// Dropped returns the number of rows skipped as malformed.
func (s *Source) Dropped() int64 {
	return s.dropped
}

// Close closes the input file.
func (s *Source) Close() error {
	return s.f.Close()
}
