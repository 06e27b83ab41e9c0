package tabular

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Decoder is an artifact row that can populate itself from a CSV record.
type Decoder interface {
	DecodeRecord([]string) error
}

// formatForPath infers the encoding from the artifact's extension.
func formatForPath(path string) Format {
	if strings.HasSuffix(path, "."+string(FormatJSONL)) {
		return FormatJSONL
	}
	return FormatCSV
}

// EachRow streams an artifact produced by a Writer. Artifacts are this
// pipeline's own output, so unlike the foreign-input reader any malformed
// content is an error, not a drop.
func EachRow[T any, PT interface {
	*T
	Decoder
}](path string, header []string, fn func(T) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open artifact %s: %w", path, err)
	}
	defer f.Close()

	if formatForPath(path) == FormatJSONL {
		dec := json.NewDecoder(f)
		for {
			var row T
			if err := dec.Decode(&row); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return fmt.Errorf("failed to decode row in %s: %w", path, err)
			}
			if err := fn(row); err != nil {
				return err
			}
		}
	}

	r := csv.NewReader(f)
	got, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("artifact %s is empty, want header row", path)
		}
		return fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	if !equalHeader(got, header) {
		return fmt.Errorf("artifact %s has header %v, want %v", path, got, header)
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read row in %s: %w", path, err)
		}
		var row T
		if err := PT(&row).DecodeRecord(rec); err != nil {
			return fmt.Errorf("failed to decode row in %s: %w", path, err)
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}

// ReadAll loads a whole artifact into memory. Meant for the small tables
// (merged scores, top keywords); the big ones stream through EachRow.
func ReadAll[T any, PT interface {
	*T
	Decoder
}](path string, header []string) ([]T, error) {
	var out []T
	err := EachRow[T, PT](path, header, func(row T) error {
		out = append(out, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func equalHeader(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
