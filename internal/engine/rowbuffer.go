package engine

import (
	"encoding/json"
	"fmt"
	"sort"
)

// rowEntryOverhead approximates the slice bookkeeping cost per buffered row.
const rowEntryOverhead = 96

// Order selects one of the fixed output orderings an artifact contract needs.
type Order int

const (
	// OrderScoreDesc sorts by Num descending with nils last, then Cnt
	// descending, then Text ascending. Used by every score-ranked artifact.
	OrderScoreDesc Order = iota
	// OrderEntityYear sorts by Text ascending, then Year ascending.
	OrderEntityYear
	// OrderPersonTitleYear sorts by Text ascending, then Text2 ascending,
	// then Year ascending.
	OrderPersonTitleYear
)

// SortKey carries the sortable fields of a buffered row. Which fields matter
// depends on the Order; unused fields stay zero.
type SortKey struct {
	Num   *float64
	Cnt   int64
	Text  string
	Text2 string
	Year  int
}

type bufferedRow struct {
	key     SortKey
	payload []byte
}

// RowBuffer collects rows and replays them in a fixed order. Rows are
// JSON-encoded on Append; once the buffer outgrows its budget they move to a
// scratch SQLite table and the final ordering comes from an ORDER BY instead
// of an in-memory sort. Both paths produce identical sequences.
type RowBuffer struct {
	sess   *Session
	name   string
	order  Order
	budget int64

	mem      []bufferedRow
	memBytes int64
	spill    *scratchDB
}

// NewRowBuffer creates a buffer with the given memory budget in bytes.
// A budget of zero or less disables spilling.
func NewRowBuffer(sess *Session, name string, order Order, budget int64) *RowBuffer {
	return &RowBuffer{sess: sess, name: name, order: order, budget: budget}
}

// Append encodes the row and adds it to the buffer under the sort key.
func (b *RowBuffer) Append(key SortKey, row any) error {
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to encode row for %s: %w", b.name, err)
	}

	b.mem = append(b.mem, bufferedRow{key: key, payload: payload})
	b.memBytes += int64(len(payload)+len(key.Text)+len(key.Text2)) + rowEntryOverhead

	if b.budget > 0 && b.memBytes >= b.budget {
		return b.flush()
	}
	return nil
}

// flush appends the buffered rows to the scratch table and resets the buffer.
func (b *RowBuffer) flush() error {
	if len(b.mem) == 0 {
		return nil
	}

	if b.spill == nil {
		spill, err := b.sess.openScratch(b.name)
		if err != nil {
			return err
		}
		if _, err := spill.db.Exec(
			`CREATE TABLE rows (num REAL, cnt INTEGER NOT NULL, text1 TEXT NOT NULL,
			                    text2 TEXT NOT NULL, yr INTEGER NOT NULL, payload BLOB NOT NULL)`,
		); err != nil {
			spill.Close()
			return fmt.Errorf("failed to create spill table for %s: %w", b.name, err)
		}
		b.spill = spill
		b.sess.logger.Info("row buffer spilling to disk",
			"name", b.name, "rows", len(b.mem), "path", spill.path)
	}

	tx, err := b.spill.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin spill transaction for %s: %w", b.name, err)
	}
	stmt, err := tx.Prepare(
		`INSERT INTO rows (num, cnt, text1, text2, yr, payload) VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare spill statement for %s: %w", b.name, err)
	}
	for _, row := range b.mem {
		var num any
		if row.key.Num != nil {
			num = *row.key.Num
		}
		if _, err := stmt.Exec(num, row.key.Cnt, row.key.Text, row.key.Text2, row.key.Year, row.payload); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("failed to spill row for %s: %w", b.name, err)
		}
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit spill for %s: %w", b.name, err)
	}

	b.mem = nil
	b.memBytes = 0
	return nil
}

// orderClause returns the ORDER BY clause for the buffer's ordering. The
// clauses are fixed strings; nothing user-controlled is interpolated.
func (b *RowBuffer) orderClause() string {
	switch b.order {
	case OrderEntityYear:
		return "ORDER BY text1 ASC, yr ASC"
	case OrderPersonTitleYear:
		return "ORDER BY text1 ASC, text2 ASC, yr ASC"
	default:
		return "ORDER BY (num IS NULL) ASC, num DESC, cnt DESC, text1 ASC"
	}
}

// less reports whether row i sorts before row j under the buffer's ordering.
func (b *RowBuffer) less(i, j *SortKey) bool {
	switch b.order {
	case OrderEntityYear:
		if i.Text != j.Text {
			return i.Text < j.Text
		}
		return i.Year < j.Year
	case OrderPersonTitleYear:
		if i.Text != j.Text {
			return i.Text < j.Text
		}
		if i.Text2 != j.Text2 {
			return i.Text2 < j.Text2
		}
		return i.Year < j.Year
	default:
		// Nil scores sort after every real score.
		if (i.Num == nil) != (j.Num == nil) {
			return j.Num == nil
		}
		if i.Num != nil && *i.Num != *j.Num {
			return *i.Num > *j.Num
		}
		if i.Cnt != j.Cnt {
			return i.Cnt > j.Cnt
		}
		return i.Text < j.Text
	}
}

// Each replays every buffered row in order, passing the encoded payload to fn.
func (b *RowBuffer) Each(fn func(payload []byte) error) error {
	if b.spill == nil {
		sort.Slice(b.mem, func(i, j int) bool {
			return b.less(&b.mem[i].key, &b.mem[j].key)
		})
		for _, row := range b.mem {
			if err := fn(row.payload); err != nil {
				return err
			}
		}
		return nil
	}

	if err := b.flush(); err != nil {
		return err
	}

	rows, err := b.spill.db.Query(`SELECT payload FROM rows ` + b.orderClause())
	if err != nil {
		return fmt.Errorf("failed to read spilled rows for %s: %w", b.name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return fmt.Errorf("failed to scan spilled row: %w", err)
		}
		if err := fn(payload); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Close releases the scratch database, if any.
func (b *RowBuffer) Close() error {
	if b.spill == nil {
		return nil
	}
	return b.spill.Close()
}
