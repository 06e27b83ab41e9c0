package engine

import (
	"fmt"
)

// counterEntryOverhead approximates the map bookkeeping cost per key beyond
// the key bytes themselves.
const counterEntryOverhead = 64

type counterCell struct {
	a int64
	b int64
}

// GroupCounter accumulates a pair of int64 sums per string key. It buffers
// groups in memory up to its budget and merges overflow into a scratch SQLite
// table, so the number of distinct keys is bounded by disk, not RAM.
//
// Iteration order is unspecified; callers that need ordered output feed the
// groups into a RowBuffer.
type GroupCounter struct {
	sess   *Session
	name   string
	budget int64

	mem      map[string]counterCell
	memBytes int64
	spill    *scratchDB
}

// NewGroupCounter creates a counter with the given memory budget in bytes.
// A budget of zero or less disables spilling.
func NewGroupCounter(sess *Session, name string, budget int64) *GroupCounter {
	return &GroupCounter{
		sess:   sess,
		name:   name,
		budget: budget,
		mem:    make(map[string]counterCell),
	}
}

// Add accumulates (a, b) into the key's sums.
func (c *GroupCounter) Add(key string, a, b int64) error {
	cell, ok := c.mem[key]
	if !ok {
		c.memBytes += int64(len(key)) + counterEntryOverhead
	}
	cell.a += a
	cell.b += b
	c.mem[key] = cell

	if c.budget > 0 && c.memBytes >= c.budget {
		return c.flush()
	}
	return nil
}

// flush merges the in-memory groups into the scratch table and resets the
// buffer.
func (c *GroupCounter) flush() error {
	if len(c.mem) == 0 {
		return nil
	}

	if c.spill == nil {
		spill, err := c.sess.openScratch(c.name)
		if err != nil {
			return err
		}
		if _, err := spill.db.Exec(
			`CREATE TABLE groups (k TEXT PRIMARY KEY, a INTEGER NOT NULL, b INTEGER NOT NULL)`,
		); err != nil {
			spill.Close()
			return fmt.Errorf("failed to create spill table for %s: %w", c.name, err)
		}
		c.spill = spill
		c.sess.logger.Info("group counter spilling to disk",
			"name", c.name, "groups", len(c.mem), "path", spill.path)
	}

	tx, err := c.spill.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin spill transaction for %s: %w", c.name, err)
	}
	stmt, err := tx.Prepare(
		`INSERT INTO groups (k, a, b) VALUES (?, ?, ?)
		 ON CONFLICT(k) DO UPDATE SET a = a + excluded.a, b = b + excluded.b`,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare spill statement for %s: %w", c.name, err)
	}
	for key, cell := range c.mem {
		if _, err := stmt.Exec(key, cell.a, cell.b); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("failed to spill group %q: %w", key, err)
		}
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit spill for %s: %w", c.name, err)
	}

	c.mem = make(map[string]counterCell)
	c.memBytes = 0
	return nil
}

// Each calls fn once per distinct key with the accumulated sums.
func (c *GroupCounter) Each(fn func(key string, a, b int64) error) error {
	if c.spill == nil {
		for key, cell := range c.mem {
			if err := fn(key, cell.a, cell.b); err != nil {
				return err
			}
		}
		return nil
	}

	if err := c.flush(); err != nil {
		return err
	}

	rows, err := c.spill.db.Query(`SELECT k, a, b FROM groups`)
	if err != nil {
		return fmt.Errorf("failed to read spilled groups for %s: %w", c.name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var a, b int64
		if err := rows.Scan(&key, &a, &b); err != nil {
			return fmt.Errorf("failed to scan spilled group: %w", err)
		}
		if err := fn(key, a, b); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Close releases the scratch database, if any.
func (c *GroupCounter) Close() error {
	if c.spill == nil {
		return nil
	}
	return c.spill.Close()
}
