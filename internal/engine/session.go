// Package engine provides the execution context shared by pipeline stages and
// the disk-spilling primitives used by aggregations and output sorts. Stages
// never assume their working set fits in memory; when a primitive outgrows its
// budget it moves the accumulated state into a scratch SQLite database and
// keeps going.
package engine

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	// SQLite driver for scratch spill databases.
	_ "modernc.org/sqlite"
)

// Session carries the resource limits for one pipeline invocation. It is
// built once from the configuration and threaded explicitly through stages.
type Session struct {
	Workers     int
	MemoryLimit int64
	ScratchDir  string

	logger *slog.Logger
}

// NewSession validates the resource limits and ensures the scratch directory
// exists.
func NewSession(workers int, memoryLimit int64, scratchDir string) (*Session, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("workers must be positive, got %d", workers)
	}
	if memoryLimit <= 0 {
		return nil, fmt.Errorf("memory limit must be positive, got %d", memoryLimit)
	}
	if scratchDir == "" {
		return nil, fmt.Errorf("scratch directory is empty")
	}
	if err := os.MkdirAll(scratchDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory %s: %w", scratchDir, err)
	}

	return &Session{
		Workers:     workers,
		MemoryLimit: memoryLimit,
		ScratchDir:  scratchDir,
		logger:      slog.Default(),
	}, nil
}

// StageBudget returns the memory budget for a single stage worker. Per-year
// stages run up to Workers years concurrently, so each worker gets an equal
// slice of the session limit.
func (s *Session) StageBudget() int64 {
	return s.MemoryLimit / int64(s.Workers)
}

// scratchDB is a throwaway SQLite database holding spilled state. The file is
// removed on Close; its contents never outlive the stage that created it.
type scratchDB struct {
	db   *sql.DB
	path string
}

// openScratch creates a fresh scratch database under the session's scratch
// directory.
func (s *Session) openScratch(name string) (*scratchDB, error) {
	path := filepath.Join(s.ScratchDir, fmt.Sprintf("%s-%s.db", name, uuid.NewString()))

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scratch database %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping scratch database %s: %w", path, err)
	}

	// Single connection avoids "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Spilled state is disposable; durability guarantees only cost time here.
	if _, err := db.Exec("PRAGMA journal_mode = OFF"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = OFF"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	return &scratchDB{db: db, path: path}, nil
}

// Close closes the database and deletes the spill file.
func (d *scratchDB) Close() error {
	if d == nil {
		return nil
	}
	err := d.db.Close()
	if rmErr := os.Remove(d.path); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = rmErr
	}
	return err
}
