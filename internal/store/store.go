// Package store is the run catalog: a SQLite index of persisted benchmark
// results. The JSON result documents remain the source of truth; the catalog
// lets the report tooling list and locate historical runs without scanning
// directories.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// Store wraps the catalog database. SQLite in WAL mode with a single
// writer connection.
type Store struct {
	db *sql.DB
}

// RunRecord is one cataloged benchmark run.
type RunRecord struct {
	ID             string
	Scenario       string
	Timestamp      time.Time
	Path           string // persisted JSON result document
	Iterations     int
	MeanThroughput float64
	MeanDurationMS float64
	MeanMemoryMB   float64
}

// Open creates or opens the catalog at path (":memory:" for tests).
// Idempotent: pragmas and schema are applied on every open.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to catalog: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the catalog connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRun inserts one run into the catalog.
func (s *Store) RecordRun(ctx context.Context, rec RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, scenario, timestamp, path, iterations,
		                  mean_throughput, mean_duration_ms, mean_memory_mb)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Scenario, rec.Timestamp.UTC().Format(time.RFC3339Nano),
		rec.Path, rec.Iterations,
		rec.MeanThroughput, rec.MeanDurationMS, rec.MeanMemoryMB,
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", rec.ID, err)
	}
	return nil
}

// ListRuns returns all cataloged runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunRecord, error) {
	return s.queryRuns(ctx, `
		SELECT id, scenario, timestamp, path, iterations,
		       mean_throughput, mean_duration_ms, mean_memory_mb
		FROM runs ORDER BY timestamp DESC`)
}

// RunsForScenario returns the cataloged runs of one scenario, newest first.
func (s *Store) RunsForScenario(ctx context.Context, scenario string) ([]RunRecord, error) {
	return s.queryRuns(ctx, `
		SELECT id, scenario, timestamp, path, iterations,
		       mean_throughput, mean_duration_ms, mean_memory_mb
		FROM runs WHERE scenario = ? ORDER BY timestamp DESC`, scenario)
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var ts string
		if err := rows.Scan(&rec.ID, &rec.Scenario, &ts, &rec.Path, &rec.Iterations,
			&rec.MeanThroughput, &rec.MeanDurationMS, &rec.MeanMemoryMB); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rec.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("run %s: bad timestamp %q: %w", rec.ID, ts, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return records, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
