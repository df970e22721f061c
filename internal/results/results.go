// Package results keeps a SQLite history of harness runs so throughput
// can be compared across commits, machines and configurations.
package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver

	"github.com/randomizedcoder/mpmc-queue/internal/harness"
)

// ErrClosed is returned when the store is used after Close.
var ErrClosed = errors.New("results: store closed")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at   INTEGER NOT NULL,
	impl         TEXT    NOT NULL,
	producers    INTEGER NOT NULL,
	consumers    INTEGER NOT NULL,
	per_producer INTEGER NOT NULL,
	capacity     INTEGER NOT NULL,
	backoff      TEXT    NOT NULL,
	slot_locking INTEGER NOT NULL,
	verify       INTEGER NOT NULL,
	items        INTEGER NOT NULL,
	duration_ns  INTEGER NOT NULL,
	ns_per_op    REAL    NOT NULL,
	ops_per_sec  REAL    NOT NULL,
	verified     INTEGER NOT NULL,
	lost         INTEGER NOT NULL,
	duplicated   INTEGER NOT NULL,
	reordered    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_impl ON runs(impl, started_at);
`

// Store records harness results.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("results: open %s: %w", path, err)
	}
	// one writer at a time keeps sqlite from returning SQLITE_BUSY
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("results: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record stores r and returns its row id.
func (s *Store) Record(ctx context.Context, r harness.Result) (int64, error) {
	if s.db == nil {
		return 0, ErrClosed
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (started_at, impl, producers, consumers, per_producer, capacity,
			backoff, slot_locking, verify, items, duration_ns, ns_per_op, ops_per_sec,
			verified, lost, duplicated, reordered)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Started.UnixNano(), r.Impl, r.Producers, r.Consumers, r.PerProducer, r.Capacity,
		r.Backoff, r.SlotLocking, r.Verify, r.Items, int64(r.Duration), r.NsPerOp, r.OpsPerSec,
		r.Verified, r.Lost, r.Duplicated, r.Reordered,
	)
	if err != nil {
		return 0, fmt.Errorf("results: insert: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit results, newest first. An empty impl matches
// every implementation.
func (s *Store) Recent(ctx context.Context, impl string, limit int) ([]harness.Result, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT started_at, impl, producers, consumers, per_producer, capacity,
			backoff, slot_locking, verify, items, duration_ns, ns_per_op, ops_per_sec,
			verified, lost, duplicated, reordered
		FROM runs
		WHERE ? = '' OR impl = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, impl, impl, limit)
	if err != nil {
		return nil, fmt.Errorf("results: query: %w", err)
	}
	defer rows.Close()

	var out []harness.Result
	for rows.Next() {
		var r harness.Result
		var started, duration int64
		if err := rows.Scan(&started, &r.Impl, &r.Producers, &r.Consumers, &r.PerProducer, &r.Capacity,
			&r.Backoff, &r.SlotLocking, &r.Verify, &r.Items, &duration, &r.NsPerOp, &r.OpsPerSec,
			&r.Verified, &r.Lost, &r.Duplicated, &r.Reordered); err != nil {
			return nil, fmt.Errorf("results: scan: %w", err)
		}
		r.Started = time.Unix(0, started)
		r.Duration = time.Duration(duration)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("results: rows: %w", err)
	}
	return out, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
