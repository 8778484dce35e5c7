// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

// Package bgproc is the durable, session-scoped ledger of processes that
// were backgrounded instead of awaited. Entries survive restarts of the
// host application so a later invocation can warn about, or terminate,
// clones that are still running.
//
// The ledger does not guarantee liveness: a recorded pid may have exited
// without the ledger being told. Consumers treat an entry as "probably
// still running" and confirm by attempting termination.
package bgproc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rustydotwtf/letmecook/internal/ctxlog"
	_ "modernc.org/sqlite" // sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS bgproc (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	pid           INTEGER NOT NULL,
	command       TEXT NOT NULL,
	description   TEXT NOT NULL,
	session       TEXT NOT NULL,
	registered_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bgproc_session ON bgproc(session);
`

// Entry is one durable record of a detached process.
type Entry struct {
	ID           int64
	PID          int
	Command      string
	Description  string
	Session      string
	RegisteredAt time.Time
}

// Store provides sqlite-backed persistence for background process entries.
type Store struct {
	db *sql.DB
}

// Open creates or opens the ledger database at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening background process ledger: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Register appends a durable entry for a detached process. The ledger is
// append-only; existing entries are never mutated.
func (s *Store) Register(ctx context.Context, pid int, command, description, session string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bgproc (pid, command, description, session, registered_at)
		VALUES (?, ?, ?, ?, ?)
	`, pid, command, description, session, time.Now().UTC())

	return err
}

// List returns all entries, oldest first, optionally filtered to one
// session. An empty session returns everything.
func (s *Store) List(ctx context.Context, session string) ([]Entry, error) {
	query := `SELECT id, pid, command, description, session, registered_at FROM bgproc`

	var args []any

	if session != "" {
		query += ` WHERE session = ?`

		args = append(args, session)
	}

	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var entries []Entry

	for rows.Next() {
		var e Entry

		if err := rows.Scan(&e.ID, &e.PID, &e.Command, &e.Description, &e.Session, &e.RegisteredAt); err != nil {
			return nil, err
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Remove deletes a single entry by id.
func (s *Store) Remove(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM bgproc WHERE id = ?`, id)

	return err
}

// KillAll terminates every listed process and removes its entry. A process
// that has already exited counts as terminated; its entry is still removed.
// Per-entry failures are aggregated, and the corresponding entries are kept
// so that a later attempt can retry them.
func (s *Store) KillAll(ctx context.Context, entries []Entry) error {
	var errs *multierror.Error

	for _, e := range entries {
		if err := terminate(e.PID); err != nil {
			ctxlog.Warn(ctx, "failed to terminate background process", "pid", e.PID, "error", err)
			errs = multierror.Append(errs, fmt.Errorf("pid %d (%s): %w", e.PID, e.Description, err))

			continue
		}

		if err := s.Remove(ctx, e.ID); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("removing entry %d: %w", e.ID, err))
		}
	}

	return errs.ErrorOrNil()
}

// terminate sends SIGTERM to pid, treating an already-exited process as
// success.
func terminate(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		// On unix FindProcess always succeeds; treat failure as gone.
		return nil
	}

	err = proc.Signal(syscall.SIGTERM)
	if err == nil || errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH) {
		return nil
	}

	return err
}
