// Package store handles the SQLite trial catalog.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/pursuit/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for the trial catalog.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trials (
			participant INTEGER NOT NULL,
			trial INTEGER NOT NULL,
			run_id TEXT NOT NULL DEFAULT '',
			path TEXT NOT NULL,
			samples INTEGER NOT NULL,
			events INTEGER NOT NULL,
			duration_s REAL NOT NULL,
			saved_at TEXT NOT NULL,
			PRIMARY KEY (participant, trial)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_trials_saved_at ON trials(saved_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// UpsertTrial records a saved trial, replacing an earlier save of the same
// participant and trial.
func (s *Store) UpsertTrial(ctx context.Context, entry model.TrialEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trials (participant, trial, run_id, path, samples, events, duration_s, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (participant, trial) DO UPDATE SET
			run_id = excluded.run_id,
			path = excluded.path,
			samples = excluded.samples,
			events = excluded.events,
			duration_s = excluded.duration_s,
			saved_at = excluded.saved_at`,
		entry.Participant,
		entry.Trial,
		entry.RunID,
		entry.Path,
		entry.Samples,
		entry.Events,
		entry.DurationSec,
		entry.SavedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// ListTrials returns catalog entries ordered by participant and trial.
// A participant of 0 lists everything.
func (s *Store) ListTrials(ctx context.Context, participant int) ([]model.TrialEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT participant, trial, run_id, path, samples, events, duration_s, saved_at
		 FROM trials
		 WHERE (? = 0 OR participant = ?)
		 ORDER BY participant ASC, trial ASC`,
		participant, participant)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var entries []model.TrialEntry
	for rows.Next() {
		var entry model.TrialEntry
		var savedAt string
		if err := rows.Scan(&entry.Participant, &entry.Trial, &entry.RunID, &entry.Path, &entry.Samples, &entry.Events, &entry.DurationSec, &savedAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, savedAt)
		if err != nil {
			return nil, err
		}
		entry.SavedAt = parsed
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
