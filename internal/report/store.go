package report

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Archive persists completed test runs to SQLite so results survive the
// process and can be compared across runs. WAL mode with a single connection
// keeps writes simple; the harness is not write-contended.
type Archive struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// RunRecord is the stored summary of one suite run.
type RunRecord struct {
	ID         string
	Suite      string
	TargetURL  string
	StartedAt  time.Time
	FinishedAt time.Time
	Passed     int
	Failed     int
	Warned     int
	Skipped    int
}

// OutcomeRecord is one stored (asset, template) outcome within a run.
type OutcomeRecord struct {
	AssetID  string
	TestName string
	Outcome  Outcome
	Messages map[Level][]string
	Duration time.Duration
}

// OpenArchive opens (creating if necessary) the run archive at the given path.
func OpenArchive(path string) (*Archive, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	a := &Archive{db: db, path: path}
	if err := a.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		suite       TEXT NOT NULL,
		target_url  TEXT NOT NULL,
		started_at  INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		passed      INTEGER NOT NULL,
		failed      INTEGER NOT NULL,
		warned      INTEGER NOT NULL,
		skipped     INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS outcomes (
		run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		asset_id    TEXT NOT NULL,
		test_name   TEXT NOT NULL,
		outcome     TEXT NOT NULL,
		messages    TEXT NOT NULL,
		duration_ms INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id);
	`
	if _, err := a.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize archive schema: %w", err)
	}
	return nil
}

// SaveRun stores a run summary and its per-test outcomes in one transaction.
func (a *Archive) SaveRun(run RunRecord, outcomes []OutcomeRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin archive transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, suite, target_url, started_at, finished_at, passed, failed, warned, skipped)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Suite, run.TargetURL,
		run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(),
		run.Passed, run.Failed, run.Warned, run.Skipped,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO outcomes (run_id, asset_id, test_name, outcome, messages, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare outcome insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range outcomes {
		msgs, err := json.Marshal(o.Messages)
		if err != nil {
			return fmt.Errorf("failed to encode messages for %s/%s: %w", o.AssetID, o.TestName, err)
		}
		if _, err := stmt.Exec(run.ID, o.AssetID, o.TestName, string(o.Outcome), string(msgs), o.Duration.Milliseconds()); err != nil {
			return fmt.Errorf("failed to insert outcome %s/%s: %w", o.AssetID, o.TestName, err)
		}
	}

	return tx.Commit()
}

// RecentRuns returns up to limit run summaries, newest first.
func (a *Archive) RecentRuns(limit int) ([]RunRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if limit <= 0 {
		limit = 10
	}
	rows, err := a.db.Query(
		`SELECT id, suite, target_url, started_at, finished_at, passed, failed, warned, skipped
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var started, finished int64
		if err := rows.Scan(&r.ID, &r.Suite, &r.TargetURL, &started, &finished,
			&r.Passed, &r.Failed, &r.Warned, &r.Skipped); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		r.StartedAt = time.UnixMilli(started)
		r.FinishedAt = time.UnixMilli(finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunOutcomes returns the stored outcomes for one run.
func (a *Archive) RunOutcomes(runID string) ([]OutcomeRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rows, err := a.db.Query(
		`SELECT asset_id, test_name, outcome, messages, duration_ms
		 FROM outcomes WHERE run_id = ? ORDER BY asset_id, test_name`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var outs []OutcomeRecord
	for rows.Next() {
		var o OutcomeRecord
		var msgs string
		var durMS int64
		if err := rows.Scan(&o.AssetID, &o.TestName, &o.Outcome, &msgs, &durMS); err != nil {
			return nil, fmt.Errorf("failed to scan outcome row: %w", err)
		}
		if err := json.Unmarshal([]byte(msgs), &o.Messages); err != nil {
			return nil, fmt.Errorf("failed to decode messages for %s/%s: %w", o.AssetID, o.TestName, err)
		}
		o.Duration = time.Duration(durMS) * time.Millisecond
		outs = append(outs, o)
	}
	return outs, rows.Err()
}

// Close releases the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}
