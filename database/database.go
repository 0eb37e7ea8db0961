package database

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"texturefinder/logging"
	"texturefinder/types"

	_ "github.com/mattn/go-sqlite3"
)

// Run describes one search as recorded in the history database
type Run struct {
	ID        string
	Reference string
	Directory string
	Mode      types.Mode
	Threads   int
	StartedAt time.Time
}

// RunSummary holds the counters written when a run finishes
type RunSummary struct {
	Candidates     int
	Processed      int
	DecodeFailures int
	Matches        int
	StoppedEarly   bool
	Interrupted    bool
	FinishedAt     time.Time
}

// RunStats contains the stored state of one run
type RunStats struct {
	Run
	RunSummary
	Finished bool
}

// InitDatabase initializes and returns a database connection
func InitDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Create tables if they don't exist
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		reference TEXT NOT NULL,
		directory TEXT NOT NULL,
		mode TEXT NOT NULL,
		threads INTEGER,
		started_at TEXT,
		finished_at TEXT,
		candidates INTEGER DEFAULT 0,
		processed INTEGER DEFAULT 0,
		decode_failures INTEGER DEFAULT 0,
		matches INTEGER DEFAULT 0,
		stopped_early INTEGER DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		path TEXT NOT NULL,
		list_index INTEGER,
		mode TEXT NOT NULL,
		score REAL,
		worker INTEGER,
		recorded_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_matches_run ON matches(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_reference ON runs(reference);`

	_, err = db.Exec(createTableSQL)
	if err != nil {
		db.Close()
		return nil, err
	}

	// Columns added after the first schema version
	migrations := []struct {
		table, column, definition string
	}{
		{"matches", "hash_distance", "INTEGER DEFAULT -1"},
		{"runs", "interrupted", "INTEGER DEFAULT 0"},
	}
	for _, m := range migrations {
		if err := addColumnIfMissing(db, m.table, m.column, m.definition); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}

func addColumnIfMissing(db *sql.DB, table, column, definition string) error {
	var hasColumn bool
	err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM pragma_table_info('%s') WHERE name=?", table), column).Scan(&hasColumn)
	if err != nil {
		return fmt.Errorf("error checking for %s column: %v", column, err)
	}
	if hasColumn {
		return nil
	}

	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s;", table, column, definition))
	if err != nil {
		return fmt.Errorf("error adding %s column: %v", column, err)
	}
	logging.DebugLog("Added '%s' column to existing %s table", column, table)
	return nil
}

// StartRun records the start of a search
func StartRun(db *sql.DB, run Run) error {
	_, err := db.Exec(`
		INSERT INTO runs (id, reference, directory, mode, threads, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Reference, run.Directory, string(run.Mode), run.Threads,
		run.StartedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("cannot insert run %s: %v", run.ID, err)
	}
	return nil
}

// StoreMatch stores one matching result of a run
func StoreMatch(db *sql.DB, runID string, result types.ComparisonResult) error {
	stmt, err := db.Prepare(`
		INSERT INTO matches (
			run_id, path, list_index, mode, score, hash_distance, worker, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("cannot prepare statement for %s: %v", result.Path, err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(
		runID,
		result.Path,
		result.Index,
		string(result.Mode),
		result.Score,
		result.HashDistance,
		result.Worker,
		time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("cannot insert match for %s: %v", result.Path, err)
	}

	return nil
}

// FinishRun writes the final counters of a run
func FinishRun(db *sql.DB, runID string, summary RunSummary) error {
	res, err := db.Exec(`
		UPDATE runs SET finished_at = ?, candidates = ?, processed = ?, decode_failures = ?,
			matches = ?, stopped_early = ?, interrupted = ?
		WHERE id = ?`,
		summary.FinishedAt.Format(time.RFC3339),
		summary.Candidates,
		summary.Processed,
		summary.DecodeFailures,
		summary.Matches,
		summary.StoppedEarly,
		summary.Interrupted,
		runID,
	)
	if err != nil {
		return fmt.Errorf("cannot update run %s: %v", runID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// GetRunStats retrieves the stored state of a run
func GetRunStats(db *sql.DB, runID string) (*RunStats, error) {
	var stats RunStats
	var mode, startedAt string
	var finishedAt sql.NullString

	err := db.QueryRow(`
		SELECT id, reference, directory, mode, threads, started_at, finished_at,
			candidates, processed, decode_failures, matches, stopped_early, interrupted
		FROM runs WHERE id = ?`, runID).Scan(
		&stats.ID, &stats.Reference, &stats.Directory, &mode, &stats.Threads, &startedAt, &finishedAt,
		&stats.Candidates, &stats.Processed, &stats.DecodeFailures, &stats.Matches,
		&stats.StoppedEarly, &stats.Interrupted,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", runID, err)
	}

	stats.Mode = types.Mode(mode)
	stats.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	if finishedAt.Valid {
		stats.Finished = true
		stats.FinishedAt, _ = time.Parse(time.RFC3339, finishedAt.String)
	}

	return &stats, nil
}

// QueryMatches retrieves the stored matches of a run in candidate list order
func QueryMatches(db *sql.DB, runID string) ([]types.ComparisonResult, error) {
	rows, err := db.Query(`
		SELECT path, list_index, mode, score, hash_distance, worker
		FROM matches WHERE run_id = ? ORDER BY list_index`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []types.ComparisonResult
	for rows.Next() {
		var r types.ComparisonResult
		var mode string
		if err := rows.Scan(&r.Path, &r.Index, &mode, &r.Score, &r.HashDistance, &r.Worker); err != nil {
			return nil, fmt.Errorf("failed to read match row: %v", err)
		}
		r.Name = filepath.Base(r.Path)
		r.Mode = types.Mode(mode)
		r.Matched = true
		results = append(results, r)
	}
	return results, rows.Err()
}
