package main

import (
	"database/sql"
	"fmt"
	"time"

	"texturefinder/database"
	"texturefinder/logging"
	"texturefinder/scanner"
)

// runHistory records the current run in the optional history database
type runHistory struct {
	db    *sql.DB
	runID string
}

func openHistory(dbPath string, run database.Run) (*runHistory, error) {
	if dbPath == "" {
		return nil, nil
	}

	// Initialize database with retry logic
	var db *sql.DB
	var err error
	const maxRetries = 3
	for i := 0; i < maxRetries; i++ {
		db, err = database.InitDatabase(dbPath)
		if err == nil {
			break
		}
		if i < maxRetries-1 {
			logging.LogWarning("Error initializing database (attempt %d/%d): %v - retrying...", i+1, maxRetries, err)
			time.Sleep(time.Second * time.Duration(i+1))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("initialize database %s after %d attempts: %w", dbPath, maxRetries, err)
	}

	if err := database.StartRun(db, run); err != nil {
		db.Close()
		return nil, err
	}
	return &runHistory{db: db, runID: run.ID}, nil
}

func (h *runHistory) finish(stats scanner.Stats) {
	err := database.FinishRun(h.db, h.runID, database.RunSummary{
		Candidates:     stats.Candidates,
		Processed:      stats.Processed,
		DecodeFailures: stats.DecodeFailures,
		Matches:        stats.Matches,
		StoppedEarly:   stats.StoppedEarly,
		Interrupted:    stats.Interrupted,
		FinishedAt:     time.Now(),
	})
	if err != nil {
		logging.LogWarning("Failed to record run %s: %v", h.runID, err)
	}
}

func (h *runHistory) close() {
	h.db.Close()
}
