package results

import (
	"database/sql"

	"texturefinder/database"
	"texturefinder/types"
)

// History stores the matches of a run in the history database
type History struct {
	db    *sql.DB
	runID string
}

// NewHistory creates a history sink for runID
func NewHistory(db *sql.DB, runID string) *History {
	return &History{db: db, runID: runID}
}

// Record implements Sink
func (h *History) Record(result types.ComparisonResult) error {
	if !result.Matched {
		return nil
	}
	return database.StoreMatch(h.db, h.runID, result)
}
