package results

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"texturefinder/types"
	"texturefinder/utils"

	"github.com/gofrs/flock"
)

// MatchLog appends one line per match to a file named after the run start time.
// The file is created on the first match only.
type MatchLog struct {
	path    string
	created bool
	file    *os.File
	lock    *flock.Flock
}

// NewMatchLog prepares a match log in dir for a run that started at startedAt
func NewMatchLog(dir string, startedAt time.Time) *MatchLog {
	return &MatchLog{path: filepath.Join(dir, utils.MatchLogFileName(startedAt))}
}

// Path returns the log file path, or "" while nothing has been written
func (l *MatchLog) Path() string {
	if !l.created {
		return ""
	}
	return l.path
}

// Record implements Sink; non-matching results are ignored
func (l *MatchLog) Record(result types.ComparisonResult) error {
	if !result.Matched {
		return nil
	}

	if !l.created {
		if err := l.open(); err != nil {
			return err
		}
	}
	if l.file == nil {
		return fmt.Errorf("match log %s is closed", l.path)
	}

	// Another run may share the file
	if err := l.lock.Lock(); err != nil {
		return fmt.Errorf("lock match log: %w", err)
	}
	defer l.lock.Unlock()

	if _, err := fmt.Fprintln(l.file, FormatMatchLine(result)); err != nil {
		return fmt.Errorf("write match log: %w", err)
	}
	return nil
}

func (l *MatchLog) open() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create match log directory: %w", err)
	}
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open match log: %w", err)
	}
	l.file = file
	l.lock = flock.New(l.path)
	l.created = true
	return nil
}

// Close closes the log file if it was opened
func (l *MatchLog) Close() error {
	if l.file == nil {
		return nil
	}
	l.lock.Close()
	err := l.file.Close()
	l.file = nil
	return err
}

// FormatMatchLine renders the log line for a match
func FormatMatchLine(result types.ComparisonResult) string {
	line := fmt.Sprintf("%s %s %.4f", result.Path, result.Mode, result.Score)
	if result.Mode == types.ModeCompare && result.HashDistance >= 0 {
		line += fmt.Sprintf(" phash=%d", result.HashDistance)
	}
	return line
}
