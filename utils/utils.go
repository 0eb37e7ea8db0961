package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"texturefinder/types"
)

// MatchLogTimeLayout is the run start timestamp used in match log names,
// month_day_year_hour_minute_second followed by AM or PM
const MatchLogTimeLayout = "01_02_06_15_04_05PM"

// MaxThreads is the largest accepted --threads value
const MaxThreads = 4

// MatchLogFileName returns the match log file name for a run started at t
func MatchLogFileName(t time.Time) string {
	return t.Format(MatchLogTimeLayout) + "_matches.txt"
}

// ValidateThreads checks a user supplied thread count. 0 and 1 select sequential
// scanning, 2 to MaxThreads parallel scanning.
func ValidateThreads(threads int) error {
	if threads < 0 || threads > MaxThreads {
		return fmt.Errorf("%w: threads must be between 0 and %d, got %d", types.ErrConfiguration, MaxThreads, threads)
	}
	return nil
}

// ValidateInputs checks that the reference is a readable file and directory a directory
func ValidateInputs(reference, directory string) error {
	info, err := os.Stat(reference)
	if err != nil {
		return fmt.Errorf("%w: reference image: %v", types.ErrConfiguration, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: reference image %s is a directory", types.ErrConfiguration, reference)
	}

	info, err = os.Stat(directory)
	if err != nil {
		return fmt.Errorf("%w: candidate directory: %v", types.ErrConfiguration, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", types.ErrConfiguration, directory)
	}
	return nil
}

// GetDefaultDatabasePath returns the default path for the history database file
func GetDefaultDatabasePath() string {
	// Get the executable path
	exePath, err := os.Executable()
	if err != nil {
		// Fallback to current directory if executable path can't be determined
		return "texturefinder.db"
	}

	// Return the default database path next to the executable
	return filepath.Join(filepath.Dir(exePath), "texturefinder.db")
}
