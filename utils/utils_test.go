package utils_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"texturefinder/types"
	"texturefinder/utils"
)

func TestMatchLogFileName(t *testing.T) {
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC), "03_05_24_14_07_09PM_matches.txt"},
		{time.Date(2023, time.December, 31, 9, 30, 0, 0, time.UTC), "12_31_23_09_30_00AM_matches.txt"},
	}
	for _, tt := range tests {
		if got := utils.MatchLogFileName(tt.at); got != tt.want {
			t.Fatalf("unexpected name: got %q want %q", got, tt.want)
		}
	}
}

func TestValidateThreads(t *testing.T) {
	for _, threads := range []int{0, 1, 2, 3, 4} {
		if err := utils.ValidateThreads(threads); err != nil {
			t.Fatalf("threads %d: unexpected error %v", threads, err)
		}
	}
	for _, threads := range []int{-1, 5, 64} {
		if err := utils.ValidateThreads(threads); !errors.Is(err, types.ErrConfiguration) {
			t.Fatalf("threads %d: expected configuration error, got %v", threads, err)
		}
	}
}

func TestValidateInputs(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "missing.png")

	if err := utils.ValidateInputs(file, dir); !errors.Is(err, types.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing reference, got %v", err)
	}
	if err := utils.ValidateInputs(dir, dir); !errors.Is(err, types.ErrConfiguration) {
		t.Fatalf("expected configuration error for directory reference, got %v", err)
	}
}

func TestGetDefaultDatabasePath(t *testing.T) {
	path := utils.GetDefaultDatabasePath()
	if filepath.Base(path) != "texturefinder.db" {
		t.Fatalf("unexpected database file name: got %q", path)
	}
}
