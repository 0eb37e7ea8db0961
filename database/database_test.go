package database_test

import (
	"path/filepath"
	"testing"
	"time"

	"texturefinder/database"
	"texturefinder/types"
)

func TestRunHistoryRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	db, err := database.InitDatabase(dbPath)
	if err != nil {
		t.Fatalf("InitDatabase: %v", err)
	}
	defer db.Close()

	started := time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)
	run := database.Run{
		ID:        "run-1",
		Reference: "/ref/brick.png",
		Directory: "/textures",
		Mode:      types.ModeCompare,
		Threads:   3,
		StartedAt: started,
	}
	if err := database.StartRun(db, run); err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	stats, err := database.GetRunStats(db, "run-1")
	if err != nil {
		t.Fatalf("GetRunStats: %v", err)
	}
	if stats.Finished {
		t.Fatal("run should not be finished yet")
	}
	if stats.Mode != types.ModeCompare || stats.Threads != 3 || !stats.StartedAt.Equal(started) {
		t.Fatalf("unexpected run: %+v", stats.Run)
	}

	for _, r := range []types.ComparisonResult{
		{Path: "/textures/b.png", Index: 4, Mode: types.ModeCompare, Matched: true, Score: 0.03, HashDistance: 2, Worker: 1},
		{Path: "/textures/a.png", Index: 1, Mode: types.ModeCompare, Matched: true, Score: 0.07, HashDistance: 9},
	} {
		if err := database.StoreMatch(db, "run-1", r); err != nil {
			t.Fatalf("StoreMatch: %v", err)
		}
	}

	err = database.FinishRun(db, "run-1", database.RunSummary{
		Candidates:     10,
		Processed:      10,
		DecodeFailures: 1,
		Matches:        2,
		FinishedAt:     started.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	stats, err = database.GetRunStats(db, "run-1")
	if err != nil {
		t.Fatalf("GetRunStats: %v", err)
	}
	if !stats.Finished || stats.Processed != 10 || stats.DecodeFailures != 1 || stats.Matches != 2 {
		t.Fatalf("unexpected finished run: %+v", stats)
	}
	if stats.StoppedEarly || stats.Interrupted {
		t.Fatalf("unexpected flags: %+v", stats.RunSummary)
	}

	matches, err := database.QueryMatches(db, "run-1")
	if err != nil {
		t.Fatalf("QueryMatches: %v", err)
	}
	if len(matches) != 2 || matches[0].Name != "a.png" || matches[1].HashDistance != 2 {
		t.Fatalf("unexpected matches: %+v", matches)
	}
}

func TestInitDatabaseIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	for i := 0; i < 2; i++ {
		db, err := database.InitDatabase(dbPath)
		if err != nil {
			t.Fatalf("InitDatabase attempt %d: %v", i+1, err)
		}
		db.Close()
	}
}

func TestFinishUnknownRun(t *testing.T) {
	db, err := database.InitDatabase(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("InitDatabase: %v", err)
	}
	defer db.Close()

	if err := database.FinishRun(db, "missing", database.RunSummary{FinishedAt: time.Now()}); err == nil {
		t.Fatal("expected error for unknown run")
	}
}
