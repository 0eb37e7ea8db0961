package results_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"texturefinder/results"
	"texturefinder/types"
)

type countingSink struct {
	started int
	records int
	closed  bool
}

func (s *countingSink) Start(total int) { s.started = total }

func (s *countingSink) Record(types.ComparisonResult) error {
	s.records++
	return nil
}

func (s *countingSink) Close() error {
	s.closed = true
	return nil
}

type errSink struct{}

func (errSink) Record(types.ComparisonResult) error { return errors.New("broken sink") }

func TestAggregatorConcurrentRecord(t *testing.T) {
	sink := &countingSink{}
	agg := results.NewAggregator(sink)
	agg.Start(800)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				result := types.ComparisonResult{
					Path:    fmt.Sprintf("/w%d/%d.png", worker, i),
					Index:   worker*100 + i,
					Mode:    types.ModeCompare,
					Matched: i%10 == 0,
					Score:   float64(i) / 1000,
					Worker:  worker,
				}
				if err := agg.Record(result); err != nil {
					t.Errorf("Record: %v", err)
				}
			}
		}(w)
	}
	wg.Wait()

	if sink.started != 800 {
		t.Fatalf("expected Start to be forwarded, got %d", sink.started)
	}
	if sink.records != 800 {
		t.Fatalf("unexpected record count: %d", sink.records)
	}
	if got := len(agg.Matches()); got != 80 {
		t.Fatalf("expected 80 matches, got %d", got)
	}

	if err := agg.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !sink.closed {
		t.Fatal("expected sink to be closed")
	}
	if err := agg.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestAggregatorJoinsSinkErrors(t *testing.T) {
	sink := &countingSink{}
	agg := results.NewAggregator(errSink{}, sink)

	if err := agg.Record(types.ComparisonResult{Matched: true}); err == nil {
		t.Fatal("expected sink error")
	}
	if sink.records != 1 {
		t.Fatal("a failing sink must not stop the others")
	}
}

func TestRankCompare(t *testing.T) {
	matches := []types.ComparisonResult{
		{Name: "d", Index: 3, Mode: types.ModeCompare, Score: 0.05, HashDistance: 4},
		{Name: "c", Index: 2, Mode: types.ModeCompare, Score: 0.02, HashDistance: -1},
		{Name: "b", Index: 1, Mode: types.ModeCompare, Score: 0.02, HashDistance: 6},
		{Name: "a", Index: 0, Mode: types.ModeCompare, Score: 0.05, HashDistance: 4},
		{Name: "e", Index: 4, Mode: types.ModeCompare, Score: 0.01, HashDistance: 20},
	}
	results.Rank(matches)

	want := []string{"e", "b", "c", "a", "d"}
	for i, m := range matches {
		if m.Name != want[i] {
			t.Fatalf("position %d: got %q want %q", i, m.Name, want[i])
		}
	}
}

func TestRankHighLowRes(t *testing.T) {
	matches := []types.ComparisonResult{
		{Name: "b", Index: 1, Mode: types.ModeHighLowRes, Score: 0.995},
		{Name: "c", Index: 2, Mode: types.ModeHighLowRes, Score: 1},
		{Name: "a", Index: 0, Mode: types.ModeHighLowRes, Score: 0.995},
	}
	results.Rank(matches)

	want := []string{"c", "a", "b"}
	for i, m := range matches {
		if m.Name != want[i] {
			t.Fatalf("position %d: got %q want %q", i, m.Name, want[i])
		}
	}
}

func TestAggregatorKeepsOnlyMatches(t *testing.T) {
	agg := results.NewAggregator()
	if got := agg.Matches(); len(got) != 0 {
		t.Fatalf("expected no matches on an empty aggregator, got %d", len(got))
	}

	agg.Record(types.ComparisonResult{Name: "far", Index: 0, Mode: types.ModeCompare, Matched: true, Score: 0.08})
	agg.Record(types.ComparisonResult{Name: "miss", Index: 1, Mode: types.ModeCompare, Score: 0.4})
	agg.Record(types.ComparisonResult{Name: "near", Index: 2, Mode: types.ModeCompare, Matched: true, Score: 0.01})

	matches := agg.Matches()
	if len(matches) != 2 || matches[0].Name != "near" {
		t.Fatalf("unexpected matches: %+v", matches)
	}
}
