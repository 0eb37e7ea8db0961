// Package results collects comparison results from concurrent workers and fans them
// out to the match log, the console, the progress bar and the run history.
package results

import (
	"errors"
	"sort"
	"sync"

	"texturefinder/types"
)

// Sink receives results one at a time; the Aggregator never calls a sink concurrently
type Sink interface {
	Record(result types.ComparisonResult) error
}

// Aggregator is the thread-safe entry point for worker results. Each result reaches
// every sink before the next one is handled.
type Aggregator struct {
	mu      sync.Mutex
	sinks   []Sink
	matches []types.ComparisonResult
	closed  bool
}

// NewAggregator creates an aggregator writing to sinks in order
func NewAggregator(sinks ...Sink) *Aggregator {
	return &Aggregator{sinks: sinks}
}

// Start tells progress aware sinks how many candidates to expect
func (a *Aggregator) Start(total int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, sink := range a.sinks {
		if s, ok := sink.(interface{ Start(int) }); ok {
			s.Start(total)
		}
	}
}

// Record stores a match and forwards the result to every sink. Sink errors are
// joined; a failing sink does not stop the others.
func (a *Aggregator) Record(result types.ComparisonResult) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if result.Matched {
		a.matches = append(a.matches, result)
	}

	var errs []error
	for _, sink := range a.sinks {
		if err := sink.Record(result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Matches returns every match ranked best first
func (a *Aggregator) Matches() []types.ComparisonResult {
	a.mu.Lock()
	matches := make([]types.ComparisonResult, len(a.matches))
	copy(matches, a.matches)
	a.mu.Unlock()

	Rank(matches)
	return matches
}

// Close closes every sink that holds resources. It is safe to call more than once.
func (a *Aggregator) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	var errs []error
	for _, sink := range a.sinks {
		if c, ok := sink.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Rank orders matches best first. compare results rank by lowest distance, then lowest
// perceptual hash distance; highlowres results by highest matching fraction. Remaining
// ties keep candidate list order.
func Rank(matches []types.ComparisonResult) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Mode == types.ModeHighLowRes && b.Mode == types.ModeHighLowRes {
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			return a.Index < b.Index
		}
		if a.Score != b.Score {
			return a.Score < b.Score
		}
		if ha, hb := hashRank(a.HashDistance), hashRank(b.HashDistance); ha != hb {
			return ha < hb
		}
		return a.Index < b.Index
	})
}

// hashRank puts a missing hash distance after every known one
func hashRank(d int) int {
	if d < 0 {
		return 1 << 30
	}
	return d
}
