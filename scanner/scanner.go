// Package scanner runs one search: it enumerates the candidate directory, splits it
// into partitions and compares every candidate against the reference on a fixed pool
// of workers.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"texturefinder/logging"
	"texturefinder/matcher"
	"texturefinder/types"

	"golang.org/x/sync/errgroup"
)

// Scanner holds the collaborators of a run. It keeps no state between runs.
type Scanner struct {
	decoder Decoder
	sink    Sink
}

// New creates a scanner that decodes with decoder and reports to sink
func New(decoder Decoder, sink Sink) *Scanner {
	return &Scanner{decoder: decoder, sink: sink}
}

// Run searches opts.Directory for images matching opts.ReferencePath.
//
// A reference that cannot be decoded is fatal and the returned error wraps
// types.ErrDecodeFailure. An empty directory returns types.ErrEmptyCandidateSet.
// Cancelling ctx stops every worker before its next candidate; the partial Stats are
// returned with Interrupted set and a nil error.
func (s *Scanner) Run(ctx context.Context, opts Options) (Stats, error) {
	startTime := time.Now()
	stats := Stats{}

	if opts.DebugMode {
		logging.DebugLog("Starting %s search for %s in %s", opts.Mode, opts.ReferencePath, opts.Directory)
	}

	reference, err := s.decoder.Decode(opts.ReferencePath)
	if err != nil {
		if !errors.Is(err, types.ErrDecodeFailure) {
			err = fmt.Errorf("%w: %v", types.ErrDecodeFailure, err)
		}
		return stats, fmt.Errorf("reference image %s: %w", opts.ReferencePath, err)
	}
	defer reference.Close()

	m, err := matcher.New(opts.Mode, reference)
	if err != nil {
		return stats, err
	}

	candidates, err := ListCandidates(opts.Directory, opts.ReferencePath)
	if err != nil {
		return stats, err
	}
	stats.Candidates = len(candidates)
	if len(candidates) == 0 {
		return stats, types.ErrEmptyCandidateSet
	}

	partitions := PartitionCandidates(candidates, opts.Threads)
	stats.Workers = len(partitions)

	if opts.DebugMode {
		logging.DebugLog("Reference is %dx%d; %d candidates across %d workers",
			reference.Width(), reference.Height(), len(candidates), len(partitions))
	}

	if starter, ok := s.sink.(Starter); ok {
		starter.Start(len(candidates))
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	shared := &counters{}
	g, gctx := errgroup.WithContext(runCtx)
	for _, partition := range partitions {
		w := &worker{
			id:        partition.Index,
			partition: partition,
			decoder:   s.decoder,
			matcher:   m,
			sink:      s.sink,
			counters:  shared,
			stop:      stop,
			debug:     opts.DebugMode,
		}
		g.Go(func() error {
			return w.run(gctx)
		})
	}
	err = g.Wait()

	stats.Processed = int(shared.processed.Load())
	stats.DecodeFailures = int(shared.decodeFailures.Load())
	stats.Matches = int(shared.matches.Load())
	stats.StoppedEarly = shared.stoppedEarly.Load()
	stats.Interrupted = ctx.Err() != nil
	stats.Elapsed = time.Since(startTime)

	if opts.DebugMode {
		logging.DebugLog("Search finished in %v. Processed: %d/%d, Decode failures: %d, Matches: %d, Stopped early: %v",
			stats.Elapsed, stats.Processed, stats.Candidates, stats.DecodeFailures, stats.Matches, stats.StoppedEarly)
	}

	return stats, err
}
