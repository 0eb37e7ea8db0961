package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"texturefinder/logging"
	"texturefinder/matcher"
	"texturefinder/types"
)

// counters are shared by the workers of one run
type counters struct {
	processed      atomic.Int64
	decodeFailures atomic.Int64
	matches        atomic.Int64
	stoppedEarly   atomic.Bool
}

// worker scans one partition in list order
type worker struct {
	id        int
	partition Partition
	decoder   Decoder
	matcher   matcher.Matcher
	sink      Sink
	counters  *counters
	stop      context.CancelFunc
	debug     bool
}

func (w *worker) run(ctx context.Context) error {
	if w.debug {
		logging.DebugLog("Worker %d starting with %d candidates", w.id, len(w.partition.Candidates))
	}

	for _, candidate := range w.partition.Candidates {
		if ctx.Err() != nil {
			if w.debug {
				logging.DebugLog("Worker %d stopping before %s", w.id, candidate.Path)
			}
			return nil
		}

		result := w.process(candidate)
		w.counters.processed.Add(1)
		if result.Failed() {
			w.counters.decodeFailures.Add(1)
			logging.LogImageProcessed(candidate.Path, false, result.Err.Error())
		} else {
			logging.LogImageProcessed(candidate.Path, true, "")
		}
		if result.Matched {
			w.counters.matches.Add(1)
		}

		if err := w.sink.Record(result); err != nil {
			return fmt.Errorf("record result for %s: %w", candidate.Path, err)
		}

		if result.Matched && w.matcher.StopOnMatch() {
			w.counters.stoppedEarly.Store(true)
			logging.LogInfo("Worker %d found %s, stopping scan", w.id, candidate.Path)
			w.stop()
			return nil
		}
	}

	return nil
}

// process decodes one candidate and compares it. Decode failures and panics are
// turned into a non-matching result.
func (w *worker) process(candidate types.CandidatePath) (result types.ComparisonResult) {
	defer func() {
		if r := recover(); r != nil {
			logging.LogError("Recovered from panic while processing %s: %v", candidate.Path, r)
			result = w.failure(candidate, fmt.Errorf("%w: panic: %v", types.ErrDecodeFailure, r))
		}
	}()

	img, err := w.decoder.Decode(candidate.Path)
	if err != nil {
		if !errors.Is(err, types.ErrDecodeFailure) {
			err = fmt.Errorf("%w: %v", types.ErrDecodeFailure, err)
		}
		return w.failure(candidate, err)
	}
	defer img.Close()

	result = w.matcher.Match(img)
	result.Path = candidate.Path
	result.Name = candidate.Name
	result.Index = candidate.Index
	result.Worker = w.id
	if result.Err != nil {
		result.Matched = false
	}
	return result
}

func (w *worker) failure(candidate types.CandidatePath, err error) types.ComparisonResult {
	return types.ComparisonResult{
		Path:         candidate.Path,
		Name:         candidate.Name,
		Index:        candidate.Index,
		Mode:         w.matcher.Mode(),
		HashDistance: -1,
		Err:          err,
		Worker:       w.id,
	}
}
