package scanner

import "texturefinder/types"

const (
	// MinWorkers is the smallest thread count that enables parallel scanning
	MinWorkers = 2

	// MaxWorkers is the largest supported thread count
	MaxWorkers = 4
)

// Partition is a contiguous run of the candidate list handled by one worker
type Partition struct {
	Index      int
	Candidates []types.CandidatePath
}

// WorkerCount maps a requested thread count to the number of workers. Counts outside
// MinWorkers..MaxWorkers, including zero, select sequential scanning.
func WorkerCount(threads int) int {
	if threads >= MinWorkers && threads <= MaxWorkers {
		return threads
	}
	return 1
}

// PartitionCandidates splits candidates into WorkerCount(threads) contiguous partitions.
// Sizes differ by at most one; the first len%n partitions hold the extra candidate.
// Partitions may be empty when there are fewer candidates than workers.
func PartitionCandidates(candidates []types.CandidatePath, threads int) []Partition {
	n := WorkerCount(threads)
	partitions := make([]Partition, n)

	share := len(candidates) / n
	extra := len(candidates) % n

	start := 0
	for i := 0; i < n; i++ {
		size := share
		if i < extra {
			size++
		}
		partitions[i] = Partition{
			Index:      i,
			Candidates: candidates[start : start+size : start+size],
		}
		start += size
	}

	return partitions
}
