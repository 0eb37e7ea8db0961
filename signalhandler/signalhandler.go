package signalhandler

import (
	"context"
	"os/signal"
	"runtime"
	"syscall"
)

// SetupHandler returns a context that is cancelled on SIGINT or SIGTERM so running
// workers can stop before their next candidate instead of leaving OpenCV mid-call.
// The returned stop function restores default signal behaviour.
func SetupHandler(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// GetOptimalProcs returns the number of OS threads to allow for Go code
func GetOptimalProcs() int {
	// Get the number of CPUs available
	numCPU := runtime.NumCPU()

	// For image processing with CGo, using too many threads can cause issues
	maxProcs := (numCPU * 3) / 4
	if maxProcs < 1 {
		maxProcs = 1
	}

	return maxProcs
}
