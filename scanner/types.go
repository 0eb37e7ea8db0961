package scanner

import (
	"time"

	"texturefinder/imageprocessor"
	"texturefinder/types"
)

// Options defines the options for one search run
type Options struct {
	ReferencePath string
	Directory     string
	Mode          types.Mode
	Threads       int
	DebugMode     bool
}

// Stats summarises a finished run
type Stats struct {
	Candidates     int
	Processed      int
	DecodeFailures int
	Matches        int
	Workers        int

	// StoppedEarly is set when a highlowres match ended the scan
	StoppedEarly bool

	// Interrupted is set when the caller's context was cancelled mid-scan
	Interrupted bool

	Elapsed time.Duration
}

// Decoder turns a file path into a BGR image
type Decoder interface {
	Decode(path string) (*imageprocessor.Image, error)
}

// Sink receives every comparison result as soon as it is produced. Record may be
// called from several workers at once.
type Sink interface {
	Record(result types.ComparisonResult) error
}

// Starter is implemented by sinks that want to know the candidate count up front
type Starter interface {
	Start(total int)
}
