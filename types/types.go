package types

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy shared by the scanner, matchers and CLI
var (
	// ErrDecodeFailure marks a candidate that could not be read or decoded
	ErrDecodeFailure = errors.New("decode failure")

	// ErrDimensionMismatch marks a highlowres fast-path rejection. It is carried as a
	// result reason, never returned as a run error.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrEmptyCandidateSet is returned when the candidate directory holds no files
	ErrEmptyCandidateSet = errors.New("no candidate files found")

	// ErrConfiguration marks invalid mode or thread settings detected before a run
	ErrConfiguration = errors.New("configuration error")
)

// Mode selects the matching semantics for a run
type Mode string

const (
	// ModeHighLowRes finds an identical image at equal or higher resolution
	ModeHighLowRes Mode = "highlowres"

	// ModeCompare finds perceptually similar images
	ModeCompare Mode = "compare"
)

// ParseMode converts a user supplied mode name into a Mode
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeHighLowRes:
		return ModeHighLowRes, nil
	case ModeCompare:
		return ModeCompare, nil
	default:
		return "", fmt.Errorf("%w: search mode must be %q or %q, got %q",
			ErrConfiguration, ModeCompare, ModeHighLowRes, value)
	}
}

// String implements fmt.Stringer
func (m Mode) String() string {
	return string(m)
}

// CandidatePath is one entry of the enumerated candidate directory
type CandidatePath struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// ComparisonResult holds the outcome of comparing one candidate against the reference
type ComparisonResult struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Index   int    `json:"index"`
	Mode    Mode   `json:"mode"`
	Matched bool   `json:"matched"`

	// Score is the fraction of matching pixels in highlowres mode (higher is better)
	// and the descriptor distance in compare mode (lower is better).
	Score float64 `json:"score"`

	// HashDistance is the perceptual hash Hamming distance in compare mode, -1 otherwise
	HashDistance int `json:"hash_distance"`

	// Reason explains a fast-path rejection such as a dimension mismatch
	Reason string `json:"reason,omitempty"`

	// Err is set when the candidate could not be decoded
	Err error `json:"-"`

	Worker int `json:"worker"`
}

// Failed reports whether the candidate could not be evaluated at all
func (r ComparisonResult) Failed() bool {
	return r.Err != nil
}
