// Package matcher implements the two candidate matching semantics: exact content at
// higher resolution (highlowres) and perceptual similarity (compare).
//
// A Matcher is built once per run around the decoded reference image and is only read
// afterwards, so one instance is shared by every worker.
package matcher

import (
	"fmt"

	"texturefinder/imageprocessor"
	"texturefinder/types"
)

// Matcher compares candidates against a fixed reference image
type Matcher interface {
	// Mode returns the semantics implemented by the matcher
	Mode() types.Mode

	// Match compares one decoded candidate with the reference
	Match(candidate *imageprocessor.Image) types.ComparisonResult

	// StopOnMatch reports whether a run may stop at the first confirmed match
	StopOnMatch() bool
}

// New builds the matcher for mode around the reference image. The reference must
// stay open for as long as the matcher is used.
func New(mode types.Mode, reference *imageprocessor.Image) (Matcher, error) {
	if reference == nil || reference.Mat.Empty() {
		return nil, fmt.Errorf("reference image is empty")
	}

	switch mode {
	case types.ModeHighLowRes:
		return NewHighLowRes(reference), nil
	case types.ModeCompare:
		return NewCompare(reference)
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", types.ErrConfiguration, mode)
	}
}

func newResult(mode types.Mode, candidate *imageprocessor.Image) types.ComparisonResult {
	return types.ComparisonResult{
		Path:         candidate.Path,
		Mode:         mode,
		HashDistance: -1,
	}
}
