package matcher

import (
	"fmt"

	"texturefinder/imageprocessor"
	"texturefinder/types"
)

// SimilarityThreshold is the largest fingerprint distance accepted as a match. It admits
// recompressed, rescaled and lightly recoloured copies while rejecting unrelated images.
const SimilarityThreshold = 0.10

// Compare matches perceptually similar candidates
type Compare struct {
	reference Fingerprint
}

// NewCompare fingerprints the reference once for the whole run
func NewCompare(reference *imageprocessor.Image) (*Compare, error) {
	fp, err := ComputeFingerprint(reference.Mat)
	if err != nil {
		return nil, fmt.Errorf("fingerprint reference: %w", err)
	}
	return &Compare{reference: fp}, nil
}

// Mode implements Matcher
func (m *Compare) Mode() types.Mode { return types.ModeCompare }

// StopOnMatch implements Matcher; the most similar image is only known after a full scan
func (m *Compare) StopOnMatch() bool { return false }

// Match implements Matcher
func (m *Compare) Match(candidate *imageprocessor.Image) types.ComparisonResult {
	result := newResult(types.ModeCompare, candidate)

	fp, err := ComputeFingerprint(candidate.Mat)
	if err != nil {
		result.Score = 1
		result.Err = fmt.Errorf("%w: %v", types.ErrDecodeFailure, err)
		return result
	}

	result.Score = Distance(m.reference.Vector, fp.Vector)
	result.HashDistance = HashDistance(m.reference.Hash, fp.Hash)
	result.Matched = result.Score <= SimilarityThreshold
	return result
}
