package matcher

import (
	"fmt"
	"image"
	"math"

	"texturefinder/imageprocessor"
	"texturefinder/types"

	"gocv.io/x/gocv"
)

const (
	// AspectTolerance is the relative aspect ratio difference still accepted, enough to
	// absorb integer rounding of scaled dimensions
	AspectTolerance = 0.01

	// PixelTolerance is the largest per-channel difference (0-255) for a pixel to count
	// as identical after resampling
	PixelTolerance = 8

	// MinMatchingFraction is the share of identical pixels required for a match
	MinMatchingFraction = 0.99

	// ResampleRadius is the neighbourhood, in reference pixels, a resampled pixel may
	// draw its value from. Interpolating upscalers and the area downscale blend at most
	// the adjacent pixels.
	ResampleRadius = 1
)

// HighLowRes matches candidates that are an equal or higher resolution rendition of
// the reference with the same content
type HighLowRes struct {
	reference *imageprocessor.Image
}

// NewHighLowRes creates a highlowres matcher
func NewHighLowRes(reference *imageprocessor.Image) *HighLowRes {
	return &HighLowRes{reference: reference}
}

// Mode implements Matcher
func (m *HighLowRes) Mode() types.Mode { return types.ModeHighLowRes }

// StopOnMatch implements Matcher; an exact lookup is done after the first hit
func (m *HighLowRes) StopOnMatch() bool { return true }

// Match implements Matcher
func (m *HighLowRes) Match(candidate *imageprocessor.Image) types.ComparisonResult {
	result := newResult(types.ModeHighLowRes, candidate)

	if err := CheckDimensions(m.reference.Width(), m.reference.Height(), candidate.Width(), candidate.Height()); err != nil {
		result.Reason = err.Error()
		return result
	}

	scaled, radius := candidate.Mat, 0
	if candidate.Width() != m.reference.Width() || candidate.Height() != m.reference.Height() {
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(candidate.Mat, &resized, image.Point{X: m.reference.Width(), Y: m.reference.Height()}, 0, 0, gocv.InterpolationArea)
		scaled, radius = resized, ResampleRadius
	}

	result.Score = MatchingFraction(m.reference.Mat, scaled, PixelTolerance, radius)
	result.Matched = result.Score >= MinMatchingFraction
	return result
}

// CheckDimensions rejects candidates smaller than the reference or with a different
// aspect ratio. The returned error wraps types.ErrDimensionMismatch.
func CheckDimensions(refWidth, refHeight, width, height int) error {
	if width < refWidth || height < refHeight {
		return fmt.Errorf("%w: candidate %dx%d is smaller than reference %dx%d",
			types.ErrDimensionMismatch, width, height, refWidth, refHeight)
	}
	if refHeight == 0 || height == 0 {
		return fmt.Errorf("%w: zero height", types.ErrDimensionMismatch)
	}

	refAspect := float64(refWidth) / float64(refHeight)
	aspect := float64(width) / float64(height)
	if math.Abs(aspect-refAspect)/refAspect > AspectTolerance {
		return fmt.Errorf("%w: aspect ratio %.4f differs from reference %.4f",
			types.ErrDimensionMismatch, aspect, refAspect)
	}
	return nil
}

// MatchingFraction returns the share of candidate pixels whose channels all lie within
// tolerance of the value range of the reference pixels at most radius away. A radius of
// 0 compares pixel for pixel. Both Mats must have the same size and type.
func MatchingFraction(reference, candidate gocv.Mat, tolerance uint8, radius int) float64 {
	total := reference.Rows() * reference.Cols()
	if total == 0 || reference.Rows() != candidate.Rows() || reference.Cols() != candidate.Cols() || reference.Type() != candidate.Type() {
		return 0
	}

	lower, upper := reference, reference
	if radius > 0 {
		kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: 2*radius + 1, Y: 2*radius + 1})
		defer kernel.Close()

		lo := gocv.NewMat()
		defer lo.Close()
		hi := gocv.NewMat()
		defer hi.Close()
		gocv.Erode(reference, &lo, kernel)
		gocv.Dilate(reference, &hi, kernel)
		lower, upper = lo, hi
	}

	channels := reference.Channels()
	lows, highs, values := lower.ToBytes(), upper.ToBytes(), candidate.ToBytes()
	if len(lows) != len(values) || len(highs) != len(values) {
		return 0
	}

	tol := int(tolerance)
	within := 0
	for i := 0; i+channels <= len(values); i += channels {
		ok := true
		for c := 0; c < channels; c++ {
			v := int(values[i+c])
			if v < int(lows[i+c])-tol || v > int(highs[i+c])+tol {
				ok = false
				break
			}
		}
		if ok {
			within++
		}
	}

	return float64(within) / float64(total)
}
