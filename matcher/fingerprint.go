package matcher

import (
	"fmt"
	"image"
	"math"

	"github.com/corona10/goimagehash"
	"gocv.io/x/gocv"
)

const (
	// LumaGridSize is the side of the downsampled luminance grid
	LumaGridSize = 8

	// HistogramBinsPerChannel is the number of bins of each per-channel colour histogram
	HistogramBinsPerChannel = 16

	// histogramChannels is the number of colour channels summarised, in BGR order
	histogramChannels = 3

	// histogramSampleSize is the side of the thumbnail the colour histogram is taken from
	histogramSampleSize = 32

	// hashSampleSize is the side of the thumbnail the perceptual hash is taken from
	hashSampleSize = 64

	// LumaWeight is the share of the luminance grid in the combined distance
	LumaWeight = 0.5
)

// DescriptorLength is the number of values in a fingerprint vector
const DescriptorLength = LumaGridSize*LumaGridSize + histogramChannels*HistogramBinsPerChannel

// Fingerprint is a resolution independent summary of an image. Vector holds the
// luminance grid (values in [0,1]) followed by one histogram per BGR channel, each
// summing to 1.
type Fingerprint struct {
	Vector []float64
	Hash   *goimagehash.ImageHash
}

// ComputeFingerprint builds the descriptor of a BGR image
func ComputeFingerprint(img gocv.Mat) (Fingerprint, error) {
	if img.Empty() {
		return Fingerprint{}, fmt.Errorf("cannot fingerprint empty image")
	}
	if img.Channels() != 3 {
		return Fingerprint{}, fmt.Errorf("expected 3 channels, got %d", img.Channels())
	}

	vector := make([]float64, 0, DescriptorLength)
	vector = append(vector, lumaGrid(img)...)
	vector = append(vector, colourHistogram(img)...)

	hash, err := perceptionHash(img)
	if err != nil {
		return Fingerprint{}, err
	}

	return Fingerprint{Vector: vector, Hash: hash}, nil
}

// lumaGrid downsamples the grey image to LumaGridSize x LumaGridSize by area averaging
func lumaGrid(img gocv.Mat) []float64 {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	small := gocv.NewMat()
	defer small.Close()
	gocv.Resize(gray, &small, image.Point{X: LumaGridSize, Y: LumaGridSize}, 0, 0, gocv.InterpolationArea)

	values := make([]float64, 0, LumaGridSize*LumaGridSize)
	for _, v := range small.ToBytes() {
		values = append(values, float64(v)/255)
	}
	return values
}

// colourHistogram builds one histogram per BGR channel over a fixed size thumbnail, so
// the pixel count and therefore the normalisation do not depend on the source resolution.
// Each value is shared between the two bins whose centres surround it, so a slight
// recolour shifts weight gradually instead of jumping across a bin edge.
func colourHistogram(img gocv.Mat) []float64 {
	thumb := gocv.NewMat()
	defer thumb.Close()
	gocv.Resize(img, &thumb, image.Point{X: histogramSampleSize, Y: histogramSampleSize}, 0, 0, gocv.InterpolationArea)

	const bins = HistogramBinsPerChannel
	const binWidth = 256.0 / bins
	hist := make([]float64, histogramChannels*bins)

	data := thumb.ToBytes()
	pixels := len(data) / histogramChannels
	if pixels == 0 {
		return hist
	}
	weight := 1 / float64(pixels)
	for i := 0; i+histogramChannels <= len(data); i += histogramChannels {
		for c := 0; c < histogramChannels; c++ {
			spread(hist[c*bins:(c+1)*bins], float64(data[i+c])/binWidth-0.5, weight)
		}
	}
	return hist
}

// spread adds weight to the two bins around pos, given in bin units from the first
// bin centre. Values outside the outer centres go to the outer bins.
func spread(channel []float64, pos, weight float64) {
	last := len(channel) - 1
	switch {
	case pos <= 0:
		channel[0] += weight
	case pos >= float64(last):
		channel[last] += weight
	default:
		lo := int(pos)
		frac := pos - float64(lo)
		channel[lo] += weight * (1 - frac)
		channel[lo+1] += weight * frac
	}
}

func perceptionHash(img gocv.Mat) (*goimagehash.ImageHash, error) {
	thumb := gocv.NewMat()
	defer thumb.Close()
	gocv.Resize(img, &thumb, image.Point{X: hashSampleSize, Y: hashSampleSize}, 0, 0, gocv.InterpolationArea)

	goImg, err := thumb.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert thumbnail: %w", err)
	}
	hash, err := goimagehash.PerceptionHash(goImg)
	if err != nil {
		return nil, fmt.Errorf("perception hash: %w", err)
	}
	return hash, nil
}

// Distance returns the normalised distance between two fingerprint vectors in [0,1],
// 0 meaning identical. It averages the mean absolute luminance difference with the
// earth mover's distance of the channel histograms, so a uniform recolour moves the
// distance in proportion to the colour shift.
func Distance(a, b []float64) float64 {
	const lumaLen = LumaGridSize * LumaGridSize
	const bins = HistogramBinsPerChannel
	if len(a) != DescriptorLength || len(b) != DescriptorLength {
		return 1
	}

	var luma float64
	for i := 0; i < lumaLen; i++ {
		luma += math.Abs(a[i] - b[i])
	}
	luma /= lumaLen

	var colour float64
	for c := 0; c < histogramChannels; c++ {
		start := lumaLen + c*bins
		var cdfA, cdfB float64
		for i := start; i < start+bins-1; i++ {
			cdfA += a[i]
			cdfB += b[i]
			colour += math.Abs(cdfA - cdfB)
		}
	}
	colour /= histogramChannels * (bins - 1)

	d := LumaWeight*luma + (1-LumaWeight)*colour
	return math.Min(1, math.Max(0, d))
}

// HashDistance returns the Hamming distance between two perceptual hashes, or -1
// when either is missing
func HashDistance(a, b *goimagehash.ImageHash) int {
	if a == nil || b == nil {
		return -1
	}
	d, err := a.Distance(b)
	if err != nil {
		return -1
	}
	return d
}
