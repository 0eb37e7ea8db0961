package matcher_test

import (
	"image/color"
	"math"
	"sort"
	"testing"

	"texturefinder/matcher"
	"texturefinder/testsupport"
	"texturefinder/types"

	"github.com/disintegration/imaging"
)

func TestFingerprintIsResolutionIndependent(t *testing.T) {
	base := testsupport.Pattern(64, 64)
	small := testsupport.NewImage(t, "small", base)
	large := testsupport.NewImage(t, "large", testsupport.Upscale(base, 4))

	a, err := matcher.ComputeFingerprint(small.Mat)
	if err != nil {
		t.Fatalf("fingerprint small: %v", err)
	}
	b, err := matcher.ComputeFingerprint(large.Mat)
	if err != nil {
		t.Fatalf("fingerprint large: %v", err)
	}

	if len(a.Vector) != matcher.DescriptorLength {
		t.Fatalf("unexpected descriptor length: got %d want %d", len(a.Vector), matcher.DescriptorLength)
	}
	if d := matcher.Distance(a.Vector, b.Vector); d > 0.01 {
		t.Fatalf("expected near zero distance across resolutions, got %.4f", d)
	}
}

func TestDistanceIdenticalIsZero(t *testing.T) {
	img := testsupport.NewImage(t, "img", testsupport.Pattern(48, 48))
	fp, err := matcher.ComputeFingerprint(img.Mat)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	if d := matcher.Distance(fp.Vector, fp.Vector); d != 0 {
		t.Fatalf("expected 0, got %v", d)
	}
	if d := matcher.HashDistance(fp.Hash, fp.Hash); d != 0 {
		t.Fatalf("expected hash distance 0, got %d", d)
	}
}

func TestDistanceGrowsWithDegradation(t *testing.T) {
	base := testsupport.Pattern(64, 64)
	ref, err := matcher.ComputeFingerprint(testsupport.NewImage(t, "ref", base).Mat)
	if err != nil {
		t.Fatalf("fingerprint reference: %v", err)
	}

	previous := 0.0
	for _, delta := range []int{10, 40, 80} {
		degraded := testsupport.NewImage(t, "degraded", testsupport.Brighten(base, delta))
		fp, err := matcher.ComputeFingerprint(degraded.Mat)
		if err != nil {
			t.Fatalf("fingerprint delta %d: %v", delta, err)
		}
		d := matcher.Distance(ref.Vector, fp.Vector)
		if d <= previous {
			t.Fatalf("delta %d: distance %.4f did not grow past %.4f", delta, d, previous)
		}
		previous = d
	}
}

func TestCompareAcceptsRecolourAcrossBinEdges(t *testing.T) {
	// grey values straddle 128, a bin boundary for any power of two bin count
	base := testsupport.GreyNoise(32, 32, 118, 137, 3)
	m, err := matcher.New(types.ModeCompare, testsupport.NewImage(t, "reference", base))
	if err != nil {
		t.Fatalf("new matcher: %v", err)
	}

	previous := 0.0
	for _, delta := range []int{3, 6, 10} {
		result := m.Match(testsupport.NewImage(t, "recoloured", testsupport.Brighten(base, delta)))
		if !result.Matched {
			t.Fatalf("delta %d: expected match, distance %.4f", delta, result.Score)
		}
		if result.Score > 0.06 {
			t.Fatalf("delta %d: distance %.4f too large for a slight recolour", delta, result.Score)
		}
		if result.Score <= previous {
			t.Fatalf("delta %d: distance %.4f did not grow past %.4f", delta, result.Score, previous)
		}
		previous = result.Score
	}
}

func TestColourHistogramCentresFollowChannelValues(t *testing.T) {
	flat := imaging.New(8, 8, color.NRGBA{R: 200, G: 100, B: 40, A: 255})
	fp, err := matcher.ComputeFingerprint(testsupport.NewImage(t, "flat", flat).Mat)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}

	const bins = matcher.HistogramBinsPerChannel
	binWidth := 256.0 / bins
	hist := fp.Vector[matcher.LumaGridSize*matcher.LumaGridSize:]
	if len(hist) != 3*bins {
		t.Fatalf("unexpected histogram length: got %d want %d", len(hist), 3*bins)
	}

	var got []float64
	for c := 0; c < 3; c++ {
		var sum, centre float64
		for k, w := range hist[c*bins : (c+1)*bins] {
			sum += w
			centre += float64(k) * w
		}
		if math.Abs(sum-1) > 1e-6 {
			t.Fatalf("channel %d: weights sum to %.6f", c, sum)
		}
		got = append(got, centre)
	}
	sort.Float64s(got)

	want := []float64{40/binWidth - 0.5, 100/binWidth - 0.5, 200/binWidth - 0.5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-6 {
			t.Fatalf("unexpected bin centres: got %v want %v", got, want)
		}
	}
}

func TestDistanceRejectsMalformedVectors(t *testing.T) {
	if d := matcher.Distance([]float64{0, 1}, []float64{0, 1}); d != 1 {
		t.Fatalf("expected 1 for short vectors, got %v", d)
	}
	if d := matcher.HashDistance(nil, nil); d != -1 {
		t.Fatalf("expected -1 for missing hashes, got %d", d)
	}
}

func TestCompareMatchesSimilarAndRejectsUnrelated(t *testing.T) {
	base := testsupport.Pattern(64, 64)
	reference := testsupport.NewImage(t, "reference", base)

	m, err := matcher.New(types.ModeCompare, reference)
	if err != nil {
		t.Fatalf("new matcher: %v", err)
	}
	if m.StopOnMatch() {
		t.Fatal("compare must scan every candidate")
	}

	similar := m.Match(testsupport.NewImage(t, "similar", testsupport.Brighten(testsupport.Upscale(base, 2), 6)))
	if !similar.Matched {
		t.Fatalf("expected similar image to match, distance %.4f", similar.Score)
	}
	if similar.HashDistance < 0 {
		t.Fatalf("expected a hash distance, got %d", similar.HashDistance)
	}

	unrelated := m.Match(testsupport.NewImage(t, "unrelated", testsupport.Checkerboard(64, 64, 8)))
	if unrelated.Matched {
		t.Fatalf("expected unrelated image to be rejected, distance %.4f", unrelated.Score)
	}
	if unrelated.Score <= similar.Score {
		t.Fatalf("unrelated distance %.4f should exceed similar %.4f", unrelated.Score, similar.Score)
	}
}

func TestNewRejectsUnknownMode(t *testing.T) {
	reference := testsupport.NewImage(t, "reference", testsupport.Pattern(8, 8))
	if _, err := matcher.New(types.Mode("fuzzy"), reference); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if _, err := matcher.New(types.ModeCompare, nil); err == nil {
		t.Fatal("expected error for missing reference")
	}
}
