// Package testsupport synthesises image fixtures for tests.
package testsupport

import (
	"image"
	"image/color"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"texturefinder/imageprocessor"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

// PatternBlocks is the number of colour blocks along each side of Pattern
const PatternBlocks = 4

// Pattern draws a PatternBlocks x PatternBlocks grid of flat colours with channel
// values 96 and 160
func Pattern(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		by := y * PatternBlocks / height
		for x := 0; x < width; x++ {
			bx := x * PatternBlocks / width
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(96 + 64*(bx%2)),
				G: uint8(96 + 64*(by%2)),
				B: uint8(96 + 64*((bx+by)/2%2)),
				A: 255,
			})
		}
	}
	return img
}

// Checkerboard draws black and white squares of the given size
func Checkerboard(width, height, square int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBA{A: 255}
			if (x/square+y/square)%2 == 0 {
				c.R, c.G, c.B = 255, 255, 255
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// Noise draws independent random channel values in [low, high], reproducible for a seed
func Noise(width, height int, low, high uint8, seed int64) *image.NRGBA {
	rng := rand.New(rand.NewSource(seed))
	span := int(high) - int(low) + 1
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: low + uint8(rng.Intn(span)),
				G: low + uint8(rng.Intn(span)),
				B: low + uint8(rng.Intn(span)),
				A: 255,
			})
		}
	}
	return img
}

// GreyNoise is Noise with equal channels
func GreyNoise(width, height int, low, high uint8, seed int64) *image.NRGBA {
	rng := rand.New(rand.NewSource(seed))
	span := int(high) - int(low) + 1
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := low + uint8(rng.Intn(span))
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// Brighten adds delta to every colour channel, clamping at 255
func Brighten(src image.Image, delta int) *image.NRGBA {
	return imaging.AdjustFunc(src, func(c color.NRGBA) color.NRGBA {
		clamp := func(v uint8) uint8 {
			n := int(v) + delta
			if n > 255 {
				return 255
			}
			if n < 0 {
				return 0
			}
			return uint8(n)
		}
		return color.NRGBA{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: c.A}
	})
}

// Upscale enlarges src by an integer factor with nearest neighbour sampling, so an
// area downscale by the same factor restores src exactly
func Upscale(src image.Image, factor int) *image.NRGBA {
	b := src.Bounds()
	return imaging.Resize(src, b.Dx()*factor, b.Dy()*factor, imaging.NearestNeighbor)
}

// Resample resizes src to width x height with bilinear interpolation, the way image
// editors enlarge textures
func Resample(src image.Image, width, height int) *image.NRGBA {
	return imaging.Resize(src, width, height, imaging.Linear)
}

// Save writes img into dir, choosing the encoder from the file extension
func Save(t testing.TB, dir, name string, img image.Image, opts ...imaging.EncodeOption) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := imaging.Save(img, path, opts...); err != nil {
		t.Fatalf("save fixture %s: %v", name, err)
	}
	return path
}

// WriteFile writes raw bytes into dir, for corrupt or non-image fixtures
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

// NewImage converts img into a BGR Image closed at the end of the test
func NewImage(t testing.TB, name string, img image.Image) *imageprocessor.Image {
	t.Helper()

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		t.Fatalf("convert %s: %v", name, err)
	}
	out, err := imageprocessor.NewImage(name, mat)
	if err != nil {
		t.Fatalf("wrap %s: %v", name, err)
	}
	t.Cleanup(func() { out.Close() })
	return out
}
