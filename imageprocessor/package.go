// Package imageprocessor decodes image files into colour pixel grids for the matchers.
//
// Every loader returns a three channel BGR 8-bit gocv.Mat so that the reference and the
// candidates can be compared channel for channel regardless of the source format.
package imageprocessor

import "gocv.io/x/gocv"

// ImageLoader is the interface that all image loaders must implement
type ImageLoader interface {
	// CanLoad checks if the loader can handle the given file
	CanLoad(path string) bool

	// LoadImage loads and returns the image
	LoadImage(path string) (gocv.Mat, error)
}
