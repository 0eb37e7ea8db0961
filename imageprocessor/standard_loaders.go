package imageprocessor

import (
	"gocv.io/x/gocv"

	"texturefinder/logging"
)

// StandardImageLoader handles common image formats through OpenCV, falling back to
// the pure Go decoders when OpenCV cannot read the file
type StandardImageLoader struct {
	fallback *GoImageLoader
}

// NewStandardImageLoader creates a new loader for standard image formats
func NewStandardImageLoader() *StandardImageLoader {
	return &StandardImageLoader{fallback: NewGoImageLoader()}
}

// CanLoad checks if this loader can load the given file
func (l *StandardImageLoader) CanLoad(path string) bool {
	switch GetFileFormat(path) {
	case FormatJPEG, FormatPNG, FormatBMP, FormatTIFF, FormatWEBP:
		return fileExists(path)
	default:
		return false
	}
}

// LoadImage loads a standard image format in colour
func (l *StandardImageLoader) LoadImage(path string) (gocv.Mat, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if !img.Empty() {
		return img, nil
	}
	img.Close()

	logging.DebugLog("OpenCV could not read %s, trying Go image decoders", path)
	return l.fallback.LoadImage(path)
}

// GoImageLoader decodes with the Go image packages. It covers formats missing from
// the local OpenCV build (GIF, some TIFF and WebP variants) and applies EXIF orientation.
type GoImageLoader struct{}

// NewGoImageLoader creates a loader backed by the Go image decoders
func NewGoImageLoader() *GoImageLoader {
	return &GoImageLoader{}
}

// CanLoad checks if this loader can load the given file
func (l *GoImageLoader) CanLoad(path string) bool {
	return IsImageFile(path) && !IsRawFormat(path) && fileExists(path)
}

// LoadImage decodes the file and converts it to a BGR Mat
func (l *GoImageLoader) LoadImage(path string) (gocv.Mat, error) {
	goImg, err := tryGoImagePackages(path)
	if err != nil {
		return gocv.NewMat(), newImageLoadError("failed to load image: "+err.Error(), path)
	}
	return gocvMatFromGoImage(goImg)
}
