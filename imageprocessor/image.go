package imageprocessor

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Image is a decoded pixel grid together with the file it came from.
// The Mat is always BGR with 8 bits per channel.
type Image struct {
	Path string
	Mat  gocv.Mat
}

// NewImage wraps a Mat, converting it to three channel BGR when needed.
// The original Mat is consumed.
func NewImage(path string, mat gocv.Mat) (*Image, error) {
	if mat.Empty() {
		mat.Close()
		return nil, newImageLoadError("image is empty after loading", path)
	}
	normalized, err := normalizeChannels(mat)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Image{Path: path, Mat: normalized}, nil
}

// Width returns the image width in pixels
func (i *Image) Width() int { return i.Mat.Cols() }

// Height returns the image height in pixels
func (i *Image) Height() int { return i.Mat.Rows() }

// Channels returns the number of colour channels
func (i *Image) Channels() int { return i.Mat.Channels() }

// Close releases the underlying OpenCV memory
func (i *Image) Close() error {
	if i == nil {
		return nil
	}
	return i.Mat.Close()
}

func normalizeChannels(mat gocv.Mat) (gocv.Mat, error) {
	var code gocv.ColorConversionCode
	switch mat.Channels() {
	case 3:
		if mat.Type() == gocv.MatTypeCV8UC3 {
			return mat, nil
		}
		converted := to8Bit(mat, gocv.MatTypeCV8UC3)
		mat.Close()
		return converted, nil
	case 1:
		code = gocv.ColorGrayToBGR
	case 4:
		code = gocv.ColorBGRAToBGR
	default:
		channels := mat.Channels()
		mat.Close()
		return gocv.NewMat(), fmt.Errorf("unsupported channel count %d", channels)
	}

	converted := gocv.NewMat()
	gocv.CvtColor(mat, &converted, code)
	mat.Close()
	if converted.Type() != gocv.MatTypeCV8UC3 {
		eight := to8Bit(converted, gocv.MatTypeCV8UC3)
		converted.Close()
		return eight, nil
	}
	return converted, nil
}

// to8Bit rescales 16-bit data into 0-255 and saturates anything else
func to8Bit(mat gocv.Mat, target gocv.MatType) gocv.Mat {
	out := gocv.NewMat()
	switch mat.Type() {
	case gocv.MatTypeCV16UC1, gocv.MatTypeCV16UC3, gocv.MatTypeCV16UC4:
		mat.ConvertToWithParams(&out, target, 1.0/257, 0)
	default:
		mat.ConvertTo(&out, target)
	}
	return out
}
