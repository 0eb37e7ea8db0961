package imageprocessor

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"texturefinder/logging"

	"github.com/barasher/go-exiftool"
	"gocv.io/x/gocv"
)

// previewTags lists embedded preview tags, largest first
var previewTags = []string{
	"JpgFromRaw",
	"LargestImagePreview",
	"PreviewImage",
	"OtherImage",
	"ThumbnailImage",
}

// RawImageLoader decodes camera RAW files from their embedded JPEG preview, falling
// back to a dcraw conversion piped through memory
type RawImageLoader struct {
	mu      sync.Mutex
	et      *exiftool.Exiftool
	etErr   error
	started bool
}

// NewRawImageLoader creates a new loader for RAW files. The exiftool process is
// started lazily on the first RAW file.
func NewRawImageLoader() *RawImageLoader {
	return &RawImageLoader{}
}

// CanLoad checks if this loader can handle the given file
func (l *RawImageLoader) CanLoad(path string) bool {
	return IsRawFormat(path) && fileExists(path)
}

// LoadImage extracts the best embedded preview, or converts with dcraw
func (l *RawImageLoader) LoadImage(path string) (gocv.Mat, error) {
	preview, err := l.extractPreview(path)
	if err == nil {
		img, decodeErr := gocv.IMDecode(preview, gocv.IMReadColor)
		if decodeErr == nil {
			if !img.Empty() {
				return img, nil
			}
			img.Close()
		}
		logging.LogWarning("Embedded preview of %s could not be decoded, trying dcraw", path)
	} else {
		logging.DebugLog("No embedded preview for %s: %v", path, err)
	}

	img, err := tryDcraw(path)
	if err != nil {
		return gocv.NewMat(), newImageLoadError(fmt.Sprintf("failed to load RAW image (%v)", err), path)
	}
	return img, nil
}

// Close stops the exiftool process if it was started
func (l *RawImageLoader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.et != nil {
		err := l.et.Close()
		l.et = nil
		return err
	}
	return nil
}

// extractPreview reads the embedded preview bytes through a shared exiftool process.
// exiftool serves one request at a time, so calls are serialised.
func (l *RawImageLoader) extractPreview(path string) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.started {
		l.started = true
		l.et, l.etErr = exiftool.NewExiftool(exiftool.ExtractAllBinaryMetadata())
		if l.etErr != nil {
			logging.LogWarning("Failed to initialize exiftool: %v", l.etErr)
		}
	}
	if l.etErr != nil {
		return nil, l.etErr
	}

	fileInfos := l.et.ExtractMetadata(path)
	if len(fileInfos) == 0 {
		return nil, fmt.Errorf("no metadata extracted")
	}
	if fileInfos[0].Err != nil {
		return nil, fileInfos[0].Err
	}

	for _, tag := range previewTags {
		value, err := fileInfos[0].GetString(tag)
		if err != nil {
			continue
		}
		data, ok := strings.CutPrefix(value, "base64:")
		if !ok {
			continue
		}
		preview, err := base64.StdEncoding.DecodeString(data)
		if err != nil || len(preview) == 0 {
			continue
		}
		logging.DebugLog("Using %s preview for %s", tag, path)
		return preview, nil
	}

	return nil, fmt.Errorf("no preview tag found")
}

// tryDcraw converts the RAW file with dcraw, reading the PPM output from stdout
func tryDcraw(path string) (gocv.Mat, error) {
	if _, err := exec.LookPath("dcraw"); err != nil {
		return gocv.NewMat(), fmt.Errorf("dcraw not available: %w", err)
	}

	// -c = write to stdout, -w = camera white balance, -q 3 = high quality interpolation
	cmd := exec.Command("dcraw", "-c", "-w", "-q", "3", path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return gocv.NewMat(), fmt.Errorf("dcraw conversion failed: %v, stderr: %s", err, stderr.String())
	}

	img, err := gocv.IMDecode(stdout.Bytes(), gocv.IMReadColor)
	if err != nil {
		return gocv.NewMat(), err
	}
	if img.Empty() {
		img.Close()
		return gocv.NewMat(), fmt.Errorf("dcraw output could not be decoded")
	}
	return img, nil
}
