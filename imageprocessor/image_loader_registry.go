package imageprocessor

import (
	"fmt"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"

	"texturefinder/logging"
	"texturefinder/types"

	"gocv.io/x/gocv"
)

// ImageLoaderRegistry maintains a registry of image loaders keyed by file extension
type ImageLoaderRegistry struct {
	loaders       map[string]ImageLoader
	defaultLoader ImageLoader
	rawLoader     *RawImageLoader
	mutex         sync.RWMutex
}

// NewImageLoaderRegistry creates a new image loader registry
func NewImageLoaderRegistry() *ImageLoaderRegistry {
	registry := &ImageLoaderRegistry{
		loaders: make(map[string]ImageLoader),
	}

	registry.registerStandardLoaders()
	registry.registerSpecializedLoaders()

	return registry
}

// registerStandardLoaders registers loaders for standard image formats
func (r *ImageLoaderRegistry) registerStandardLoaders() {
	standardLoader := NewStandardImageLoader()

	for _, ext := range []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff", ".webp"} {
		r.RegisterLoader(ext, standardLoader)
	}

	// OpenCV has no GIF reader in most builds
	r.RegisterLoader(".gif", NewGoImageLoader())

	r.defaultLoader = standardLoader
}

// registerSpecializedLoaders registers loaders for camera RAW formats
func (r *ImageLoaderRegistry) registerSpecializedLoaders() {
	r.rawLoader = NewRawImageLoader()
	for ext, format := range formatExtensions {
		if format.IsRaw() {
			r.RegisterLoader(ext, r.rawLoader)
			logging.DebugLog("Registered RAW loader for %s (%s)", ext, format)
		}
	}
}

// RegisterLoader registers a new loader for a specific file extension
func (r *ImageLoaderRegistry) RegisterLoader(ext string, loader ImageLoader) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.loaders[strings.ToLower(ext)] = loader
}

// GetLoader returns the appropriate loader for the given path
func (r *ImageLoaderRegistry) GetLoader(path string) ImageLoader {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if loader, ok := r.loaders[strings.ToLower(filepath.Ext(path))]; ok {
		return loader
	}
	return r.defaultLoader
}

// LoadImage loads an image using the appropriate registered loader
func (r *ImageLoaderRegistry) LoadImage(path string) (gocv.Mat, error) {
	loader := r.GetLoader(path)
	if loader == nil {
		return gocv.NewMat(), fmt.Errorf("no suitable loader found for: %s", path)
	}
	return loader.LoadImage(path)
}

// Decode loads a file into an Image. Any failure, including a panic inside a
// loader, is returned wrapped in types.ErrDecodeFailure.
func (r *ImageLoaderRegistry) Decode(path string) (img *Image, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			stackTrace := debug.Stack()
			logging.LogError("Panic during image loading: %v, file: %s\nStack trace: %s", rec, path, string(stackTrace))
			img = nil
			err = fmt.Errorf("%w: panic during image loading: %v", types.ErrDecodeFailure, rec)
		}
	}()

	mat, err := r.LoadImage(path)
	if err != nil {
		mat.Close()
		return nil, fmt.Errorf("%w: %v", types.ErrDecodeFailure, err)
	}

	img, err = NewImage(path, mat)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrDecodeFailure, err)
	}
	return img, nil
}

// Close releases external helpers held by the loaders
func (r *ImageLoaderRegistry) Close() error {
	if r.rawLoader != nil {
		return r.rawLoader.Close()
	}
	return nil
}
