// Package imageprocessor loads tile crops into colour OpenCV matrices and
// reads their capture metadata.
package imageprocessor

import "gocv.io/x/gocv"

// ImageLoader is the interface that all image loaders must implement
type ImageLoader interface {
	// CanLoad checks if the loader can handle the given file
	CanLoad(path string) bool

	// LoadImage loads the image as an 8-bit BGR matrix owned by the caller
	LoadImage(path string) (gocv.Mat, error)
}
