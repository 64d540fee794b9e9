package imageprocessor

import (
	"fmt"

	"tantrixfinder/logging"

	"gocv.io/x/gocv"
)

// BaseImageLoader provides common functionality for all image loaders
type BaseImageLoader struct {
	// Formats this loader can handle
	SupportedFormats []FormatType
}

// CanLoad checks if this loader supports the file's format
func (l *BaseImageLoader) CanLoad(path string) bool {
	format := GetFileFormat(path)
	for _, supported := range l.SupportedFormats {
		if format == supported {
			return fileHasContent(path)
		}
	}
	return false
}

// StandardImageLoader reads images with OpenCV and falls back to the Go
// decoders for files OpenCV was built without support for.
type StandardImageLoader struct {
	BaseImageLoader
	Fallback bool
}

// NewStandardImageLoader creates a new loader for standard image formats
func NewStandardImageLoader() *StandardImageLoader {
	return &StandardImageLoader{
		BaseImageLoader: BaseImageLoader{
			SupportedFormats: []FormatType{
				FormatJPEG,
				FormatPNG,
				FormatBMP,
				FormatTIFF,
				FormatWEBP,
			},
		},
		Fallback: true,
	}
}

// LoadImage loads the image in colour
func (l *StandardImageLoader) LoadImage(path string) (gocv.Mat, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if !img.Empty() {
		return img, nil
	}
	img.Close()

	if !l.Fallback {
		return gocv.NewMat(), newImageLoadError("failed to load image", path)
	}
	logging.DebugLog("OpenCV could not read %s, trying Go decoders", path)
	return loadWithGo(path)
}

// GoImageLoader decodes with the Go image packages only.
type GoImageLoader struct {
	BaseImageLoader
}

// NewGoImageLoader creates a loader for formats OpenCV commonly lacks
func NewGoImageLoader() *GoImageLoader {
	return &GoImageLoader{
		BaseImageLoader: BaseImageLoader{
			SupportedFormats: []FormatType{FormatGIF},
		},
	}
}

// LoadImage decodes the image and converts it to BGR
func (l *GoImageLoader) LoadImage(path string) (gocv.Mat, error) {
	return loadWithGo(path)
}

func loadWithGo(path string) (gocv.Mat, error) {
	goImg, err := tryGoImagePackages(path)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("cannot decode %s: %v", path, err)
	}
	mat, err := gocvMatFromGoImage(goImg)
	if err != nil {
		return mat, fmt.Errorf("cannot convert %s: %v", path, err)
	}
	return mat, nil
}

// newImageLoadError creates a standardized error for image loading failures
func newImageLoadError(message, path string) error {
	return fmt.Errorf("%s: %s", message, path)
}
