package imageprocessor

import (
	"fmt"
	"image"
	"os"

	// Decoders for image.Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"gocv.io/x/gocv"
)

// Try to load an image using Go's image packages
func tryGoImagePackages(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// Convert a Go image to a BGR OpenCV Mat
func gocvMatFromGoImage(img image.Image) (gocv.Mat, error) {
	if img.Bounds().Empty() {
		return gocv.NewMat(), fmt.Errorf("image has no pixels")
	}
	return gocv.ImageToMatRGB(img)
}

// Check if a file exists and has content
func fileHasContent(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}
