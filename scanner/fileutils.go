package scanner

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"tantrixfinder/catalog"
	"tantrixfinder/imageprocessor"
)

var tileSuffix = regexp.MustCompile(`_tile_\d+$`)

// IsImageFile checks if a file extension belongs to a crop image
func IsImageFile(path string) bool {
	return imageprocessor.IsImageFile(path)
}

// DetectorClass returns the shape named by the crop's parent directory, the
// layout the detector writes its crops in. Other directory names give
// ShapeUnknown.
func DetectorClass(path string) catalog.Shape {
	shape, err := catalog.ParseShape(filepath.Base(filepath.Dir(path)))
	if err != nil {
		return catalog.ShapeUnknown
	}
	return shape
}

// TileFileName returns path with a _tile_<n> suffix before the extension,
// replacing an earlier suffix.
func TileFileName(path string, tile int) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	base = tileSuffix.ReplaceAllString(base, "")
	return fmt.Sprintf("%s_tile_%d%s", base, tile, ext)
}
