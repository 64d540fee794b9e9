package imageprocessor

import (
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 215, G: 31, B: 43, A: 255})
		}
	}
	return img
}

func palettedImage() *image.Paletted {
	src := testImage()
	img := image.NewPaletted(src.Bounds(), color.Palette{color.RGBA{R: 215, G: 31, B: 43, A: 255}})
	draw.Draw(img, img.Bounds(), src, image.Point{}, draw.Src)
	return img
}

func writeImage(t *testing.T, name string, encode func(f *os.File) error) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := encode(f); err != nil {
		t.Fatalf("Cannot encode %s: %v", name, err)
	}
	return path
}

func TestLoadImageInColour(t *testing.T) {
	cases := map[string]func(f *os.File) error{
		"tile.png": func(f *os.File) error { return png.Encode(f, testImage()) },
		"tile.bmp": func(f *os.File) error { return bmp.Encode(f, testImage()) },
		"tile.gif": func(f *os.File) error { return gif.Encode(f, palettedImage(), nil) },
	}
	for name, encode := range cases {
		path := writeImage(t, name, encode)
		mat, err := LoadImage(path)
		if err != nil {
			t.Errorf("Loading %s failed: %v", name, err)
			continue
		}
		if mat.Cols() != 8 || mat.Rows() != 6 || mat.Channels() != 3 {
			t.Errorf("%s: size %dx%dx%d, should be 8x6x3", name, mat.Cols(), mat.Rows(), mat.Channels())
		}
		px := mat.GetVecbAt(3, 3)
		if diff(px[2], 215) > 8 || diff(px[1], 31) > 8 || diff(px[0], 43) > 8 {
			t.Errorf("%s: pixel should be BGR 43,31,215, is %v", name, px)
		}
		mat.Close()
	}
}

func diff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestLoadImageErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadImage(filepath.Join(dir, "missing.png")); err == nil {
		t.Errorf("Missing file should fail")
	}

	empty := filepath.Join(dir, "empty.jpg")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadImage(empty); err == nil {
		t.Errorf("Empty file should fail")
	}

	text := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(text, []byte("ccc"), 0o644); err != nil {
		t.Fatal(err)
	}
	if DefaultRegistry().CanLoadFile(text) {
		t.Errorf("Text files should not be loadable")
	}
	if _, err := LoadImage(text); err == nil {
		t.Errorf("Loading a text file should fail")
	}

	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadImage(garbage); err == nil {
		t.Errorf("Corrupt file should fail")
	}
}

func TestFormats(t *testing.T) {
	for path, want := range map[string]FormatType{
		"a/b/tile.JPG": FormatJPEG,
		"tile.webp":    FormatWEBP,
		"tile.tif":     FormatTIFF,
		"tile.cr3":     FormatUnknown,
		"tile":         FormatUnknown,
	} {
		if got := GetFileFormat(path); got != want {
			t.Errorf("Format of %s should be %s, is %s", path, want, got)
		}
	}
	if !IsImageFile("x.png") || IsImageFile("x.db") {
		t.Errorf("IsImageFile gives wrong answers")
	}
	if exts := GetSupportedExtensions(); len(exts) != 8 || exts[0] != ".bmp" {
		t.Errorf("Unexpected extension list %v", exts)
	}
}

func TestCaptureInfo(t *testing.T) {
	info := CaptureInfo{Make: "Canon", Model: "EOS R6"}
	if info.Camera() != "Canon EOS R6" || info.Empty() {
		t.Errorf("Unexpected camera %q", info.Camera())
	}
	if (CaptureInfo{}).Camera() != "" || !(CaptureInfo{}).Empty() {
		t.Errorf("Zero value should be empty")
	}

	if !ExiftoolAvailable() {
		t.Skip("exiftool not installed")
	}
	path := writeImage(t, "plain.png", func(f *os.File) error { return png.Encode(f, testImage()) })
	got, err := ReadCaptureInfo(path)
	if err != nil {
		t.Fatalf("Reading metadata failed: %v", err)
	}
	if !got.Empty() {
		t.Errorf("A plain PNG has no camera data, got %+v", got)
	}
}
