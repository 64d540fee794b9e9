package imageprocessor

import (
	"fmt"
	"os/exec"
	"time"

	"github.com/barasher/go-exiftool"
)

// CaptureInfo describes the camera that took the photo a crop was cut from.
// Crops written by the detector usually keep the EXIF block of the photo.
type CaptureInfo struct {
	Make       string
	Model      string
	CapturedAt time.Time
}

// Camera returns make and model in one string.
func (c CaptureInfo) Camera() string {
	switch {
	case c.Make == "":
		return c.Model
	case c.Model == "":
		return c.Make
	}
	return c.Make + " " + c.Model
}

// Empty reports whether no metadata was found.
func (c CaptureInfo) Empty() bool {
	return c.Make == "" && c.Model == "" && c.CapturedAt.IsZero()
}

const exifTimeLayout = "2006:01:02 15:04:05"

// MetadataReader keeps one exiftool process open for a batch of files.
type MetadataReader struct {
	et *exiftool.Exiftool
}

// ExiftoolAvailable checks if the exiftool binary is on the PATH
func ExiftoolAvailable() bool {
	_, err := exec.LookPath("exiftool")
	return err == nil
}

// NewMetadataReader starts exiftool. It fails when the binary is missing.
func NewMetadataReader() (*MetadataReader, error) {
	if !ExiftoolAvailable() {
		return nil, fmt.Errorf("exiftool not available")
	}
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("cannot start exiftool: %v", err)
	}
	return &MetadataReader{et: et}, nil
}

// Close stops the exiftool process.
func (m *MetadataReader) Close() error {
	if m == nil || m.et == nil {
		return nil
	}
	return m.et.Close()
}

// ReadCaptureInfo extracts camera and capture time from path. Missing tags
// leave the fields empty.
func (m *MetadataReader) ReadCaptureInfo(path string) (CaptureInfo, error) {
	fileInfos := m.et.ExtractMetadata(path)
	if len(fileInfos) == 0 {
		return CaptureInfo{}, fmt.Errorf("no metadata extracted from %s", path)
	}
	fileInfo := fileInfos[0]
	if fileInfo.Err != nil {
		return CaptureInfo{}, fmt.Errorf("cannot read metadata of %s: %v", path, fileInfo.Err)
	}

	var info CaptureInfo
	info.Make, _ = fileInfo.GetString("Make")
	info.Model, _ = fileInfo.GetString("Model")
	for _, tag := range []string{"DateTimeOriginal", "CreateDate"} {
		value, err := fileInfo.GetString(tag)
		if err != nil {
			continue
		}
		if t, err := time.ParseInLocation(exifTimeLayout, value, time.Local); err == nil {
			info.CapturedAt = t
			break
		}
	}
	return info, nil
}

// ReadCaptureInfo reads the metadata of a single file. Batch callers should
// keep a MetadataReader instead.
func ReadCaptureInfo(path string) (CaptureInfo, error) {
	m, err := NewMetadataReader()
	if err != nil {
		return CaptureInfo{}, err
	}
	defer m.Close()
	return m.ReadCaptureInfo(path)
}
