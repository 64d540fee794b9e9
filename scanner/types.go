package scanner

import (
	"io"
	"sync"
	"time"

	"tantrixfinder/catalog"
	"tantrixfinder/imageprocessor"
	"tantrixfinder/matcher"
	"tantrixfinder/types"
)

// TileClassifier classifies one crop file. A non-empty shape is the detector
// class of the crop.
type TileClassifier interface {
	ClassifyFile(path string, shape catalog.Shape) (matcher.Result, error)
}

// MetadataSource reads capture metadata of a crop.
type MetadataSource interface {
	ReadCaptureInfo(path string) (imageprocessor.CaptureInfo, error)
}

// ScanOptions defines the options for scanning
type ScanOptions struct {
	FolderPath   string
	SourcePrefix string
	ForceRewrite bool
	// Rename appends _tile_<n> to recognised crop files
	Rename     bool
	DebugMode  bool
	MaxWorkers int
	// Metadata is optional
	Metadata MetadataSource
	// Output receives progress and summary; nil means stdout
	Output io.Writer
}

// ProcessTileResult holds the result of processing one crop
type ProcessTileResult struct {
	Path string
	// PreviousPath is set when the crop was renamed
	PreviousPath string
	Record       types.TileRecord
	Success      bool
	Skipped      bool
	Error        error
}

// FileStats tracks information about files to be processed
type FileStats struct {
	totalFiles int
	byClass    map[catalog.Shape]int
}

// ScanSummary is what a scan did
type ScanSummary struct {
	TotalFiles int
	Processed  int
	Skipped    int
	Recognized int
	NoMatch    int
	Errors     int
	// Tiles lists the distinct tile numbers recognised, ascending
	Tiles   []int
	Elapsed time.Duration
}

// RecognitionRatio is the share of classified crops that got a tile number
func (s ScanSummary) RecognitionRatio() float64 {
	classified := s.Processed - s.Skipped
	if classified <= 0 {
		return 0
	}
	return float64(s.Recognized) / float64(classified)
}

// ProgressTracker tracks progress of the scan operation
type ProgressTracker struct {
	processed  int
	skipped    int
	recognized int
	noMatch    int
	errors     int
	tiles      map[int]bool
	ticker     *time.Ticker
	done       chan bool
	mu         sync.Mutex
	totalFiles int
	out        io.Writer
}
