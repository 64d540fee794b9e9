// Package scanner classifies every crop below a folder and stores the
// results.
package scanner

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"tantrixfinder/catalog"
	"tantrixfinder/database"
	"tantrixfinder/logging"
	"tantrixfinder/types"
)

// ScanAndStoreFolder classifies the crops below options.FolderPath with clf
// and stores one record per crop. A failing crop is recorded and never stops
// the scan. Cancelling ctx stops scheduling new crops; the summary then covers
// the crops finished so far and ctx's error is returned.
func ScanAndStoreFolder(ctx context.Context, db *sql.DB, clf TileClassifier, options ScanOptions) (ScanSummary, error) {
	out := options.Output
	if out == nil {
		out = os.Stdout
	}
	workers := options.MaxWorkers
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	resultsChan := make(chan ProcessTileResult, 100)
	semaphore := make(chan struct{}, workers)

	fileStats := countFilesToProcess(options)
	PrintStartupInfo(out, fileStats, options)

	tracker := NewProgressTracker(fileStats, out)
	defer tracker.Stop()

	// Single writer: sqlite serialises writes anyway
	stored := make(chan struct{})
	go func() {
		defer close(stored)
		storeResults(db, resultsChan, tracker, options)
	}()

	startTime := time.Now()
	err := walkAndProcessFiles(ctx, db, clf, options, &wg, resultsChan, semaphore)

	wg.Wait()
	close(resultsChan)
	<-stored

	summary := tracker.Summary()
	summary.Elapsed = time.Since(startTime)
	PrintCompletionStats(out, summary, options)

	return summary, err
}

// countFilesToProcess counts the crops and their detector classes
func countFilesToProcess(options ScanOptions) FileStats {
	stats := FileStats{byClass: make(map[catalog.Shape]int)}

	if options.DebugMode {
		logging.DebugLog("Starting tile scan on folder: %s", options.FolderPath)
		logging.DebugLog("Force rewrite: %v, Rename: %v, Source prefix: %s",
			options.ForceRewrite, options.Rename, options.SourcePrefix)
	}

	filepath.WalkDir(options.FolderPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !IsImageFile(path) {
			return nil
		}
		stats.totalFiles++
		if class := DetectorClass(path); class != catalog.ShapeUnknown {
			stats.byClass[class]++
		}
		return nil
	})

	return stats
}

// walkAndProcessFiles traverses the directory and classifies each crop on the
// worker pool
func walkAndProcessFiles(ctx context.Context, db *sql.DB, clf TileClassifier, options ScanOptions,
	wg *sync.WaitGroup, resultsChan chan<- ProcessTileResult, semaphore chan struct{}) error {

	// Collect first so renamed crops are not visited twice
	var paths []string
	err := filepath.WalkDir(options.FolderPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if options.DebugMode {
				logging.LogError("Error accessing path %s: %v", path, err)
			}
			return nil
		}
		if !d.IsDir() && IsImageFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			resultsChan <- processTile(db, clf, p, options)
		}(path)
	}
	return nil
}

// storeResults writes the classifications and feeds the tracker
func storeResults(db *sql.DB, resultsChan <-chan ProcessTileResult, tracker *ProgressTracker, options ScanOptions) {
	for result := range resultsChan {
		if !result.Skipped && result.Record.Path != "" {
			if result.PreviousPath != "" {
				if err := database.RemoveClassification(db, result.PreviousPath, options.SourcePrefix); err != nil {
					logging.LogError("%v", err)
				}
			}
			if err := database.StoreClassification(db, result.Record, options.ForceRewrite); err != nil {
				logging.LogError("%v", err)
				result.Success = false
				result.Error = err
			}
		}
		tracker.add(result)
	}
}

// processTile classifies a single crop and prepares its record
func processTile(db *sql.DB, clf TileClassifier, path string, options ScanOptions) ProcessTileResult {
	result := ProcessTileResult{Path: path}

	if !options.ForceRewrite {
		if skipResult := checkAndSkipIfUnchanged(db, path, options.SourcePrefix, options); skipResult != nil {
			return *skipResult
		}
	}

	fileInfo, err := os.Stat(path)
	if err != nil {
		result.Error = fmt.Errorf("cannot stat file %s: %v", path, err)
		return result
	}

	class := DetectorClass(path)
	record := types.TileRecord{
		Path:          path,
		SourcePrefix:  options.SourcePrefix,
		DetectorClass: string(class),
		ModifiedAt:    fileInfo.ModTime().Format(time.RFC3339),
	}

	if options.Metadata != nil {
		info, err := options.Metadata.ReadCaptureInfo(path)
		if err != nil {
			logging.DebugLog("No capture metadata for %s: %v", path, err)
		} else {
			record.Camera = info.Camera()
			if !info.CapturedAt.IsZero() {
				record.CapturedAt = info.CapturedAt.Format(time.RFC3339)
			}
		}
	}

	res, err := clf.ClassifyFile(path, class)
	if err != nil {
		record.Status = database.StatusError
		record.Error = err.Error()
		record.Sequence = res.Sequence.String()
		result.Record = record
		result.Error = err
		return result
	}

	record.Status = string(res.Status)
	record.TileIndex = res.TileIndex
	record.Rotation = res.Rotation
	record.Distance = res.Distance
	record.Confidence = res.Confidence
	record.Sequence = res.Sequence.String()

	if options.Rename && res.OK() {
		renamed := TileFileName(path, res.TileIndex)
		if renamed != path {
			if err := os.Rename(path, renamed); err != nil {
				logging.LogWarning("cannot rename %s: %v", path, err)
			} else {
				record.Path = renamed
				result.Path = renamed
				result.PreviousPath = path
			}
		}
	}

	result.Record = record
	result.Success = true
	return result
}
