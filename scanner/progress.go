package scanner

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"tantrixfinder/logging"
)

// NewProgressTracker initializes the progress tracker and starts the display
func NewProgressTracker(stats FileStats, out io.Writer) *ProgressTracker {
	tracker := &ProgressTracker{
		ticker:     time.NewTicker(500 * time.Millisecond),
		done:       make(chan bool),
		tiles:      make(map[int]bool),
		totalFiles: stats.totalFiles,
		out:        out,
	}

	go tracker.displayProgress()

	return tracker
}

// displayProgress shows the progress periodically
func (p *ProgressTracker) displayProgress() {
	for {
		select {
		case <-p.done:
			return
		case <-p.ticker.C:
			p.mu.Lock()
			if p.errors > 0 {
				fmt.Fprintf(p.out, "\rProgress: %d/%d (Recognized: %d, Errors: %d)",
					p.processed, p.totalFiles, p.recognized, p.errors)
			} else {
				fmt.Fprintf(p.out, "\rProgress: %d/%d (Recognized: %d)",
					p.processed, p.totalFiles, p.recognized)
			}
			p.mu.Unlock()
		}
	}
}

// add updates the tracker state with one result
func (p *ProgressTracker) add(result ProcessTileResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processed++
	switch {
	case result.Skipped:
		p.skipped++
		return
	case !result.Success:
		p.errors++
	case result.Record.Recognized():
		p.recognized++
		p.tiles[result.Record.TileIndex] = true
	default:
		p.noMatch++
	}

	if result.Error != nil {
		logging.LogTileClassified(result.Path, "", result.Error)
	} else {
		logging.LogTileClassified(result.Path, describeRecord(result), nil)
	}
}

func describeRecord(result ProcessTileResult) string {
	r := result.Record
	if !r.Recognized() {
		return fmt.Sprintf("%s, sequence %s", r.Status, r.Sequence)
	}
	return fmt.Sprintf("tile %d (%s, rotation %d, distance %d)", r.TileIndex, r.Status, r.Rotation, r.Distance)
}

// Stop ends the progress tracking
func (p *ProgressTracker) Stop() {
	p.ticker.Stop()
	p.done <- true
}

// Summary returns the counts collected so far
func (p *ProgressTracker) Summary() ScanSummary {
	p.mu.Lock()
	defer p.mu.Unlock()

	tiles := make([]int, 0, len(p.tiles))
	for tile := range p.tiles {
		tiles = append(tiles, tile)
	}
	sort.Ints(tiles)

	return ScanSummary{
		TotalFiles: p.totalFiles,
		Processed:  p.processed,
		Skipped:    p.skipped,
		Recognized: p.recognized,
		NoMatch:    p.noMatch,
		Errors:     p.errors,
		Tiles:      tiles,
	}
}

// PrintStartupInfo displays information about the scan before starting
func PrintStartupInfo(out io.Writer, stats FileStats, options ScanOptions) {
	fmt.Fprintf(out, "Starting tile classification...\nTotal crops to process: %d\n", stats.totalFiles)
	if len(stats.byClass) > 0 {
		classes := make([]string, 0, len(stats.byClass))
		for class, n := range stats.byClass {
			classes = append(classes, fmt.Sprintf("%s: %d", class, n))
		}
		sort.Strings(classes)
		fmt.Fprintf(out, "Detector classes: %s\n", strings.Join(classes, ", "))
	}
	fmt.Fprintf(out, "Force rewrite mode: %v\n", options.ForceRewrite)
	if options.Rename {
		fmt.Fprintf(out, "Recognized crops will be renamed\n")
	}

	if options.SourcePrefix != "" {
		fmt.Fprintf(out, "Source prefix: %s\n", options.SourcePrefix)
	}

	if options.DebugMode {
		fmt.Fprintf(out, "Debug mode: enabled\n")
		logging.DebugLog("Found %d crops to process (%v)", stats.totalFiles, stats.byClass)
	}
}

// PrintCompletionStats displays statistics after scan completion
func PrintCompletionStats(out io.Writer, summary ScanSummary, options ScanOptions) {
	if options.DebugMode {
		logging.DebugLog("Scan completed in %v. Processed: %d, Skipped: %d, Recognized: %d, No match: %d, Errors: %d",
			summary.Elapsed, summary.Processed, summary.Skipped, summary.Recognized, summary.NoMatch, summary.Errors)
	}

	fmt.Fprintln(out, "\nClassification complete.")
	fmt.Fprintf(out, "Processed %d crops in %v.\n", summary.Processed, summary.Elapsed.Round(time.Second))
	if summary.Skipped > 0 {
		fmt.Fprintf(out, "Skipped %d unchanged crops.\n", summary.Skipped)
	}
	fmt.Fprintf(out, "Recognized %d of %d classified crops (%.1f%%).\n",
		summary.Recognized, summary.Processed-summary.Skipped, summary.RecognitionRatio()*100)

	if len(summary.Tiles) > 0 {
		nums := make([]string, len(summary.Tiles))
		for i, tile := range summary.Tiles {
			nums[i] = fmt.Sprint(tile)
		}
		fmt.Fprintf(out, "Tiles found: %s\n", strings.Join(nums, ", "))
	}

	if summary.Errors > 0 {
		fmt.Fprintf(out, "Encountered %d errors during classification.\n", summary.Errors)
		fmt.Fprintln(out, "Check the log file for details.")
	}
}
