package scanner

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"tantrixfinder/catalog"
	"tantrixfinder/database"
	"tantrixfinder/imageprocessor"
	"tantrixfinder/matcher"
	"tantrixfinder/palette"
	"tantrixfinder/sampler"
)

// fakeClassifier answers by file name, ignoring a _tile_ suffix, and records
// the shapes it was given.
type fakeClassifier struct {
	mu     sync.Mutex
	shapes map[string]catalog.Shape
}

func (f *fakeClassifier) ClassifyFile(path string, shape catalog.Shape) (matcher.Result, error) {
	f.mu.Lock()
	f.shapes[filepath.Base(path)] = shape
	f.mu.Unlock()

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem, _, _ = strings.Cut(stem, "_tile_")
	switch stem {
	case "a":
		return matcher.Result{
			Status:     matcher.StatusExact,
			TileIndex:  8,
			Rotation:   2,
			Confidence: 1,
			Sequence:   palette.MustParseSequence("223311"),
		}, nil
	case "b":
		return matcher.Result{
			Status:   matcher.StatusNoConfidentMatch,
			Distance: 1,
			Sequence: palette.MustParseSequence("112132"),
		}, nil
	}
	return matcher.Result{Status: matcher.StatusNoConfidentMatch}, sampler.ErrInsufficientColorSeparation
}

func (f *fakeClassifier) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.shapes)
}

func newFake() *fakeClassifier {
	return &fakeClassifier{shapes: make(map[string]catalog.Shape)}
}

type fixedMetadata struct{}

func (fixedMetadata) ReadCaptureInfo(string) (imageprocessor.CaptureInfo, error) {
	return imageprocessor.CaptureInfo{Make: "Canon", Model: "EOS R6"}, nil
}

func setupCrops(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := []string{
		filepath.Join("ccc", "a.png"),
		filepath.Join("ccc", "b.png"),
		filepath.Join("misc", "c.jpg"),
		"notes.txt",
	}
	for _, f := range files {
		path := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("crop"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func setupDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "tiles.db")
}

func scan(t *testing.T, dbPath string, clf TileClassifier, options ScanOptions) ScanSummary {
	t.Helper()
	db, err := database.InitDatabase(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	options.Output = io.Discard
	options.MaxWorkers = 2
	summary, err := ScanAndStoreFolder(context.Background(), db, clf, options)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	return summary
}

func TestScanClassifiesAndStores(t *testing.T) {
	root := setupCrops(t)
	dbPath := setupDB(t)
	clf := newFake()

	summary := scan(t, dbPath, clf, ScanOptions{FolderPath: root, SourcePrefix: "box1", Metadata: fixedMetadata{}})
	if summary.TotalFiles != 3 || summary.Processed != 3 {
		t.Errorf("Should process 3 of 3 crops, summary %+v", summary)
	}
	if summary.Recognized != 1 || summary.NoMatch != 1 || summary.Errors != 1 {
		t.Errorf("Expected 1 recognized, 1 no match, 1 error, got %+v", summary)
	}
	if len(summary.Tiles) != 1 || summary.Tiles[0] != 8 {
		t.Errorf("Tiles should be [8], are %v", summary.Tiles)
	}
	if clf.shapes["a.png"] != catalog.ShapeCCC || clf.shapes["c.jpg"] != catalog.ShapeUnknown {
		t.Errorf("Detector classes not passed on: %v", clf.shapes)
	}

	db, err := database.OpenDatabase(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	rec, err := database.GetClassification(db, filepath.Join(root, "ccc", "a.png"), "box1")
	if err != nil || rec == nil {
		t.Fatalf("Record for a.png missing (%v)", err)
	}
	if rec.TileIndex != 8 || rec.Rotation != 2 || rec.Sequence != "223311" || rec.DetectorClass != "ccc" || rec.Camera != "Canon EOS R6" {
		t.Errorf("Unexpected record %+v", rec)
	}

	rec, _ = database.GetClassification(db, filepath.Join(root, "misc", "c.jpg"), "box1")
	if rec == nil || rec.Status != database.StatusError || rec.Error == "" {
		t.Errorf("Failed crop should be stored with its error, got %+v", rec)
	}

	stats, err := database.GetScanStats(db, "box1")
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalImages != 3 || stats.Exact != 1 || stats.NoMatch != 1 || stats.ErrorCount != 1 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestScanSkipsUnchanged(t *testing.T) {
	root := setupCrops(t)
	dbPath := setupDB(t)

	scan(t, dbPath, newFake(), ScanOptions{FolderPath: root})

	again := newFake()
	summary := scan(t, dbPath, again, ScanOptions{FolderPath: root})
	if summary.Skipped != 3 || again.calls() != 0 {
		t.Errorf("Second scan should skip all crops, skipped %d, classified %d", summary.Skipped, again.calls())
	}

	forced := newFake()
	summary = scan(t, dbPath, forced, ScanOptions{FolderPath: root, ForceRewrite: true})
	if summary.Skipped != 0 || forced.calls() != 3 {
		t.Errorf("Forced scan should classify all crops, skipped %d, classified %d", summary.Skipped, forced.calls())
	}
}

func TestScanRenamesRecognized(t *testing.T) {
	root := setupCrops(t)
	dbPath := setupDB(t)

	scan(t, dbPath, newFake(), ScanOptions{FolderPath: root, Rename: true})

	renamed := filepath.Join(root, "ccc", "a_tile_8.png")
	if _, err := os.Stat(renamed); err != nil {
		t.Errorf("a.png should be renamed to a_tile_8.png: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "ccc", "b.png")); err != nil {
		t.Errorf("Unrecognized b.png should keep its name: %v", err)
	}

	db, _ := database.OpenDatabase(dbPath)
	defer db.Close()
	if rec, _ := database.GetClassification(db, renamed, ""); rec == nil || rec.TileIndex != 8 {
		t.Errorf("Record should follow the renamed file, got %+v", rec)
	}
}

func TestForcedRenameKeepsOneRecordPerCrop(t *testing.T) {
	root := setupCrops(t)
	dbPath := setupDB(t)

	scan(t, dbPath, newFake(), ScanOptions{FolderPath: root, SourcePrefix: "box1"})
	scan(t, dbPath, newFake(), ScanOptions{FolderPath: root, SourcePrefix: "box1", ForceRewrite: true, Rename: true})
	// already renamed crops keep their name and their single record
	scan(t, dbPath, newFake(), ScanOptions{FolderPath: root, SourcePrefix: "box1", ForceRewrite: true, Rename: true})

	db, err := database.OpenDatabase(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	stats, err := database.GetScanStats(db, "box1")
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalImages != 3 || stats.Exact != 1 {
		t.Errorf("Three crops should have three records with one exact, stats %+v", stats)
	}
	if rec, _ := database.GetClassification(db, filepath.Join(root, "ccc", "a.png"), "box1"); rec != nil {
		t.Errorf("Record of the old name should be gone, is %+v", rec)
	}
	if rec, _ := database.GetClassification(db, filepath.Join(root, "ccc", "a_tile_8.png"), "box1"); rec == nil || rec.TileIndex != 8 {
		t.Errorf("Renamed crop should carry tile 8, got %+v", rec)
	}
}

func TestScanCancelled(t *testing.T) {
	root := setupCrops(t)
	db, err := database.InitDatabase(setupDB(t))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	clf := newFake()
	summary, err := ScanAndStoreFolder(ctx, db, clf, ScanOptions{FolderPath: root, Output: io.Discard})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Cancelled scan should return context.Canceled, got %v", err)
	}
	if summary.Processed != 0 || clf.calls() != 0 {
		t.Errorf("Nothing should be classified after cancel, got %+v", summary)
	}
}

func TestFileHelpers(t *testing.T) {
	for path, want := range map[string]catalog.Shape{
		filepath.Join("crops", "clh", "x.png"): catalog.ShapeCLH,
		filepath.Join("crops", "CXX", "x.png"): catalog.ShapeCXX,
		filepath.Join("crops", "x.png"):        catalog.ShapeUnknown,
	} {
		if got := DetectorClass(path); got != want {
			t.Errorf("Class of %s should be %q, is %q", path, want, got)
		}
	}

	for in, want := range map[string]string{
		"ccc/img_3.png":         "ccc/img_3_tile_8.png",
		"ccc/img_3_tile_12.png": "ccc/img_3_tile_8.png",
		"img":                   "img_tile_8",
	} {
		if got := TileFileName(in, 8); got != want {
			t.Errorf("TileFileName(%s) should be %s, is %s", in, want, got)
		}
	}
}
