package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"time"

	"tantrixfinder/catalog"
	"tantrixfinder/classifier"
	"tantrixfinder/database"
	"tantrixfinder/imageprocessor"
	"tantrixfinder/logging"
	"tantrixfinder/matcher"
	"tantrixfinder/sampler"
	"tantrixfinder/scanner"
	"tantrixfinder/signalhandler"
	"tantrixfinder/utils"
)

func main() {
	runtime.GOMAXPROCS(signalhandler.GetOptimalProcs())

	// Parse command line arguments into a map
	args := utils.ParseArguments()
	command, hasCommand := args["command"]

	dbPath := utils.GetDefaultDatabasePath()
	if customDB, ok := args["database"]; ok && customDB != "" {
		dbPath = customDB
	} else if customDB, ok := args["db"]; ok && customDB != "" {
		// Allow --db as an alias for --database
		dbPath = customDB
	}

	debugMode := false
	if _, ok := args["debug"]; ok {
		debugMode = true
		logPath := "tantrixfinder.log"
		if customLogPath, ok := args["logfile"]; ok && customLogPath != "" {
			logPath = customLogPath
		}
		if err := logging.SetupLogger(logPath); err != nil {
			fmt.Printf("Warning: Failed to setup logging: %v\n", err)
		} else {
			fmt.Printf("Debug mode enabled. Logging to: %s\n", logPath)
			defer logging.CloseLogger()
		}
	}

	showUsage := !hasCommand
	if command == "scan" && args["folder"] == "" {
		showUsage = true
	}
	if command == "classify" && args["image"] == "" {
		showUsage = true
	}
	if showUsage {
		utils.PrintUsage()
		os.Exit(1)
	}

	var code int
	switch command {
	case "classify":
		code = handleClassifyCommand(args)
	case "scan":
		code = handleScanCommand(args, dbPath, debugMode)
	case "catalog":
		code = handleCatalogCommand(args)
	case "stats":
		code = handleStatsCommand(args, dbPath)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		utils.PrintUsage()
		code = 1
	}

	logging.CloseLogger()
	os.Exit(code)
}

// loadCatalog returns the built-in catalog or the one named by --catalog
func loadCatalog(args map[string]string) (*catalog.Catalog, error) {
	path, ok := args["catalog"]
	if !ok || path == "" || path == "true" {
		return catalog.Tantrix(), nil
	}
	return catalog.Load(path)
}

// buildClassifier applies the tuning flags to the default settings
func buildClassifier(args map[string]string) (*classifier.Classifier, error) {
	cat, err := loadCatalog(args)
	if err != nil {
		return nil, err
	}

	cfg := sampler.DefaultConfig()
	if value, ok := args["min-separation"]; ok {
		parsed, err := utils.ParseThreshold(value, cfg.MinSeparation)
		if err != nil {
			fmt.Printf("Warning: %v\n", err)
		}
		cfg.MinSeparation = parsed
	}
	if _, ok := args["no-phase"]; ok {
		cfg.PhaseSearch = false
	}
	s, err := sampler.New(cfg)
	if err != nil {
		return nil, err
	}

	opts := matcher.DefaultOptions()
	if value, ok := args["tolerance"]; ok {
		parsed, err := utils.ParseCount(value, opts.Tolerance)
		if err != nil {
			fmt.Printf("Warning: %v\n", err)
		}
		opts.Tolerance = parsed
	}
	if value, ok := args["margin"]; ok {
		parsed, err := utils.ParseCount(value, opts.Margin)
		if err != nil {
			fmt.Printf("Warning: %v\n", err)
		}
		opts.Margin = parsed
	}
	if _, ok := args["reflect"]; ok {
		opts.AllowReflection = true
	}

	logging.DebugLog("Sampler config: %+v", cfg)
	logging.DebugLog("Matcher options: %+v", opts)
	return classifier.New(s, matcher.New(cat, opts)), nil
}

func handleClassifyCommand(args map[string]string) int {
	imagePath := args["image"]
	if _, err := os.Stat(imagePath); os.IsNotExist(err) {
		log.Fatalf("Image does not exist: %s", imagePath)
	}

	shape, err := catalog.ParseShape(args["class"])
	if err != nil {
		log.Fatalf("Invalid --class: %v", err)
	}

	clf, err := buildClassifier(args)
	if err != nil {
		log.Fatalf("Cannot set up classifier: %v", err)
	}

	res, err := clf.ClassifyFile(imagePath, shape)
	if err != nil {
		switch {
		case errors.Is(err, sampler.ErrInsufficientColorSeparation):
			fmt.Printf("Cannot read the line colours: %v\n", err)
		case errors.Is(err, sampler.ErrEmptyOrInvalidImage):
			fmt.Printf("Unusable image: %v\n", err)
		default:
			fmt.Printf("Error: %v\n", err)
		}
		return 1
	}

	fmt.Printf("Sequence: %s (%s)\n", res.Sequence, res.Sequence.Names())
	if !res.OK() {
		fmt.Printf("No confident match (best distance %d)\n", res.Distance)
		return 2
	}
	fmt.Printf("Tile: %d\n", res.TileIndex)
	fmt.Printf("Match: %s, distance %d, rotation %d, confidence %.2f\n",
		res.Status, res.Distance, res.Rotation, res.Confidence)
	if res.Reflected {
		fmt.Println("Matched the mirror image")
	}
	if res.RunnerUp > 0 {
		fmt.Printf("Runner-up: tile %d at distance %d\n", res.RunnerUp, res.RunnerUpDistance)
	}
	return 0
}

func handleScanCommand(args map[string]string, dbPath string, debugMode bool) int {
	ctx, cancel := signalhandler.SetupHandler(context.Background())
	defer cancel()

	folderPath := args["folder"]
	folderInfo, err := os.Stat(folderPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Fatalf("Folder path does not exist: %s", folderPath)
		} else {
			log.Fatalf("Cannot access folder path: %s (%v)", folderPath, err)
		}
	}
	if !folderInfo.IsDir() {
		log.Fatalf("Path is not a directory: %s", folderPath)
	}

	clf, err := buildClassifier(args)
	if err != nil {
		log.Fatalf("Cannot set up classifier: %v", err)
	}

	startTime := time.Now()

	// Initialize database with retry logic
	var db *sql.DB
	const maxRetries = 3
	for i := 0; i < maxRetries; i++ {
		db, err = database.InitDatabase(dbPath)
		if err == nil {
			break
		}
		if i < maxRetries-1 {
			log.Printf("Error initializing database (attempt %d/%d): %v - retrying...", i+1, maxRetries, err)
			time.Sleep(time.Second * time.Duration(i+1))
		} else {
			log.Fatalf("Error initializing database after %d attempts: %v", maxRetries, err)
		}
	}
	defer db.Close()

	_, force := args["force"]
	_, rename := args["rename"]
	scanOptions := scanner.ScanOptions{
		FolderPath:   folderPath,
		SourcePrefix: args["prefix"],
		ForceRewrite: force,
		Rename:       rename,
		DebugMode:    debugMode,
		MaxWorkers:   signalhandler.GetOptimalProcs(),
	}

	if _, ok := args["exif"]; ok {
		reader, err := imageprocessor.NewMetadataReader()
		if err != nil {
			fmt.Printf("Warning: capture metadata disabled: %v\n", err)
		} else {
			defer reader.Close()
			scanOptions.Metadata = reader
		}
	}

	_, err = scanner.ScanAndStoreFolder(ctx, db, clf, scanOptions)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Error scanning folder: %v", err)
	}
	if err != nil {
		fmt.Println("Scan interrupted.")
	} else {
		fmt.Printf("\nScan completed successfully!\n")
	}
	fmt.Printf("Total execution time: %v\n", time.Since(startTime))
	fmt.Printf("Database: %s\n", dbPath)

	printStats(db, scanOptions.SourcePrefix)
	if err != nil {
		return 130
	}
	return 0
}

func handleCatalogCommand(args map[string]string) int {
	cat, err := loadCatalog(args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	fmt.Print(cat.Describe())
	return 0
}

func handleStatsCommand(args map[string]string, dbPath string) int {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		log.Fatalf("Database does not exist: %s. Run scan command first.", dbPath)
	}
	db, err := database.OpenDatabase(dbPath)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer db.Close()

	if prefix := args["prefix"]; prefix != "" {
		fmt.Printf("Filtering by source prefix: %s\n", prefix)
	}
	if !printStats(db, args["prefix"]) {
		return 1
	}
	return 0
}

// printStats prints the database summary and reports whether it could
func printStats(db *sql.DB, sourcePrefix string) bool {
	stats, err := database.GetScanStats(db, sourcePrefix)
	if err != nil {
		fmt.Printf("Error reading statistics: %v\n", err)
		return false
	}
	tiles, err := database.ListRecognizedTiles(db, sourcePrefix)
	if err != nil {
		fmt.Printf("Error reading tiles: %v\n", err)
		return false
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("- Total crops classified: %d\n", stats.TotalImages)
	fmt.Printf("- Exact matches: %d\n", stats.Exact)
	fmt.Printf("- Best-effort matches: %d\n", stats.BestEffort)
	fmt.Printf("- No confident match: %d\n", stats.NoMatch)
	fmt.Printf("- Errors: %d\n", stats.ErrorCount)
	fmt.Printf("- Recognition ratio: %.1f%%\n", stats.RecognitionRatio()*100)
	fmt.Printf("- Distinct tiles: %d of %d\n", stats.DistinctTiles, catalog.Tantrix().Len())

	if len(tiles) > 0 {
		nums := make([]string, len(tiles))
		for i, tile := range tiles {
			nums[i] = fmt.Sprint(tile)
		}
		fmt.Printf("- Tiles: %s\n", strings.Join(nums, ", "))
	}
	return true
}
