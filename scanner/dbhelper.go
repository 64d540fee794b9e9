package scanner

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"tantrixfinder/database"
	"tantrixfinder/logging"
)

// checkAndSkipIfUnchanged checks if a crop can be skipped because it was
// classified before and hasn't changed since
func checkAndSkipIfUnchanged(db *sql.DB, path string, sourcePrefix string, options ScanOptions) *ProcessTileResult {
	exists, storedModTime, err := database.CheckClassified(db, path, sourcePrefix)
	if err != nil {
		return &ProcessTileResult{
			Path:  path,
			Error: fmt.Errorf("database error for %s: %v", path, err),
		}
	}
	if !exists {
		return nil
	}

	fileInfo, err := os.Stat(path)
	if err != nil {
		return &ProcessTileResult{
			Path:  path,
			Error: fmt.Errorf("cannot stat file %s: %v", path, err),
		}
	}

	storedTime, err := time.Parse(time.RFC3339, storedModTime)
	if err != nil {
		// Unreadable timestamp, classify again
		logging.LogWarning("cannot parse stored time for %s: %v", path, err)
		return nil
	}

	if !fileInfo.ModTime().Truncate(time.Second).After(storedTime) {
		if options.DebugMode {
			logging.DebugLog("Skipping unchanged crop: %s", path)
		}
		return &ProcessTileResult{
			Path:    path,
			Success: true,
			Skipped: true,
		}
	}
	return nil
}
