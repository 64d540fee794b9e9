package database

import (
	"database/sql"
	"fmt"
	"time"

	"tantrixfinder/logging"
	"tantrixfinder/matcher"
	"tantrixfinder/types"

	_ "github.com/mattn/go-sqlite3"
)

// StatusError is stored for crops that could not be sampled at all.
const StatusError = "error"

// InitDatabase initializes and returns a database connection
func InitDatabase(dbPath string) (*sql.DB, error) {
	db, err := OpenDatabase(dbPath)
	if err != nil {
		return nil, err
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS classifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL,
		source_prefix TEXT NOT NULL DEFAULT '',
		detector_class TEXT,
		status TEXT NOT NULL,
		tile_index INTEGER,
		rotation INTEGER,
		distance INTEGER,
		confidence REAL,
		sequence TEXT,
		error TEXT,
		modified_at TEXT,
		classified_at TEXT,
		UNIQUE(path, source_prefix)
	);
	CREATE INDEX IF NOT EXISTS idx_path ON classifications(path);
	CREATE INDEX IF NOT EXISTS idx_tile_index ON classifications(tile_index);`

	if _, err = db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, err
	}

	// Capture metadata columns were added after the first schema
	for _, column := range []string{"camera", "captured_at"} {
		if err := ensureColumn(db, "classifications", column, "TEXT"); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}

func ensureColumn(db *sql.DB, table, column, columnType string) error {
	var hasColumn bool
	err := db.QueryRow(
		fmt.Sprintf("SELECT COUNT(*) FROM pragma_table_info('%s') WHERE name=?", table), column,
	).Scan(&hasColumn)
	if err != nil {
		return fmt.Errorf("error checking for %s column: %v", column, err)
	}
	if hasColumn {
		return nil
	}

	if _, err = db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s;", table, column, columnType)); err != nil {
		return fmt.Errorf("error adding %s column: %v", column, err)
	}
	logging.DebugLog("Added '%s' column to existing database schema", column)
	return nil
}

// OpenDatabase opens an existing database connection. sqlite allows a single
// writer, so the pool is limited to one connection.
func OpenDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// CheckClassified checks if a crop was classified before and returns the file
// modification time recorded with it
func CheckClassified(db *sql.DB, path string, sourcePrefix string) (bool, string, error) {
	var storedModTime sql.NullString
	err := db.QueryRow(
		"SELECT modified_at FROM classifications WHERE path = ? AND source_prefix = ?",
		path, sourcePrefix,
	).Scan(&storedModTime)
	if err == sql.ErrNoRows {
		return false, "", nil
	}
	if err != nil {
		return false, "", fmt.Errorf("database error for %s: %v", path, err)
	}
	return true, storedModTime.String, nil
}

// StoreClassification stores a classification. Existing rows are replaced
// when forceRewrite is set and kept otherwise.
func StoreClassification(db *sql.DB, record types.TileRecord, forceRewrite bool) error {
	verb := "INSERT OR IGNORE"
	if forceRewrite {
		verb = "INSERT OR REPLACE"
	}

	stmt, err := db.Prepare(verb + ` INTO classifications (
			path, source_prefix, detector_class, status, tile_index, rotation, distance,
			confidence, sequence, error, camera, captured_at, modified_at, classified_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("cannot prepare statement for %s: %v", record.Path, err)
	}
	defer stmt.Close()

	classifiedAt := record.ClassifiedAt
	if classifiedAt == "" {
		classifiedAt = time.Now().Format(time.RFC3339)
	}

	_, err = stmt.Exec(
		record.Path,
		record.SourcePrefix,
		record.DetectorClass,
		record.Status,
		record.TileIndex,
		record.Rotation,
		record.Distance,
		record.Confidence,
		record.Sequence,
		record.Error,
		record.Camera,
		record.CapturedAt,
		record.ModifiedAt,
		classifiedAt,
	)
	if err != nil {
		return fmt.Errorf("cannot insert data for %s: %v", record.Path, err)
	}
	return nil
}

// RemoveClassification deletes the record of a crop, used when the crop was
// renamed and its record is stored again under the new path
func RemoveClassification(db *sql.DB, path string, sourcePrefix string) error {
	_, err := db.Exec("DELETE FROM classifications WHERE path = ? AND source_prefix = ?", path, sourcePrefix)
	if err != nil {
		return fmt.Errorf("cannot remove record for %s: %v", path, err)
	}
	return nil
}

// GetClassification returns the stored record for a crop, nil if there is none
func GetClassification(db *sql.DB, path string, sourcePrefix string) (*types.TileRecord, error) {
	var r types.TileRecord
	var detectorClass, sequence, errMsg, camera, capturedAt, modifiedAt, classifiedAt sql.NullString
	var tileIndex, rotation, distance sql.NullInt64
	var confidence sql.NullFloat64

	err := db.QueryRow(`
		SELECT id, path, source_prefix, detector_class, status, tile_index, rotation, distance,
			confidence, sequence, error, camera, captured_at, modified_at, classified_at
		FROM classifications WHERE path = ? AND source_prefix = ?`, path, sourcePrefix,
	).Scan(&r.ID, &r.Path, &r.SourcePrefix, &detectorClass, &r.Status, &tileIndex, &rotation, &distance,
		&confidence, &sequence, &errMsg, &camera, &capturedAt, &modifiedAt, &classifiedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read classification of %s: %v", path, err)
	}

	r.DetectorClass = detectorClass.String
	r.TileIndex = int(tileIndex.Int64)
	r.Rotation = int(rotation.Int64)
	r.Distance = int(distance.Int64)
	r.Confidence = confidence.Float64
	r.Sequence = sequence.String
	r.Error = errMsg.String
	r.Camera = camera.String
	r.CapturedAt = capturedAt.String
	r.ModifiedAt = modifiedAt.String
	r.ClassifiedAt = classifiedAt.String
	return &r, nil
}

// prefixFilter returns the WHERE clause and arguments for an optional prefix
func prefixFilter(sourcePrefix string) (string, []interface{}) {
	if sourcePrefix == "" {
		return "", nil
	}
	return " WHERE source_prefix = ?", []interface{}{sourcePrefix}
}

// ListRecognizedTiles returns the distinct tile numbers found, ascending
func ListRecognizedTiles(db *sql.DB, sourcePrefix string) ([]int, error) {
	where, args := prefixFilter(sourcePrefix)
	if where == "" {
		where = " WHERE tile_index > 0"
	} else {
		where += " AND tile_index > 0"
	}

	rows, err := db.Query("SELECT DISTINCT tile_index FROM classifications"+where+" ORDER BY tile_index", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tiles: %v", err)
	}
	defer rows.Close()

	var tiles []int
	for rows.Next() {
		var tile int
		if err := rows.Scan(&tile); err != nil {
			return nil, fmt.Errorf("failed to read tile: %v", err)
		}
		tiles = append(tiles, tile)
	}
	return tiles, rows.Err()
}

// ScanStats contains statistics over stored classifications
type ScanStats struct {
	TotalImages   int
	Exact         int
	BestEffort    int
	NoMatch       int
	ErrorCount    int
	DistinctTiles int
}

// Recognized is the number of crops that got a tile number
func (s ScanStats) Recognized() int {
	return s.Exact + s.BestEffort
}

// RecognitionRatio is the share of crops that got a tile number
func (s ScanStats) RecognitionRatio() float64 {
	if s.TotalImages == 0 {
		return 0
	}
	return float64(s.Recognized()) / float64(s.TotalImages)
}

// GetScanStats retrieves statistics about classified crops
func GetScanStats(db *sql.DB, sourcePrefix string) (*ScanStats, error) {
	var stats ScanStats
	where, args := prefixFilter(sourcePrefix)

	rows, err := db.Query("SELECT status, COUNT(*) FROM classifications"+where+" GROUP BY status", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count classifications: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to read counts: %v", err)
		}
		stats.TotalImages += count
		switch status {
		case string(matcher.StatusExact):
			stats.Exact = count
		case string(matcher.StatusBestEffort):
			stats.BestEffort = count
		case StatusError:
			stats.ErrorCount = count
		default:
			stats.NoMatch += count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	tiles, err := ListRecognizedTiles(db, sourcePrefix)
	if err != nil {
		return nil, err
	}
	stats.DistinctTiles = len(tiles)

	return &stats, nil
}
