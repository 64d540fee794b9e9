package types

// TileRecord holds the classification of one crop as stored in the database
type TileRecord struct {
	ID            int64   `json:"id"`
	Path          string  `json:"path"`
	SourcePrefix  string  `json:"source_prefix"`
	DetectorClass string  `json:"detector_class"`
	Status        string  `json:"status"`
	TileIndex     int     `json:"tile_index"`
	Rotation      int     `json:"rotation"`
	Distance      int     `json:"distance"`
	Confidence    float64 `json:"confidence"`
	Sequence      string  `json:"sequence"`
	Error         string  `json:"error,omitempty"`
	Camera        string  `json:"camera,omitempty"`
	CapturedAt    string  `json:"captured_at,omitempty"`
	ModifiedAt    string  `json:"modified_at"`
	ClassifiedAt  string  `json:"classified_at"`
}

// Recognized reports whether a tile number was assigned
func (r TileRecord) Recognized() bool {
	return r.TileIndex > 0
}
