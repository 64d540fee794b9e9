package matcher

import (
	"errors"
	"fmt"

	"tantrixfinder/palette"
)

// ErrNoConfidentMatch is returned by Result.Err for unresolved sequences.
var ErrNoConfidentMatch = errors.New("no confident match")

// Status is the outcome of a match.
type Status string

const (
	StatusExact            Status = "exact"
	StatusBestEffort       Status = "best-effort"
	StatusNoConfidentMatch Status = "no-match"
)

// Result describes how a sequence was classified.
type Result struct {
	Status Status
	// TileIndex is zero unless the status is exact or best-effort.
	TileIndex int
	// Distance is the mismatch count of the best alignment.
	Distance int
	// Rotation r means the input equals the canonical sequence rotated left
	// by r positions.
	Rotation  int
	Reflected bool
	// Confidence is 1 - Distance/L for accepted matches, 0 otherwise.
	Confidence float64

	RunnerUp         int
	RunnerUpDistance int

	Sequence palette.Sequence
}

func (r Result) accept(c candidate, status Status, n int) Result {
	r.Status = status
	r.TileIndex = c.entry.Index
	r.Distance = c.distance
	r.Rotation = c.rotation
	r.Reflected = c.reflected
	r.Confidence = 1 - float64(c.distance)/float64(n)
	return r
}

// OK reports whether a tile was identified.
func (r Result) OK() bool {
	return r.Status == StatusExact || r.Status == StatusBestEffort
}

// Exact reports whether the sequence matched without any mismatch.
func (r Result) Exact() bool {
	return r.Status == StatusExact
}

// Err returns ErrNoConfidentMatch for unresolved results and nil otherwise.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%w for %s (best distance %d)", ErrNoConfidentMatch, r.Sequence, r.Distance)
}

func (r Result) String() string {
	if !r.OK() {
		return fmt.Sprintf("%s: sequence %s, best distance %d", r.Status, r.Sequence, r.Distance)
	}
	mirror := ""
	if r.Reflected {
		mirror = ", mirrored"
	}
	return fmt.Sprintf("tile %d (%s, rotation %d%s, distance %d, confidence %.2f)",
		r.TileIndex, r.Status, r.Rotation, mirror, r.Distance, r.Confidence)
}
