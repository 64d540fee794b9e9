package catalog

import (
	"fmt"
	"sort"
	"strings"

	"tantrixfinder/palette"
)

// Shape is the arrangement of the three lines on a tile, independent of their
// colours. The names match the class labels of the tile detector.
type Shape string

const (
	ShapeUnknown Shape = ""
	// ShapeCCC has three sharp curves (aabbcc).
	ShapeCCC Shape = "ccc"
	// ShapeCLC has two sharp curves around a straight line (aabccb).
	ShapeCLC Shape = "clc"
	// ShapeCLH has a straight line between two gentle curves (abacbc).
	ShapeCLH Shape = "clh"
	// ShapeCXX has one sharp curve and two crossing gentle curves (aabcbc).
	ShapeCXX Shape = "cxx"
)

// pairing spans, sorted, per shape; a span is the shorter way around the
// hexagon between the two ends of one line.
var shapeSpans = map[string]Shape{
	"1,1,1": ShapeCCC,
	"1,1,3": ShapeCLC,
	"2,2,3": ShapeCLH,
	"1,2,2": ShapeCXX,
}

// ParseShape validates a detector class name.
func ParseShape(s string) (Shape, error) {
	switch sh := Shape(strings.ToLower(strings.TrimSpace(s))); sh {
	case ShapeUnknown, ShapeCCC, ShapeCLC, ShapeCLH, ShapeCXX:
		return sh, nil
	}
	return ShapeUnknown, fmt.Errorf("unknown tile shape %q (expected ccc, clc, clh or cxx)", s)
}

// ShapeOf derives the line arrangement of a six segment sequence whose
// colours each appear twice.
func ShapeOf(seq palette.Sequence) (Shape, error) {
	n := len(seq)
	ends := make(map[palette.Label][]int)
	for i, l := range seq {
		ends[l] = append(ends[l], i)
	}

	spans := make([]int, 0, len(ends))
	for l, pos := range ends {
		if len(pos) != 2 {
			return ShapeUnknown, fmt.Errorf("colour %v appears %d times in %s", l, len(pos), seq)
		}
		d := pos[1] - pos[0]
		spans = append(spans, min(d, n-d))
	}
	sort.Ints(spans)

	key := make([]string, len(spans))
	for i, s := range spans {
		key[i] = fmt.Sprint(s)
	}
	shape, ok := shapeSpans[strings.Join(key, ",")]
	if !ok {
		return ShapeUnknown, fmt.Errorf("sequence %s has no known line arrangement", seq)
	}
	return shape, nil
}
