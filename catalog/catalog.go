// Package catalog holds the fixed table of Tantrix tile colour patterns.
//
// A Catalog is validated when it is built and never changes afterwards, so a
// single instance can be shared by any number of goroutines.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"tantrixfinder/palette"
)

// ErrInvalidCatalog is wrapped by every validation failure.
var ErrInvalidCatalog = errors.New("invalid tile catalog")

// Entry is one tile type.
type Entry struct {
	Index    int
	Sequence palette.Sequence
	Family   Family
	Shape    Shape
}

// Catalog is an immutable, validated set of entries.
type Catalog struct {
	entries []Entry
	byIndex map[int]int
	length  int
}

// New validates entries and builds a catalog. Family and Shape are derived
// from each sequence; any values set by the caller are checked against them.
func New(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrInvalidCatalog)
	}

	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		byIndex: make(map[int]int, len(entries)),
		length:  len(entries[0].Sequence),
	}

	seen := make(map[string]int, len(entries))
	for _, e := range entries {
		if e.Index <= 0 {
			return nil, fmt.Errorf("%w: tile index %d must be positive", ErrInvalidCatalog, e.Index)
		}
		if _, dup := c.byIndex[e.Index]; dup {
			return nil, fmt.Errorf("%w: duplicate tile index %d", ErrInvalidCatalog, e.Index)
		}
		if len(e.Sequence) != c.length {
			return nil, fmt.Errorf("%w: tile %d has %d segments, expected %d",
				ErrInvalidCatalog, e.Index, len(e.Sequence), c.length)
		}

		family, err := FamilyOf(e.Sequence)
		if err != nil {
			return nil, fmt.Errorf("%w: tile %d: %v", ErrInvalidCatalog, e.Index, err)
		}
		if e.Family != (Family{}) && e.Family != family {
			return nil, fmt.Errorf("%w: tile %d declared family %s but uses %s",
				ErrInvalidCatalog, e.Index, e.Family, family)
		}
		shape, err := ShapeOf(e.Sequence)
		if err != nil {
			return nil, fmt.Errorf("%w: tile %d: %v", ErrInvalidCatalog, e.Index, err)
		}
		if e.Shape != ShapeUnknown && e.Shape != shape {
			return nil, fmt.Errorf("%w: tile %d declared shape %s but is %s",
				ErrInvalidCatalog, e.Index, e.Shape, shape)
		}

		key := Canonical(e.Sequence).String()
		if other, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: tiles %d and %d are rotations of each other (%s)",
				ErrInvalidCatalog, other, e.Index, key)
		}
		seen[key] = e.Index

		c.byIndex[e.Index] = len(c.entries)
		c.entries = append(c.entries, Entry{
			Index:    e.Index,
			Sequence: e.Sequence.Clone(),
			Family:   family,
			Shape:    shape,
		})
	}

	return c, nil
}

// Len returns the number of tile types.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// SequenceLength returns the number of segments of every entry.
func (c *Catalog) SequenceLength() int {
	return c.length
}

// Entry looks up a tile by index.
func (c *Catalog) Entry(index int) (Entry, bool) {
	i, ok := c.byIndex[index]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i].clone(), true
}

// Entries returns a copy of all entries in catalog order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.clone()
	}
	return out
}

// Each calls fn for every entry in catalog order without copying the
// sequences. fn must not modify them.
func (c *Catalog) Each(fn func(Entry)) {
	for _, e := range c.entries {
		fn(e)
	}
}

func (e Entry) clone() Entry {
	e.Sequence = e.Sequence.Clone()
	return e
}

// Canonical returns the lexicographically smallest rotation of seq. Two
// sequences describe the same tile exactly when their canonical forms match.
func Canonical(seq palette.Sequence) palette.Sequence {
	best := seq.Clone()
	for r := 1; r < len(seq); r++ {
		rot := seq.Rotate(r)
		if rot.String() < best.String() {
			best = rot
		}
	}
	return best
}

type jsonEntry struct {
	Index    int    `json:"index"`
	Sequence string `json:"sequence"`
}

// Load reads a catalog from a JSON file holding a list of
// {"index": n, "sequence": "112323"} objects.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read catalog %s: %v", path, err)
	}

	var raw []jsonEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: cannot parse %s: %v", ErrInvalidCatalog, path, err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, r := range raw {
		seq, err := palette.ParseSequence(r.Sequence)
		if err != nil {
			return nil, fmt.Errorf("%w: tile %d: %v", ErrInvalidCatalog, r.Index, err)
		}
		entries = append(entries, Entry{Index: r.Index, Sequence: seq})
	}
	return New(entries)
}

// Describe renders a human readable table of the catalog.
func (c *Catalog) Describe() string {
	var b strings.Builder
	byShape := make(map[Shape]int)
	for _, e := range c.entries {
		fmt.Fprintf(&b, "%2d  %s  %-4s %-22s %s\n", e.Index, e.Sequence, e.Shape, e.Family, e.Sequence.Names())
		byShape[e.Shape]++
	}

	shapes := make([]string, 0, len(byShape))
	for s, n := range byShape {
		shapes = append(shapes, fmt.Sprintf("%s=%d", s, n))
	}
	sort.Strings(shapes)
	fmt.Fprintf(&b, "%d tiles (%s)\n", len(c.entries), strings.Join(shapes, ", "))
	return b.String()
}
