// Package matcher classifies a sampled colour sequence against a tile catalog,
// allowing for the unknown rotation of the photographed tile.
package matcher

import (
	"sort"

	"tantrixfinder/catalog"
	"tantrixfinder/palette"
)

// Options tune how far a best-effort match may stray from the catalog.
type Options struct {
	// Tolerance is the largest mismatch count accepted for a non-exact match.
	Tolerance int
	// Margin is the minimum distance gap between the winner and the runner-up.
	Margin int
	// AllowReflection also tries the mirrored sequence. Tantrix tiles are
	// printed on one side only, so mirrored patterns are different tiles.
	AllowReflection bool
	// Shape restricts candidates to one line arrangement when the detector
	// already knows it.
	Shape catalog.Shape
}

// DefaultOptions returns the thresholds used by the command line tool.
func DefaultOptions() Options {
	return Options{
		Tolerance: 1,
		Margin:    1,
	}
}

// Matcher compares sequences with a shared, read-only catalog.
type Matcher struct {
	catalog *catalog.Catalog
	opts    Options
}

// New creates a matcher. Negative thresholds are clamped; a margin below one
// would let ties through and is raised to one.
func New(cat *catalog.Catalog, opts Options) *Matcher {
	if opts.Tolerance < 0 {
		opts.Tolerance = 0
	}
	if opts.Margin < 1 {
		opts.Margin = 1
	}
	return &Matcher{catalog: cat, opts: opts}
}

// Options returns the effective options.
func (m *Matcher) Options() Options {
	return m.opts
}

// WithShape returns a matcher sharing the catalog but restricted to shape.
func (m *Matcher) WithShape(shape catalog.Shape) *Matcher {
	opts := m.opts
	opts.Shape = shape
	return &Matcher{catalog: m.catalog, opts: opts}
}

// candidate is the best alignment found for one catalog entry.
type candidate struct {
	entry     catalog.Entry
	distance  int
	rotation  int
	reflected bool
}

// Match classifies seq. It never fails: a sequence that cannot be placed
// confidently yields a StatusNoConfidentMatch result.
func (m *Matcher) Match(seq palette.Sequence) Result {
	n := m.catalog.SequenceLength()
	res := Result{
		Status:   StatusNoConfidentMatch,
		Distance: n,
		Sequence: seq.Clone(),
	}
	if len(seq) != n {
		return res
	}

	cands := m.candidates(seq)
	if len(cands) == 0 {
		return res
	}

	best := cands[0]
	res.Distance = best.distance
	if len(cands) > 1 {
		res.RunnerUp = cands[1].entry.Index
		res.RunnerUpDistance = cands[1].distance
	}

	if best.distance > m.opts.Tolerance && best.distance > 0 {
		return res
	}
	status := StatusBestEffort
	if best.distance == 0 {
		status = StatusExact
	}

	tied := 1
	for tied < len(cands) && cands[tied].distance == best.distance {
		tied++
	}
	if tied > 1 {
		winner, ok := breakTie(seq, cands[:tied])
		if !ok {
			return res
		}
		if tied < len(cands) {
			res.RunnerUp = cands[tied].entry.Index
			res.RunnerUpDistance = cands[tied].distance
		} else {
			res.RunnerUp, res.RunnerUpDistance = 0, 0
		}
		return res.accept(winner, status, n)
	}

	if status == StatusBestEffort && len(cands) > 1 && cands[1].distance-best.distance < m.opts.Margin {
		return res
	}
	return res.accept(best, status, n)
}

// candidates scores every eligible entry and sorts them by distance, then by
// catalog order.
func (m *Matcher) candidates(seq palette.Sequence) []candidate {
	variants := []palette.Sequence{seq}
	if m.opts.AllowReflection {
		variants = append(variants, seq.Reverse())
	}

	var cands []candidate
	m.catalog.Each(func(e catalog.Entry) {
		if m.opts.Shape != catalog.ShapeUnknown && e.Shape != m.opts.Shape {
			return
		}
		c := candidate{entry: e, distance: len(seq) + 1}
		for v, variant := range variants {
			for r := range variant {
				d := e.Sequence.Rotate(r).Mismatches(variant)
				if d < c.distance {
					c.distance, c.rotation, c.reflected = d, r, v == 1
				}
			}
		}
		cands = append(cands, c)
	})

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].distance < cands[j].distance
	})
	return cands
}

// breakTie keeps the tied candidates whose family is the one the sampled
// colours point to. It succeeds only when exactly one survives.
func breakTie(seq palette.Sequence, tied []candidate) (candidate, bool) {
	family, ok := catalog.DominantFamily(seq)
	if !ok {
		return candidate{}, false
	}

	var winner candidate
	survivors := 0
	for _, c := range tied {
		if c.entry.Family == family {
			winner = c
			survivors++
		}
	}
	return winner, survivors == 1
}
