package catalog

import (
	"fmt"
	"sort"
	"strings"

	"tantrixfinder/palette"
)

// Family is the set of three colours a tile is printed with.
type Family [3]palette.Label

// The four colour families of the Tantrix set.
var (
	FamilyBYR = Family{palette.Blue, palette.Yellow, palette.Red}
	FamilyYRG = Family{palette.Yellow, palette.Red, palette.Green}
	FamilyBRG = Family{palette.Blue, palette.Red, palette.Green}
	FamilyBYG = Family{palette.Blue, palette.Yellow, palette.Green}
)

// Families lists the known families.
func Families() []Family {
	return []Family{FamilyBYR, FamilyYRG, FamilyBRG, FamilyBYG}
}

// Contains reports whether l is one of the family's colours.
func (f Family) Contains(l palette.Label) bool {
	for _, c := range f {
		if c == l {
			return true
		}
	}
	return false
}

// Coverage counts how many segments of seq use the family's colours.
func (f Family) Coverage(seq palette.Sequence) int {
	var n int
	for _, l := range seq {
		if f.Contains(l) {
			n++
		}
	}
	return n
}

func (f Family) String() string {
	names := make([]string, len(f))
	for i, l := range f {
		names[i] = l.String()
	}
	return strings.Join(names, "/")
}

// FamilyOf derives the family of a catalog sequence. Each of the three
// colours has to appear exactly twice, once at each end of its line.
func FamilyOf(seq palette.Sequence) (Family, error) {
	counts := seq.Counts()
	if len(counts) != 3 {
		return Family{}, fmt.Errorf("sequence %s uses %d colours, expected 3", seq, len(counts))
	}

	labels := make([]palette.Label, 0, 3)
	for l, n := range counts {
		if !l.Valid() {
			return Family{}, fmt.Errorf("sequence %s contains invalid colour %v", seq, l)
		}
		if n != 2 {
			return Family{}, fmt.Errorf("sequence %s has %d segments of %v, expected 2", seq, n, l)
		}
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	for _, f := range Families() {
		if f == (Family{labels[0], labels[1], labels[2]}) {
			return f, nil
		}
	}
	return Family{}, fmt.Errorf("colours %v do not form a known family", labels)
}

// DominantFamily returns the family covering the most segments of seq. The
// second result is false when no family is a unique winner.
func DominantFamily(seq palette.Sequence) (Family, bool) {
	var best Family
	bestCover, ties := -1, 0
	for _, f := range Families() {
		c := f.Coverage(seq)
		switch {
		case c > bestCover:
			best, bestCover, ties = f, c, 1
		case c == bestCover:
			ties++
		}
	}
	return best, ties == 1
}
