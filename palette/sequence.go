package palette

import (
	"fmt"
	"strings"
)

// Sequence is the cyclic order of line colours around a tile, one label per
// hexagon edge.
type Sequence []Label

// ParseSequence reads a sequence written as digit codes ("112323") or as
// comma separated colour names ("Red,Red,Blue,...").
func ParseSequence(s string) (Sequence, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty colour sequence")
	}

	var parts []string
	if strings.ContainsAny(s, ", ") {
		parts = strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	} else {
		parts = strings.Split(s, "")
	}

	seq := make(Sequence, 0, len(parts))
	for _, p := range parts {
		l, err := ParseLabel(p)
		if err != nil {
			return nil, fmt.Errorf("invalid sequence %q: %w", s, err)
		}
		seq = append(seq, l)
	}
	return seq, nil
}

// MustParseSequence is ParseSequence for literals known to be valid.
func MustParseSequence(s string) Sequence {
	seq, err := ParseSequence(s)
	if err != nil {
		panic(err)
	}
	return seq
}

// String renders the sequence as digit codes.
func (s Sequence) String() string {
	var b strings.Builder
	for _, l := range s {
		b.WriteByte(l.Code())
	}
	return b.String()
}

// Names renders the sequence as colour names.
func (s Sequence) Names() string {
	names := make([]string, len(s))
	for i, l := range s {
		names[i] = l.String()
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// Rotate returns a copy rotated left by r positions, so that element r of the
// receiver becomes element 0 of the result. Negative r rotates right.
func (s Sequence) Rotate(r int) Sequence {
	n := len(s)
	out := make(Sequence, n)
	if n == 0 {
		return out
	}
	r = ((r % n) + n) % n
	for i := range s {
		out[i] = s[(i+r)%n]
	}
	return out
}

// Reverse returns the mirror image of the sequence.
func (s Sequence) Reverse() Sequence {
	out := make(Sequence, len(s))
	for i, l := range s {
		out[len(s)-1-i] = l
	}
	return out
}

// Equal reports element-wise equality.
func (s Sequence) Equal(o Sequence) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Mismatches counts positions where s and o differ. Sequences of different
// length differ everywhere.
func (s Sequence) Mismatches(o Sequence) int {
	if len(s) != len(o) {
		return max(len(s), len(o))
	}
	var n int
	for i := range s {
		if s[i] != o[i] {
			n++
		}
	}
	return n
}

// Counts returns how often each label occurs.
func (s Sequence) Counts() map[Label]int {
	counts := make(map[Label]int)
	for _, l := range s {
		counts[l]++
	}
	return counts
}

// Clone returns an independent copy.
func (s Sequence) Clone() Sequence {
	return append(Sequence(nil), s...)
}
