// Package palette defines the closed set of line colours printed on Tantrix
// tiles and the cyclic colour sequences built from them.
package palette

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Label is one of the named tile colours. The zero value is None.
type Label uint8

// Known labels. The numeric values double as the digit codes used in the
// catalog table ("112323").
const (
	None Label = iota
	Blue
	Yellow
	Red
	Green
)

var labelNames = map[Label]string{
	None:   "None",
	Blue:   "Blue",
	Yellow: "Yellow",
	Red:    "Red",
	Green:  "Green",
}

func (l Label) String() string {
	if name, ok := labelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Label(%d)", uint8(l))
}

// Code returns the single digit code of the label.
func (l Label) Code() byte {
	return '0' + byte(l)
}

// Valid reports whether l is a printable tile colour.
func (l Label) Valid() bool {
	return l >= Blue && l <= Green
}

// ParseLabel accepts either a digit code or a colour name.
func ParseLabel(s string) (Label, error) {
	s = strings.TrimSpace(s)
	if len(s) == 1 && s[0] >= '1' && s[0] <= '4' {
		return Label(s[0] - '0'), nil
	}
	for l, name := range labelNames {
		if l != None && strings.EqualFold(name, s) {
			return l, nil
		}
	}
	return None, fmt.Errorf("unknown colour label %q", s)
}

// Swatch ties a label to the reference colour it is printed in.
type Swatch struct {
	Label Label
	RGB   color.RGBA
}

// Palette is an ordered list of swatches. Order matters: it breaks ties when
// a colour is equally close to two swatches.
type Palette []Swatch

// Tantrix returns the four reference colours of the physical tiles.
func Tantrix() Palette {
	return Palette{
		{Label: Blue, RGB: color.RGBA{R: 12, G: 108, B: 217, A: 255}},
		{Label: Yellow, RGB: color.RGBA{R: 255, G: 232, B: 0, A: 255}},
		{Label: Red, RGB: color.RGBA{R: 215, G: 31, B: 43, A: 255}},
		{Label: Green, RGB: color.RGBA{R: 0, G: 161, B: 69, A: 255}},
	}
}

// Labels returns the labels in declaration order.
func (p Palette) Labels() []Label {
	labels := make([]Label, len(p))
	for i, s := range p {
		labels[i] = s.Label
	}
	return labels
}

// Nearest returns the swatch label closest to rgb (r, g, b in 0..255) and the
// distance to it. The first swatch wins a tie.
func (p Palette) Nearest(rgb []float64) (Label, float64) {
	best := None
	bestDist := math.Inf(1)
	for _, s := range p {
		d := floats.Distance(rgb, Vector(s.RGB), 2)
		if d < bestDist {
			best = s.Label
			bestDist = d
		}
	}
	return best, bestDist
}

// Vector converts a colour into an (r, g, b) slice in the 0..255 range.
func Vector(c color.Color) []float64 {
	r, g, b, _ := c.RGBA()
	return []float64{float64(r >> 8), float64(g >> 8), float64(b >> 8)}
}
