package sampler

import (
	"fmt"

	"tantrixfinder/palette"
)

// Config fixes the sampling geometry and colour thresholds. Distances and
// radii are relative to half the working image size.
type Config struct {
	Palette       palette.Palette
	Segments      int
	ColorsPerTile int

	// WorkSize is the side length crops are resized to before sampling.
	WorkSize int
	// SampleRadius is where the line ends are read, PatchRadius the size of
	// the disc read around each point.
	SampleRadius float64
	PatchRadius  float64

	// ReferenceAngle is the direction of the first segment in degrees,
	// 0 pointing right. Segments follow counter-clockwise on screen unless
	// Clockwise is set.
	ReferenceAngle float64
	Clockwise      bool

	// PhaseSearch lets the sampler follow tiles photographed at an angle
	// that is not a multiple of the segment spacing.
	PhaseSearch bool
	PhaseStep   float64

	// Pixels darker than DarkThreshold on every channel belong to the black
	// tile face; pixels below MinSaturation to the table or glare.
	DarkThreshold int
	MinSaturation float64

	// MinSeparation is the smallest RGB distance between two line colours.
	MinSeparation float64
	// MinClusterShare is the smallest fraction of line pixels per colour.
	MinClusterShare float64

	Clusterer Clusterer
}

// DefaultConfig returns the configuration tuned on tile crops produced by the
// detector.
func DefaultConfig() Config {
	return Config{
		Palette:         palette.Tantrix(),
		Segments:        6,
		ColorsPerTile:   3,
		WorkSize:        240,
		SampleRadius:    0.72,
		PatchRadius:     0.08,
		ReferenceAngle:  0,
		PhaseSearch:     true,
		PhaseStep:       3,
		DarkThreshold:   60,
		MinSaturation:   0.35,
		MinSeparation:   45,
		MinClusterShare: 0.04,
		Clusterer:       KMeans{},
	}
}

// Validate checks the configuration for values the sampler cannot work with.
func (c Config) Validate() error {
	switch {
	case len(c.Palette) == 0:
		return fmt.Errorf("sampler config: empty palette")
	case c.Segments < 3:
		return fmt.Errorf("sampler config: %d segments, need at least 3", c.Segments)
	case c.ColorsPerTile < 1 || c.ColorsPerTile > len(c.Palette):
		return fmt.Errorf("sampler config: %d colours per tile with a palette of %d",
			c.ColorsPerTile, len(c.Palette))
	case c.WorkSize < 32:
		return fmt.Errorf("sampler config: work size %d too small", c.WorkSize)
	case c.SampleRadius <= 0 || c.PatchRadius <= 0 || c.SampleRadius+c.PatchRadius > 1:
		return fmt.Errorf("sampler config: sample radius %.2f and patch radius %.2f leave the image",
			c.SampleRadius, c.PatchRadius)
	case c.DarkThreshold < 1 || c.DarkThreshold > 255:
		return fmt.Errorf("sampler config: dark threshold %d outside 1..255", c.DarkThreshold)
	case c.MinSaturation < 0 || c.MinSaturation > 1:
		return fmt.Errorf("sampler config: minimum saturation %.2f outside 0..1", c.MinSaturation)
	case c.PhaseSearch && c.PhaseStep <= 0:
		return fmt.Errorf("sampler config: phase step must be positive")
	case c.Clusterer == nil:
		return fmt.Errorf("sampler config: no clusterer")
	}
	return nil
}
