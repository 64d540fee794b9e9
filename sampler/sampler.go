// Package sampler reads the cyclic sequence of line colours from the crop of
// a single tile.
//
// The crop is resized to a fixed working size, the line ends are read from
// small discs at fixed angular positions around the centre, the line pixels
// are clustered into the expected number of colours and each cluster is named
// after the nearest palette colour.
package sampler

import (
	"errors"
	"fmt"
	"image"
	"math"

	"tantrixfinder/palette"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrEmptyOrInvalidImage is returned for images without usable pixels.
	ErrEmptyOrInvalidImage = errors.New("empty or invalid image")
	// ErrInsufficientColorSeparation is returned when the expected number of
	// distinct line colours cannot be found, usually a bad crop or lighting.
	ErrInsufficientColorSeparation = errors.New("insufficient color separation")
)

// Sampler turns tile images into colour sequences. It holds no per-image
// state and is safe for concurrent use.
type Sampler struct {
	cfg   Config
	patch []image.Point
}

// New validates cfg and creates a sampler.
func New(cfg Config) (*Sampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	half := float64(cfg.WorkSize) / 2
	return &Sampler{
		cfg:   cfg,
		patch: patchOffsets(cfg.PatchRadius * half),
	}, nil
}

// Config returns the sampler configuration.
func (s *Sampler) Config() Config {
	return s.cfg
}

// Cluster is one line colour found on the tile.
type Cluster struct {
	Label palette.Label
	RGB   []float64
	Share float64
}

// Analysis carries the intermediate results of sampling one image.
type Analysis struct {
	Sequence palette.Sequence
	// Phase is the rotation in degrees added to the reference angle.
	Phase    float64
	Clusters []Cluster
	// Votes holds, per segment, the pixel count per cluster.
	Votes [][]int
}

// Sample returns the colour sequence of a BGR or BGRA image.
func (s *Sampler) Sample(img gocv.Mat) (palette.Sequence, error) {
	a, err := s.Inspect(img)
	if err != nil {
		return nil, err
	}
	return a.Sequence, nil
}

// SampleImage converts a Go image and samples it.
func (s *Sampler) SampleImage(img image.Image) (palette.Sequence, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: no pixels", ErrEmptyOrInvalidImage)
	}
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmptyOrInvalidImage, err)
	}
	defer mat.Close()
	return s.Sample(mat)
}

// Inspect samples img and returns the details behind the sequence.
func (s *Sampler) Inspect(img gocv.Mat) (Analysis, error) {
	r, err := s.prepare(img)
	if err != nil {
		return Analysis{}, err
	}

	phase := 0.0
	if s.cfg.PhaseSearch {
		phase = s.findPhase(r)
	}

	segments := s.segmentPixels(r, s.cfg.ReferenceAngle+phase)
	var colors [][]float64
	for k, seg := range segments {
		if len(seg) == 0 {
			return Analysis{}, fmt.Errorf("%w: segment %d shows no line colour", ErrInsufficientColorSeparation, k)
		}
		colors = append(colors, seg...)
	}
	if len(colors) < s.cfg.ColorsPerTile {
		return Analysis{}, fmt.Errorf("%w: only %d line pixels", ErrInsufficientColorSeparation, len(colors))
	}

	centers, labels, err := s.cfg.Clusterer.Cluster(colors, s.cfg.ColorsPerTile)
	if err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrInsufficientColorSeparation, err)
	}
	clusters, err := s.nameClusters(centers, labels)
	if err != nil {
		return Analysis{}, err
	}

	a := Analysis{
		Sequence: make(palette.Sequence, len(segments)),
		Phase:    phase,
		Clusters: clusters,
		Votes:    make([][]int, len(segments)),
	}
	offset := 0
	for k, seg := range segments {
		votes := make([]int, len(clusters))
		for _, l := range labels[offset : offset+len(seg)] {
			votes[l]++
		}
		offset += len(seg)

		winner := 0
		for c := range votes {
			if votes[c] > votes[winner] {
				winner = c
			}
		}
		a.Votes[k] = votes
		a.Sequence[k] = clusters[winner].Label
	}
	return a, nil
}

// nameClusters checks that the clusters are distinct line colours and maps
// them to palette labels.
func (s *Sampler) nameClusters(centers [][]float64, labels []int) ([]Cluster, error) {
	counts := make([]int, len(centers))
	for _, l := range labels {
		if l < 0 || l >= len(centers) {
			return nil, fmt.Errorf("%w: cluster label %d out of range", ErrInsufficientColorSeparation, l)
		}
		counts[l]++
	}

	clusters := make([]Cluster, len(centers))
	used := make(map[palette.Label]int, len(centers))
	for i, c := range centers {
		share := float64(counts[i]) / float64(len(labels))
		if share < s.cfg.MinClusterShare {
			return nil, fmt.Errorf("%w: colour %d covers only %.1f%% of the lines",
				ErrInsufficientColorSeparation, i, share*100)
		}
		for j := 0; j < i; j++ {
			if d := floats.Distance(c, centers[j], 2); d < s.cfg.MinSeparation {
				return nil, fmt.Errorf("%w: colours %d and %d are only %.1f apart",
					ErrInsufficientColorSeparation, j, i, d)
			}
		}

		label, _ := s.cfg.Palette.Nearest(c)
		if j, dup := used[label]; dup {
			return nil, fmt.Errorf("%w: colours %d and %d both look %v",
				ErrInsufficientColorSeparation, j, i, label)
		}
		used[label] = i
		clusters[i] = Cluster{Label: label, RGB: c, Share: share}
	}
	return clusters, nil
}

// raster is the normalised working copy of an image in BGR byte order.
type raster struct {
	size int
	pix  []byte
}

func (s *Sampler) prepare(img gocv.Mat) (raster, error) {
	if img.Empty() || img.Rows() == 0 || img.Cols() == 0 {
		return raster{}, fmt.Errorf("%w: no pixels", ErrEmptyOrInvalidImage)
	}

	bgr := gocv.NewMat()
	defer bgr.Close()
	switch img.Type() {
	case gocv.MatTypeCV8UC3:
		img.CopyTo(&bgr)
	case gocv.MatTypeCV8UC4:
		gocv.CvtColor(img, &bgr, gocv.ColorBGRAToBGR)
	default:
		return raster{}, fmt.Errorf("%w: unsupported pixel type %v with %d channels",
			ErrEmptyOrInvalidImage, img.Type(), img.Channels())
	}

	size := s.cfg.WorkSize
	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(bgr, &resized, image.Point{X: size, Y: size}, 0, 0, gocv.InterpolationArea)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.MedianBlur(resized, &blurred, 3)

	work := gocv.NewMat()
	defer work.Close()
	gocv.Normalize(blurred, &work, 0, 255, gocv.NormMinMax)

	pix := work.ToBytes()
	if len(pix) != size*size*3 {
		return raster{}, fmt.Errorf("%w: unexpected buffer of %d bytes", ErrEmptyOrInvalidImage, len(pix))
	}
	return raster{size: size, pix: pix}, nil
}

// lineColor returns the RGB colour at (x, y) if it belongs to a line.
func (s *Sampler) lineColor(r raster, x, y int) ([]float64, bool) {
	if x < 0 || y < 0 || x >= r.size || y >= r.size {
		return nil, false
	}
	i := (y*r.size + x) * 3
	b, g, red := r.pix[i], r.pix[i+1], r.pix[i+2]

	th := byte(s.cfg.DarkThreshold)
	if b < th && g < th && red < th {
		return nil, false
	}
	hi := max(b, g, red)
	lo := min(b, g, red)
	if hi == 0 || float64(hi-lo)/float64(hi) < s.cfg.MinSaturation {
		return nil, false
	}
	return []float64{float64(red), float64(g), float64(b)}, true
}

// segmentPixels collects the line pixels of every segment patch.
func (s *Sampler) segmentPixels(r raster, start float64) [][][]float64 {
	radius := s.cfg.SampleRadius * float64(r.size) / 2
	centers := segmentCenters(r.size, radius, start, s.cfg.Segments, s.cfg.Clockwise)

	out := make([][][]float64, len(centers))
	for k, c := range centers {
		for _, o := range s.patch {
			if rgb, ok := s.lineColor(r, c.X+o.X, c.Y+o.Y); ok {
				out[k] = append(out[k], rgb)
			}
		}
	}
	return out
}

// findPhase returns the rotation within one segment step at which the patches
// see the most line colour. The smallest such rotation wins.
func (s *Sampler) findPhase(r raster) float64 {
	step := 360 / float64(s.cfg.Segments)
	best, bestScore := 0.0, math.Inf(-1)
	for phase := 0.0; phase < step; phase += s.cfg.PhaseStep {
		segs := s.segmentPixels(r, s.cfg.ReferenceAngle+phase)
		fill := make([]float64, len(segs))
		for k, seg := range segs {
			fill[k] = float64(len(seg)) / float64(len(s.patch))
		}
		if score := stat.Mean(fill, nil); score > bestScore {
			best, bestScore = phase, score
		}
	}
	return best
}
