package sampler

import (
	"fmt"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"
)

// Clusterer groups colours into k clusters. Any algorithm that returns one
// representative colour per cluster and a cluster index per input colour will
// do. Implementations must be deterministic.
type Clusterer interface {
	Cluster(colors [][]float64, k int) (centers [][]float64, labels []int, err error)
}

// KMeans clusters with OpenCV's k-means. The initial partition comes from a
// farthest-point seeding over the input, so the result only depends on the
// colours and their order.
type KMeans struct {
	// MaxIter and Epsilon bound the refinement; zero values use 50 and 0.5.
	MaxIter int
	Epsilon float64
}

// Cluster implements Clusterer.
func (k KMeans) Cluster(colors [][]float64, n int) ([][]float64, []int, error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("invalid cluster count %d", n)
	}
	if len(colors) < n {
		return nil, nil, fmt.Errorf("%d colours cannot form %d clusters", len(colors), n)
	}

	maxIter, eps := k.MaxIter, k.Epsilon
	if maxIter <= 0 {
		maxIter = 50
	}
	if eps <= 0 {
		eps = 0.5
	}

	dim := len(colors[0])
	data := gocv.NewMatWithSize(len(colors), dim, gocv.MatTypeCV32F)
	defer data.Close()
	for i, c := range colors {
		for j := 0; j < dim; j++ {
			data.SetFloatAt(i, j, float32(c[j]))
		}
	}

	seeds, err := farthestPointSeeds(colors, n)
	if err != nil {
		return nil, nil, err
	}
	labels := gocv.NewMatWithSize(len(colors), 1, gocv.MatTypeCV32S)
	defer labels.Close()
	for i, c := range colors {
		labels.SetIntAt(i, 0, int32(nearest(c, seeds)))
	}

	centers := gocv.NewMat()
	defer centers.Close()

	criteria := gocv.NewTermCriteria(gocv.EPS+gocv.MaxIter, maxIter, eps)
	gocv.KMeans(data, n, &labels, criteria, 1, gocv.KMeansUseInitialLabels, &centers)
	if centers.Rows() != n {
		return nil, nil, fmt.Errorf("k-means returned %d centres, expected %d", centers.Rows(), n)
	}

	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, dim)
		for j := 0; j < dim; j++ {
			out[i][j] = float64(centers.GetFloatAt(i, j))
		}
	}
	assigned := make([]int, len(colors))
	for i := range assigned {
		assigned[i] = int(labels.GetIntAt(i, 0))
	}
	return out, assigned, nil
}

// farthestPointSeeds picks the colour farthest from the mean, then repeatedly
// the colour farthest from every seed so far. Ties keep the earliest colour.
// It fails when there are fewer than n distinct colours.
func farthestPointSeeds(colors [][]float64, n int) ([][]float64, error) {
	mean := make([]float64, len(colors[0]))
	for _, c := range colors {
		floats.Add(mean, c)
	}
	floats.Scale(1/float64(len(colors)), mean)

	seeds := make([][]float64, 0, n)
	first, firstDist := 0, -1.0
	for i, c := range colors {
		if d := floats.Distance(c, mean, 2); d > firstDist {
			first, firstDist = i, d
		}
	}
	seeds = append(seeds, colors[first])

	minDist := make([]float64, len(colors))
	for i, c := range colors {
		minDist[i] = floats.Distance(c, colors[first], 2)
	}
	for len(seeds) < n {
		next := floats.MaxIdx(minDist)
		if minDist[next] == 0 {
			return nil, fmt.Errorf("only %d distinct colours, expected %d", len(seeds), n)
		}
		seeds = append(seeds, colors[next])
		for i, c := range colors {
			if d := floats.Distance(c, colors[next], 2); d < minDist[i] {
				minDist[i] = d
			}
		}
	}
	return seeds, nil
}

// nearest returns the index of the closest centre, the first one on ties.
func nearest(c []float64, centers [][]float64) int {
	best, bestDist := 0, -1.0
	for i, center := range centers {
		d := floats.Distance(c, center, 2)
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
