package sampler

import (
	"image"
	"math"
)

// patchOffsets lists the pixel offsets of a disc of the given radius in
// raster order.
func patchOffsets(radius float64) []image.Point {
	r := int(math.Ceil(radius))
	var offsets []image.Point
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if float64(dx*dx+dy*dy) <= radius*radius {
				offsets = append(offsets, image.Point{X: dx, Y: dy})
			}
		}
	}
	return offsets
}

// segmentCenters returns the sample point of every segment, starting at
// start degrees and stepping around the tile centre.
func segmentCenters(size int, radius, start float64, segments int, clockwise bool) []image.Point {
	c := float64(size) / 2
	step := 360 / float64(segments)
	points := make([]image.Point, segments)
	for k := range points {
		theta := (start + float64(k)*step) * math.Pi / 180
		dy := -math.Sin(theta) * radius
		if clockwise {
			dy = -dy
		}
		points[k] = image.Point{
			X: int(math.Round(c + math.Cos(theta)*radius)),
			Y: int(math.Round(c + dy)),
		}
	}
	return points
}
