// Package classifier ties sampling and matching together: one tile crop in,
// one catalog tile (or an explicit no-match) out.
package classifier

import (
	"context"
	"fmt"

	"tantrixfinder/catalog"
	"tantrixfinder/imageprocessor"
	"tantrixfinder/logging"
	"tantrixfinder/matcher"
	"tantrixfinder/sampler"

	"gocv.io/x/gocv"
)

// Classifier is safe for concurrent use; the scanner shares one between all
// workers.
type Classifier struct {
	sampler *sampler.Sampler
	matcher *matcher.Matcher
}

// New creates a classifier from a sampler and a matcher.
func New(s *sampler.Sampler, m *matcher.Matcher) *Classifier {
	return &Classifier{sampler: s, matcher: m}
}

// Default builds a classifier with the built-in catalog and default settings.
func Default() (*Classifier, error) {
	s, err := sampler.New(sampler.DefaultConfig())
	if err != nil {
		return nil, err
	}
	return New(s, matcher.New(catalog.Tantrix(), matcher.DefaultOptions())), nil
}

// Classify identifies the tile in img. A non-empty shape restricts the
// candidates to tiles of that layout. Sampling failures are returned as
// errors; an unresolved match is a result with OK() false.
func (c *Classifier) Classify(img gocv.Mat, shape catalog.Shape) (matcher.Result, error) {
	analysis, err := c.sampler.Inspect(img)
	if err != nil {
		return matcher.Result{Status: matcher.StatusNoConfidentMatch}, err
	}

	m := c.matcher
	if shape != catalog.ShapeUnknown {
		m = m.WithShape(shape)
	}
	res := m.Match(analysis.Sequence)

	if logging.Enabled() {
		logging.DebugLog("sampled %s at phase %.0f, clusters %s, votes %v -> %v",
			analysis.Sequence, analysis.Phase, describeClusters(analysis.Clusters), analysis.Votes, res)
	}
	return res, nil
}

// ClassifyContext is Classify bounded by ctx. When ctx ends first its error is
// returned and the result is discarded.
func (c *Classifier) ClassifyContext(ctx context.Context, img gocv.Mat, shape catalog.Shape) (matcher.Result, error) {
	if err := ctx.Err(); err != nil {
		return matcher.Result{Status: matcher.StatusNoConfidentMatch}, err
	}

	// The worker owns a copy so the caller may close img on cancellation.
	own := img.Clone()
	type outcome struct {
		res matcher.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer own.Close()
		res, err := c.Classify(own, shape)
		done <- outcome{res, err}
	}()

	select {
	case <-ctx.Done():
		return matcher.Result{Status: matcher.StatusNoConfidentMatch}, ctx.Err()
	case out := <-done:
		return out.res, out.err
	}
}

// ClassifyFile loads the crop at path and classifies it.
func (c *Classifier) ClassifyFile(path string, shape catalog.Shape) (matcher.Result, error) {
	img, err := imageprocessor.LoadImage(path)
	if err != nil {
		return matcher.Result{Status: matcher.StatusNoConfidentMatch},
			fmt.Errorf("%w: %v", sampler.ErrEmptyOrInvalidImage, err)
	}
	defer img.Close()

	res, err := c.Classify(img, shape)
	if err != nil {
		return res, fmt.Errorf("cannot classify %s: %w", path, err)
	}
	return res, nil
}

func describeClusters(clusters []sampler.Cluster) string {
	s := ""
	for i, cl := range clusters {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%v(%.0f,%.0f,%.0f %.0f%%)", cl.Label, cl.RGB[0], cl.RGB[1], cl.RGB[2], cl.Share*100)
	}
	return s
}
