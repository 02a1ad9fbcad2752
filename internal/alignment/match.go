// Package alignment registers auxiliary imagery onto the pixel grid of a
// reference raster using keypoint matching and a robust affine estimate,
// degrading to a plain resize when matching fails.
package alignment

import (
	"collapse-mapper/pkg/geometry"
)

// Candidate is one tentative keypoint correspondence: an auxiliary-image
// point, the reference point its descriptor matched best, and the
// descriptor distances of the best and second-best reference candidates.
type Candidate struct {
	Src    geometry.Point2D // auxiliary image coordinates
	Dst    geometry.Point2D // reference image coordinates
	Best   float64
	Second float64
}

// RatioFilter keeps a candidate only when its best distance is strictly
// below ratio times the second-best distance. A tie at exactly the ratio
// is ambiguous and rejected.
func RatioFilter(candidates []Candidate, ratio float64) []Candidate {
	kept := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Best < ratio*c.Second {
			kept = append(kept, c)
		}
	}
	return kept
}

func splitPoints(candidates []Candidate) (src, dst []geometry.Point2D) {
	src = make([]geometry.Point2D, len(candidates))
	dst = make([]geometry.Point2D, len(candidates))
	for i, c := range candidates {
		src[i] = c.Src
		dst[i] = c.Dst
	}
	return src, dst
}
