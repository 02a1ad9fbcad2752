package alignment

import (
	"math"
	"math/rand"
	"testing"

	"collapse-mapper/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applyKnown(src []geometry.Point2D, xf geometry.AffineTransform) []geometry.Point2D {
	dst := make([]geometry.Point2D, len(src))
	for i, p := range src {
		dst[i] = xf.Apply(p)
	}
	return dst
}

func scatter(n int, seed int64) []geometry.Point2D {
	rng := rand.New(rand.NewSource(seed))
	pts := make([]geometry.Point2D, n)
	for i := range pts {
		pts[i] = geometry.Point2D{X: rng.Float64() * 1000, Y: rng.Float64() * 800}
	}
	return pts
}

func TestEstimateAffineExactPoints(t *testing.T) {
	theta := 10 * math.Pi / 180
	want := geometry.AffineTransform{
		A: 1.1 * math.Cos(theta), B: -1.1 * math.Sin(theta), TX: 25,
		C: 1.1 * math.Sin(theta), D: 1.1 * math.Cos(theta), TY: -40,
	}
	src := scatter(20, 7)
	dst := applyKnown(src, want)

	got, inliers, err := EstimateAffine(src, dst, DefaultEstimateOptions())
	require.NoError(t, err)
	assert.Len(t, inliers, 20)
	assert.InDelta(t, want.A, got.A, 1e-6)
	assert.InDelta(t, want.B, got.B, 1e-6)
	assert.InDelta(t, want.TX, got.TX, 1e-3)
	assert.InDelta(t, want.C, got.C, 1e-6)
	assert.InDelta(t, want.D, got.D, 1e-6)
	assert.InDelta(t, want.TY, got.TY, 1e-3)
}

func TestEstimateAffineRejectsOutliers(t *testing.T) {
	want := geometry.AffineTransform{A: 1, D: 1, TX: 100, TY: 50}
	src := scatter(30, 11)
	dst := applyKnown(src, want)

	// Corrupt a quarter of the correspondences.
	rng := rand.New(rand.NewSource(13))
	for i := 0; i < 8; i++ {
		dst[i].X += 200 + rng.Float64()*500
		dst[i].Y -= 300 + rng.Float64()*500
	}

	got, inliers, err := EstimateAffine(src, dst, DefaultEstimateOptions())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(inliers), 22)
	assert.InDelta(t, 100.0, got.TX, 1e-3)
	assert.InDelta(t, 50.0, got.TY, 1e-3)

	residual := got.MeanResidual(src[8:], dst[8:])
	assert.Less(t, residual, 1e-6)
}

func TestEstimateAffineTooFewPoints(t *testing.T) {
	src := scatter(2, 3)
	_, _, err := EstimateAffine(src, src, DefaultEstimateOptions())
	assert.Error(t, err)
}

func TestEstimateAffineCountMismatch(t *testing.T) {
	_, _, err := EstimateAffine(scatter(5, 3), scatter(4, 3), DefaultEstimateOptions())
	assert.Error(t, err)
}

func TestEstimateAffineDegenerateNoConsensus(t *testing.T) {
	// All source points coincide; no affine model can separate inliers.
	src := make([]geometry.Point2D, 10)
	dst := scatter(10, 5)
	opts := DefaultEstimateOptions()
	opts.Iterations = 200
	_, _, err := EstimateAffine(src, dst, opts)
	assert.Error(t, err)
}

func TestEstimateAffineDeterministic(t *testing.T) {
	want := geometry.AffineTransform{A: 0.9, B: 0.05, TX: 5, C: -0.05, D: 0.9, TY: -3}
	src := scatter(25, 21)
	dst := applyKnown(src, want)
	dst[0].X += 400 // one outlier

	opts := DefaultEstimateOptions()
	first, _, err := EstimateAffine(src, dst, opts)
	require.NoError(t, err)
	second, _, err := EstimateAffine(src, dst, opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
