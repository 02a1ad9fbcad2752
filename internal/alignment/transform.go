package alignment

import (
	"fmt"
	"math/rand"

	"collapse-mapper/pkg/geometry"

	"gonum.org/v1/gonum/mat"
)

// EstimateOptions tunes the consensus affine estimator.
type EstimateOptions struct {
	Iterations      int     // RANSAC iterations
	InlierThreshold float64 // max residual in pixels for an inlier
	Seed            int64   // RNG seed; fixed so runs are reproducible
}

// DefaultEstimateOptions returns the estimator settings used by Align.
func DefaultEstimateOptions() EstimateOptions {
	return EstimateOptions{
		Iterations:      2000,
		InlierThreshold: 3.0,
		Seed:            1,
	}
}

// EstimateAffine fits a 2D affine transform mapping src points onto dst
// points with a RANSAC consensus loop, then refines the winning model by
// least squares over all inliers. It returns the transform and the
// inlier indices, or an error when no consensus emerges.
func EstimateAffine(src, dst []geometry.Point2D, opts EstimateOptions) (geometry.AffineTransform, []int, error) {
	if len(src) != len(dst) {
		return geometry.AffineTransform{}, nil, fmt.Errorf("point count mismatch: %d vs %d", len(src), len(dst))
	}
	if len(src) < 3 {
		return geometry.AffineTransform{}, nil, fmt.Errorf("need at least 3 point pairs, got %d", len(src))
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	n := len(src)
	var bestInliers []int
	var bestTransform geometry.AffineTransform

	for iter := 0; iter < opts.Iterations; iter++ {
		indices := rng.Perm(n)[:3]
		sample := [3]geometry.Point2D{src[indices[0]], src[indices[1]], src[indices[2]]}
		target := [3]geometry.Point2D{dst[indices[0]], dst[indices[1]], dst[indices[2]]}

		transform, err := solveAffineExact(sample, target)
		if err != nil {
			continue
		}

		var inliers []int
		for i := range src {
			if transform.Apply(src[i]).Distance(dst[i]) < opts.InlierThreshold {
				inliers = append(inliers, i)
			}
		}
		if len(inliers) > len(bestInliers) {
			bestInliers = inliers
			bestTransform = transform
		}
	}

	if len(bestInliers) < 3 {
		return geometry.AffineTransform{}, nil, fmt.Errorf("consensus failed: best model has %d inliers", len(bestInliers))
	}

	inlierSrc := make([]geometry.Point2D, len(bestInliers))
	inlierDst := make([]geometry.Point2D, len(bestInliers))
	for i, idx := range bestInliers {
		inlierSrc[i] = src[idx]
		inlierDst[i] = dst[idx]
	}
	refined, err := solveAffineLeastSquares(inlierSrc, inlierDst)
	if err != nil {
		// The minimal-sample model is still a valid consensus.
		return bestTransform, bestInliers, nil
	}
	return refined, bestInliers, nil
}

// solveAffineExact computes the affine transform through exactly three
// point pairs by solving the 6x6 linear system
// [x', y'] = [a b tx; c d ty] * [x, y, 1].
func solveAffineExact(src, dst [3]geometry.Point2D) (geometry.AffineTransform, error) {
	A := mat.NewDense(6, 6, nil)
	B := mat.NewVecDense(6, nil)
	for i := 0; i < 3; i++ {
		x, y := src[i].X, src[i].Y
		A.Set(i*2, 0, x)
		A.Set(i*2, 1, y)
		A.Set(i*2, 2, 1)
		B.SetVec(i*2, dst[i].X)

		A.Set(i*2+1, 3, x)
		A.Set(i*2+1, 4, y)
		A.Set(i*2+1, 5, 1)
		B.SetVec(i*2+1, dst[i].Y)
	}

	var params mat.VecDense
	if err := params.SolveVec(A, B); err != nil {
		return geometry.AffineTransform{}, err
	}
	return transformFromVec(&params), nil
}

// solveAffineLeastSquares solves the overdetermined system for n >= 3
// point pairs via QR decomposition.
func solveAffineLeastSquares(src, dst []geometry.Point2D) (geometry.AffineTransform, error) {
	n := len(src)
	if n < 3 {
		return geometry.AffineTransform{}, fmt.Errorf("need at least 3 point pairs, got %d", n)
	}

	A := mat.NewDense(n*2, 6, nil)
	B := mat.NewVecDense(n*2, nil)
	for i := 0; i < n; i++ {
		x, y := src[i].X, src[i].Y
		A.Set(i*2, 0, x)
		A.Set(i*2, 1, y)
		A.Set(i*2, 2, 1)
		B.SetVec(i*2, dst[i].X)

		A.Set(i*2+1, 3, x)
		A.Set(i*2+1, 4, y)
		A.Set(i*2+1, 5, 1)
		B.SetVec(i*2+1, dst[i].Y)
	}

	var qr mat.QR
	qr.Factorize(A)
	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, B); err != nil {
		return geometry.AffineTransform{}, err
	}
	return transformFromVec(&params), nil
}

func transformFromVec(v *mat.VecDense) geometry.AffineTransform {
	return geometry.AffineTransform{
		A:  v.AtVec(0),
		B:  v.AtVec(1),
		TX: v.AtVec(2),
		C:  v.AtVec(3),
		D:  v.AtVec(4),
		TY: v.AtVec(5),
	}
}
