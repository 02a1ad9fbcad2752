package alignment

import (
	"fmt"
	"image"
	"image/color"

	"collapse-mapper/internal/log"
	"collapse-mapper/internal/raster"
	"collapse-mapper/pkg/geometry"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

const logTag = "alignment: "

// Options configures cross-source registration.
type Options struct {
	Ratio           float64 // nearest/second-nearest rejection ratio
	MinMatches      int     // minimum accepted matches before estimation
	Iterations      int     // RANSAC iterations
	InlierThreshold float64 // RANSAC inlier residual in pixels
	Band            int     // reference band used for intensity; -1 = luma
	Seed            int64   // estimator RNG seed
}

// DefaultOptions returns the registration settings used by the pipeline.
func DefaultOptions() Options {
	est := DefaultEstimateOptions()
	return Options{
		Ratio:           0.7,
		MinMatches:      4,
		Iterations:      est.Iterations,
		InlierThreshold: est.InlierThreshold,
		Band:            -1,
		Seed:            est.Seed,
	}
}

// Result holds a registered auxiliary image and how it was produced.
type Result struct {
	Aligned   *raster.Raster // reference-sized, intensity in [0,1]
	Transform geometry.AffineTransform
	Matches   int  // accepted matches after the ratio test
	Inliers   int  // consensus inliers behind the transform
	Fallback  bool // true when registration degraded to a plain resize
}

// Align registers an auxiliary image onto the reference raster's pixel
// grid using keypoint matching and a robust affine fit. Registration
// failure is never fatal: too few keypoints, too few unambiguous
// matches, or estimator failure all degrade to a plain resize of the
// auxiliary image to the reference dimensions. Either way the output is
// resized to the exact reference dimensions and rescaled to [0,1].
func Align(ref, aux *raster.Raster, opts Options) (*Result, error) {
	if ref.Width == 0 || ref.Height == 0 || aux.Width == 0 || aux.Height == 0 {
		return nil, fmt.Errorf("empty input image")
	}

	candidates, err := matchKeypoints(ref, aux, opts)
	if err != nil {
		log.Warn(logTag+"keypoint matching failed, falling back to resize", zap.Error(err))
		return fallbackResize(aux, ref.Width, ref.Height), nil
	}
	if len(candidates) < opts.MinMatches {
		log.Warn(logTag+"too few unambiguous matches, falling back to resize",
			zap.Int("matches", len(candidates)), zap.Int("required", opts.MinMatches))
		return fallbackResize(aux, ref.Width, ref.Height), nil
	}

	src, dst := splitPoints(candidates)
	transform, inliers, err := EstimateAffine(src, dst, EstimateOptions{
		Iterations:      opts.Iterations,
		InlierThreshold: opts.InlierThreshold,
		Seed:            opts.Seed,
	})
	if err != nil {
		log.Warn(logTag+"affine estimation failed, falling back to resize", zap.Error(err))
		return fallbackResize(aux, ref.Width, ref.Height), nil
	}

	warped := warpToReference(aux, transform, ref.Width, ref.Height)
	log.Info(logTag+"registered auxiliary image",
		zap.Int("matches", len(candidates)),
		zap.Int("inliers", len(inliers)),
		zap.Float64("rotationDeg", transform.Rotation()),
		zap.Float64("scale", transform.Scale()))

	return &Result{
		Aligned:   warped.Normalize(),
		Transform: transform,
		Matches:   len(candidates),
		Inliers:   len(inliers),
	}, nil
}

// matchKeypoints detects scale/rotation-invariant keypoints on intensity
// versions of both images and pairs them with a 2-NN descriptor search
// filtered by the ratio test.
func matchKeypoints(ref, aux *raster.Raster, opts Options) ([]Candidate, error) {
	refMat, err := grayMat(intensity(ref, opts.Band))
	if err != nil {
		return nil, fmt.Errorf("reference intensity: %w", err)
	}
	defer refMat.Close()
	auxMat, err := grayMat(aux.Luma())
	if err != nil {
		return nil, fmt.Errorf("auxiliary intensity: %w", err)
	}
	defer auxMat.Close()

	sift := gocv.NewSIFT()
	defer sift.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	refKeypoints, refDesc := sift.DetectAndCompute(refMat, mask)
	defer refDesc.Close()
	auxKeypoints, auxDesc := sift.DetectAndCompute(auxMat, mask)
	defer auxDesc.Close()

	if len(refKeypoints) < opts.MinMatches || len(auxKeypoints) < opts.MinMatches {
		return nil, fmt.Errorf("too few keypoints: ref=%d aux=%d", len(refKeypoints), len(auxKeypoints))
	}

	matcher := gocv.NewBFMatcher()
	defer matcher.Close()
	knn := matcher.KNNMatch(auxDesc, refDesc, 2)

	candidates := make([]Candidate, 0, len(knn))
	for _, pair := range knn {
		if len(pair) < 2 {
			continue
		}
		best := pair[0]
		candidates = append(candidates, Candidate{
			Src:    geometry.Point2D{X: auxKeypoints[best.QueryIdx].X, Y: auxKeypoints[best.QueryIdx].Y},
			Dst:    geometry.Point2D{X: refKeypoints[best.TrainIdx].X, Y: refKeypoints[best.TrainIdx].Y},
			Best:   best.Distance,
			Second: pair[1].Distance,
		})
	}
	return RatioFilter(candidates, opts.Ratio), nil
}

// warpToReference applies the affine transform to every band of the
// auxiliary image, producing a reference-sized raster. Warping runs per
// band in float space so sample values survive exactly.
func warpToReference(aux *raster.Raster, transform geometry.AffineTransform, width, height int) *raster.Raster {
	xfMat := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	defer xfMat.Close()
	xfMat.SetDoubleAt(0, 0, transform.A)
	xfMat.SetDoubleAt(0, 1, transform.B)
	xfMat.SetDoubleAt(0, 2, transform.TX)
	xfMat.SetDoubleAt(1, 0, transform.C)
	xfMat.SetDoubleAt(1, 1, transform.D)
	xfMat.SetDoubleAt(1, 2, transform.TY)

	out := raster.New(width, height, aux.Bands)
	for b := 0; b < aux.Bands; b++ {
		src := bandMat(aux, b)
		dst := gocv.NewMat()
		gocv.WarpAffineWithParams(src, &dst, xfMat, image.Point{X: width, Y: height},
			gocv.InterpolationLinear, gocv.BorderConstant, color.RGBA{})
		storeBand(dst, out, b)
		dst.Close()
		src.Close()
	}
	return out
}

// fallbackResize is the degraded path: an isotropic resize of the
// auxiliary image to the reference dimensions, rescaled to [0,1].
func fallbackResize(aux *raster.Raster, width, height int) *Result {
	return &Result{
		Aligned:   resizeRaster(aux, width, height).Normalize(),
		Transform: geometry.Identity(),
		Fallback:  true,
	}
}

func resizeRaster(r *raster.Raster, width, height int) *raster.Raster {
	out := raster.New(width, height, r.Bands)
	for b := 0; b < r.Bands; b++ {
		src := bandMat(r, b)
		dst := gocv.NewMat()
		gocv.Resize(src, &dst, image.Point{X: width, Y: height}, 0, 0, gocv.InterpolationLinear)
		storeBand(dst, out, b)
		dst.Close()
		src.Close()
	}
	return out
}

// intensity selects the designated band of a multiband reference, or
// collapses 3-channel imagery to luma when band is negative.
func intensity(r *raster.Raster, band int) *raster.Raster {
	if band >= 0 && band < r.Bands {
		b, err := r.ExtractBand(band)
		if err == nil {
			return b
		}
	}
	return r.Luma()
}
