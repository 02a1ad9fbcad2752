package alignment

import (
	"fmt"

	"collapse-mapper/internal/raster"

	"gocv.io/x/gocv"
)

// grayMat converts a single-band raster to an 8-bit grayscale Mat,
// stretching the raster's value range over 0..255 so the keypoint
// detector sees full contrast regardless of the source's bit depth.
func grayMat(r *raster.Raster) (gocv.Mat, error) {
	if r.Bands != 1 {
		return gocv.Mat{}, fmt.Errorf("grayMat needs a single band, got %d", r.Bands)
	}
	data := make([]byte, r.Width*r.Height)
	if min, max := r.BandRange(0); max > min {
		n := r.Normalize()
		for i, v := range n.Pix {
			data[i] = quantize(v)
		}
	} else {
		// Uniform input: any gray level works, no keypoints exist anyway.
		for i := range data {
			data[i] = 127
		}
	}
	return gocv.NewMatFromBytes(r.Height, r.Width, gocv.MatTypeCV8U, data)
}

// bandMat copies one band of a raster into a CV64F Mat, preserving the
// sample values exactly. Warp and resize run per band in float space so
// the zero-spread no-op rule survives interpolation.
func bandMat(r *raster.Raster, b int) gocv.Mat {
	m := gocv.NewMatWithSize(r.Height, r.Width, gocv.MatTypeCV64F)
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			m.SetDoubleAt(y, x, r.At(x, y, b))
		}
	}
	return m
}

// storeBand copies a CV64F Mat back into band b of a raster.
func storeBand(m gocv.Mat, r *raster.Raster, b int) {
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			r.Set(x, y, b, m.GetDoubleAt(y, x))
		}
	}
}

func quantize(v float64) byte {
	s := v * 255
	if s < 0 {
		return 0
	}
	if s > 255 {
		return 255
	}
	return byte(s)
}
