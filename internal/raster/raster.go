// Package raster holds in-memory multiband rasters and their disk I/O.
//
// A Raster keeps float64 samples in row-major, band-interleaved order so
// the tiling stages can slice windows without caring about band count.
// Label masks are single-band Rasters with values constrained to {0,1}.
package raster

import (
	"fmt"
	"math"
)

// GeoRef anchors a raster in geographic space: a GDAL-style geotransform
// (origin, pixel size, rotation terms) plus a projection WKT.
type GeoRef struct {
	Transform  [6]float64
	Projection string
}

// Raster is a height×width×bands array of float64 samples. Samples are
// stored row-major and band-interleaved: index (y*Width+x)*Bands+b.
type Raster struct {
	Width  int
	Height int
	Bands  int
	Pix    []float64
	Geo    *GeoRef // nil when the source carries no georeferencing
}

// New allocates a zero-filled raster.
func New(width, height, bands int) *Raster {
	return &Raster{
		Width:  width,
		Height: height,
		Bands:  bands,
		Pix:    make([]float64, width*height*bands),
	}
}

// At returns the sample at pixel (x, y) in band b.
func (r *Raster) At(x, y, b int) float64 {
	return r.Pix[(y*r.Width+x)*r.Bands+b]
}

// Set writes the sample at pixel (x, y) in band b.
func (r *Raster) Set(x, y, b int, v float64) {
	r.Pix[(y*r.Width+x)*r.Bands+b] = v
}

// Clone returns a deep copy sharing no storage with the receiver.
func (r *Raster) Clone() *Raster {
	out := &Raster{Width: r.Width, Height: r.Height, Bands: r.Bands}
	out.Pix = make([]float64, len(r.Pix))
	copy(out.Pix, r.Pix)
	if r.Geo != nil {
		geo := *r.Geo
		out.Geo = &geo
	}
	return out
}

// BandRange returns the minimum and maximum sample of band b.
func (r *Raster) BandRange(b int) (min, max float64) {
	min = math.Inf(1)
	max = math.Inf(-1)
	for i := b; i < len(r.Pix); i += r.Bands {
		v := r.Pix[i]
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// Normalize min-max rescales each band independently to [0,1] and returns
// the result as a new raster. A band whose value range has zero spread is
// copied unchanged rather than divided by zero.
func (r *Raster) Normalize() *Raster {
	out := r.Clone()
	for b := 0; b < r.Bands; b++ {
		min, max := r.BandRange(b)
		spread := max - min
		if spread == 0 {
			continue
		}
		for i := b; i < len(out.Pix); i += out.Bands {
			out.Pix[i] = (out.Pix[i] - min) / spread
		}
	}
	return out
}

// Crop returns the top-left width×height region as a new raster. The
// pipeline uses it to trim reconstructed outputs back to the pre-padding
// footprint.
func (r *Raster) Crop(width, height int) (*Raster, error) {
	if width <= 0 || height <= 0 || width > r.Width || height > r.Height {
		return nil, fmt.Errorf("crop %dx%d outside raster %dx%d", width, height, r.Width, r.Height)
	}
	out := New(width, height, r.Bands)
	if r.Geo != nil {
		geo := *r.Geo
		out.Geo = &geo
	}
	rowLen := width * r.Bands
	for y := 0; y < height; y++ {
		src := (y*r.Width + 0) * r.Bands
		copy(out.Pix[y*rowLen:(y+1)*rowLen], r.Pix[src:src+rowLen])
	}
	return out, nil
}

// Binarize thresholds a single-band raster into a {0,1} mask. Samples
// strictly above cutoff become 1.
func (r *Raster) Binarize(cutoff float64) (*Raster, error) {
	if r.Bands != 1 {
		return nil, fmt.Errorf("binarize needs a single band, got %d", r.Bands)
	}
	out := r.Clone()
	for i, v := range out.Pix {
		if v > cutoff {
			out.Pix[i] = 1
		} else {
			out.Pix[i] = 0
		}
	}
	return out, nil
}

// Luma collapses a 3-band raster to single-band intensity using Rec. 601
// weights. Single-band rasters are returned as a copy; other band counts
// fall back to the first band.
func (r *Raster) Luma() *Raster {
	if r.Bands == 1 {
		return r.Clone()
	}
	out := New(r.Width, r.Height, 1)
	if r.Geo != nil {
		geo := *r.Geo
		out.Geo = &geo
	}
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			if r.Bands >= 3 {
				out.Set(x, y, 0, 0.299*r.At(x, y, 0)+0.587*r.At(x, y, 1)+0.114*r.At(x, y, 2))
			} else {
				out.Set(x, y, 0, r.At(x, y, 0))
			}
		}
	}
	return out
}

// ExtractBand copies band b into a new single-band raster.
func (r *Raster) ExtractBand(b int) (*Raster, error) {
	if b < 0 || b >= r.Bands {
		return nil, fmt.Errorf("band %d out of range [0,%d)", b, r.Bands)
	}
	out := New(r.Width, r.Height, 1)
	if r.Geo != nil {
		geo := *r.Geo
		out.Geo = &geo
	}
	for i := 0; i < r.Width*r.Height; i++ {
		out.Pix[i] = r.Pix[i*r.Bands+b]
	}
	return out, nil
}
