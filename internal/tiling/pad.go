// Package tiling cuts rasters into fixed-size non-overlapping tile grids
// and reassembles per-tile results back into full-size rasters.
package tiling

import (
	"fmt"

	"collapse-mapper/internal/raster"
)

// Pad zero-fills a raster on the bottom and right edges so both
// dimensions become exact multiples of tile. Padding never shifts the
// origin, so tile grid coordinates stay stable relative to the source.
// The input is returned as a copy when it already fits.
func Pad(r *raster.Raster, tile int) (*raster.Raster, error) {
	if tile <= 0 {
		return nil, fmt.Errorf("tile size must be positive, got %d", tile)
	}
	padW := ceilMultiple(r.Width, tile)
	padH := ceilMultiple(r.Height, tile)
	if padW == r.Width && padH == r.Height {
		return r.Clone(), nil
	}

	out := raster.New(padW, padH, r.Bands)
	if r.Geo != nil {
		geo := *r.Geo
		out.Geo = &geo
	}
	rowLen := r.Width * r.Bands
	for y := 0; y < r.Height; y++ {
		src := y * rowLen
		dst := y * padW * r.Bands
		copy(out.Pix[dst:dst+rowLen], r.Pix[src:src+rowLen])
	}
	return out, nil
}

func ceilMultiple(n, m int) int {
	return ((n + m - 1) / m) * m
}
