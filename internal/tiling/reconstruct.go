package tiling

import (
	"fmt"

	"collapse-mapper/internal/log"
	"collapse-mapper/internal/raster"

	"go.uber.org/zap"
)

// ErrShortTileSequence reports a reconstruction attempt with fewer tiles
// than the target grid needs.
var ErrShortTileSequence = fmt.Errorf("not enough tiles for reconstruction")

// Reconstruct reassembles a flat row-major tile sequence into one
// contiguous raster of cols*tile by rows*tile pixels, inverting Split.
// Only the first rows*cols tiles are used; trailing entries are
// discarded with a warning. Fewer tiles than the grid needs is an error.
func Reconstruct(tiles []*raster.Raster, rows, cols, tile int) (*raster.Raster, error) {
	if rows <= 0 || cols <= 0 || tile <= 0 {
		return nil, fmt.Errorf("invalid grid shape %dx%d tile %d", rows, cols, tile)
	}
	need := rows * cols
	if len(tiles) < need {
		return nil, fmt.Errorf("%w: expected %d tiles for %dx%d grid, got %d",
			ErrShortTileSequence, need, rows, cols, len(tiles))
	}
	if len(tiles) > need {
		log.Warn("reconstruct: discarding excess tiles",
			zap.Int("expected", need), zap.Int("got", len(tiles)))
	}

	bands := tiles[0].Bands
	out := raster.New(cols*tile, rows*tile, bands)
	for idx := 0; idx < need; idx++ {
		t := tiles[idx]
		if t.Width != tile || t.Height != tile || t.Bands != bands {
			return nil, fmt.Errorf("tile %d is %dx%dx%d, want %dx%dx%d",
				idx, t.Width, t.Height, t.Bands, tile, tile, bands)
		}
		i, j := idx/cols, idx%cols
		for y := 0; y < tile; y++ {
			dst := ((i*tile+y)*out.Width + j*tile) * bands
			src := y * tile * bands
			copy(out.Pix[dst:dst+tile*bands], t.Pix[src:src+tile*bands])
		}
	}
	return out, nil
}
