package tiling

import (
	"fmt"

	"collapse-mapper/internal/raster"
)

// Grid is a row-major arrangement of non-overlapping T×T tiles exactly
// covering a padded raster. Tile (i, j) sits at pixel offset (j*T, i*T).
type Grid struct {
	Rows     int
	Cols     int
	TileSize int
	Tiles    []*raster.Raster // row-major, length Rows*Cols
}

// TileAt returns the tile at grid position (i, j), i indexing rows.
func (g *Grid) TileAt(i, j int) *raster.Raster {
	return g.Tiles[i*g.Cols+j]
}

// Index flattens a grid position into the row-major tile index.
func (g *Grid) Index(i, j int) int {
	return i*g.Cols + j
}

// Position splits a row-major tile index back into (i, j).
func (g *Grid) Position(idx int) (int, int) {
	return idx / g.Cols, idx % g.Cols
}

// Split cuts a padded raster into a Grid of tile×tile windows, stride
// equal to tile. Both dimensions must be exact multiples of tile; Pad
// enforces that upstream.
func Split(r *raster.Raster, tile int) (*Grid, error) {
	if tile <= 0 {
		return nil, fmt.Errorf("tile size must be positive, got %d", tile)
	}
	if r.Width%tile != 0 || r.Height%tile != 0 {
		return nil, fmt.Errorf("raster %dx%d not divisible by tile size %d", r.Width, r.Height, tile)
	}

	rows := r.Height / tile
	cols := r.Width / tile
	g := &Grid{
		Rows:     rows,
		Cols:     cols,
		TileSize: tile,
		Tiles:    make([]*raster.Raster, 0, rows*cols),
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			t := raster.New(tile, tile, r.Bands)
			for y := 0; y < tile; y++ {
				srcY := i*tile + y
				src := (srcY*r.Width + j*tile) * r.Bands
				dst := y * tile * r.Bands
				copy(t.Pix[dst:dst+tile*r.Bands], r.Pix[src:src+tile*r.Bands])
			}
			g.Tiles = append(g.Tiles, t)
		}
	}
	return g, nil
}
