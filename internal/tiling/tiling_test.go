package tiling

import (
	"testing"

	"collapse-mapper/internal/raster"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialRaster(w, h, bands int) *raster.Raster {
	r := raster.New(w, h, bands)
	for i := range r.Pix {
		r.Pix[i] = float64(i)
	}
	return r
}

func TestPadRoundsUpToTileMultiple(t *testing.T) {
	r := sequentialRaster(100, 100, 1)
	p, err := Pad(r, 32)
	require.NoError(t, err)
	assert.Equal(t, 128, p.Width)
	assert.Equal(t, 128, p.Height)

	// Original region pixel-exact, padding zero.
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			assert.Equal(t, r.At(x, y, 0), p.At(x, y, 0))
		}
	}
	assert.Equal(t, 0.0, p.At(127, 0, 0))
	assert.Equal(t, 0.0, p.At(0, 127, 0))
}

func TestPadExactFitCopies(t *testing.T) {
	r := sequentialRaster(64, 32, 2)
	p, err := Pad(r, 32)
	require.NoError(t, err)
	assert.Equal(t, r.Pix, p.Pix)
	// A copy, not the same backing array.
	p.Pix[0] = -1
	assert.Equal(t, 0.0, r.Pix[0])
}

func TestPadRejectsBadTileSize(t *testing.T) {
	_, err := Pad(sequentialRaster(8, 8, 1), 0)
	assert.Error(t, err)
	_, err = Pad(sequentialRaster(8, 8, 1), -4)
	assert.Error(t, err)
}

func TestSplitShapeAndContent(t *testing.T) {
	r := sequentialRaster(64, 96, 1)
	g, err := Split(r, 32)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Rows)
	assert.Equal(t, 2, g.Cols)
	require.Len(t, g.Tiles, 6)

	// tile[i][j] equals the source window at (j*T, i*T).
	tile := g.TileAt(2, 1)
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			assert.Equal(t, r.At(32+x, 64+y, 0), tile.At(x, y, 0))
		}
	}
}

func TestSplitRejectsIndivisible(t *testing.T) {
	_, err := Split(sequentialRaster(100, 128, 1), 32)
	assert.Error(t, err)
}

func TestSplitReconstructIdentity(t *testing.T) {
	r := sequentialRaster(96, 64, 3)
	g, err := Split(r, 32)
	require.NoError(t, err)

	back, err := Reconstruct(g.Tiles, g.Rows, g.Cols, g.TileSize)
	require.NoError(t, err)
	assert.Equal(t, r.Width, back.Width)
	assert.Equal(t, r.Height, back.Height)
	assert.Equal(t, r.Pix, back.Pix)
}

func TestReconstructShortSequenceFails(t *testing.T) {
	g, err := Split(sequentialRaster(64, 64, 1), 32)
	require.NoError(t, err)

	_, err = Reconstruct(g.Tiles[:3], g.Rows, g.Cols, g.TileSize)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShortTileSequence)
	assert.Contains(t, err.Error(), "expected 4")
	assert.Contains(t, err.Error(), "got 3")
}

func TestReconstructTruncatesExcess(t *testing.T) {
	g, err := Split(sequentialRaster(64, 64, 1), 32)
	require.NoError(t, err)

	extra := append(append([]*raster.Raster{}, g.Tiles...), raster.New(32, 32, 1))
	back, err := Reconstruct(extra, g.Rows, g.Cols, g.TileSize)
	require.NoError(t, err)
	assert.Equal(t, 64, back.Width)
	assert.Equal(t, 64, back.Height)
}

func TestReconstructZeroPredictionsScenario(t *testing.T) {
	// 100x100 @ T=32 pads to 128x128 and yields a 4x4 grid of 16 tiles;
	// 16 all-zero predictions reconstruct to an all-zero 128x128 array.
	p, err := Pad(sequentialRaster(100, 100, 1), 32)
	require.NoError(t, err)
	g, err := Split(p, 32)
	require.NoError(t, err)
	require.Len(t, g.Tiles, 16)

	preds := make([]*raster.Raster, 16)
	for i := range preds {
		preds[i] = raster.New(32, 32, 1)
	}
	out, err := Reconstruct(preds, 4, 4, 32)
	require.NoError(t, err)
	assert.Equal(t, 128, out.Width)
	assert.Equal(t, 128, out.Height)
	for _, v := range out.Pix {
		assert.Equal(t, 0.0, v)
	}
}

func TestGridIndexing(t *testing.T) {
	g := &Grid{Rows: 3, Cols: 4}
	assert.Equal(t, 7, g.Index(1, 3))
	i, j := g.Position(7)
	assert.Equal(t, 1, i)
	assert.Equal(t, 3, j)
}
