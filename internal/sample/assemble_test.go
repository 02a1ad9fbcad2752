package sample

import (
	"math"
	"testing"

	"collapse-mapper/internal/raster"
	"collapse-mapper/internal/tiling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gridOf(t *testing.T, w, h, tile int, fill func(x, y int) float64) *tiling.Grid {
	t.Helper()
	r := raster.New(w, h, 1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r.Set(x, y, 0, fill(x, y))
		}
	}
	g, err := tiling.Split(r, tile)
	require.NoError(t, err)
	return g
}

func TestAssembleRowMajorOrder(t *testing.T) {
	images := gridOf(t, 64, 64, 32, func(x, y int) float64 { return float64(x + y) })
	masks := gridOf(t, 64, 64, 32, func(x, y int) float64 { return 0 })

	samples, err := Assemble(images, masks)
	require.NoError(t, err)
	require.Len(t, samples, 4)

	want := [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	for i, s := range samples {
		assert.Equal(t, want[i][0], s.Row)
		assert.Equal(t, want[i][1], s.Col)
		assert.Same(t, images.TileAt(s.Row, s.Col), s.Image)
	}
}

func TestAssembleShapeMismatch(t *testing.T) {
	images := gridOf(t, 64, 64, 32, func(x, y int) float64 { return 1 })
	masks := gridOf(t, 96, 64, 32, func(x, y int) float64 { return 0 })
	_, err := Assemble(images, masks)
	assert.Error(t, err)
}

func TestAssembleEmptyGridsRejected(t *testing.T) {
	empty := &tiling.Grid{TileSize: 32}
	_, err := Assemble(empty, empty)
	assert.ErrorIs(t, err, ErrNoSamples)
}

func TestDifferenceTileConstantInputNoNaN(t *testing.T) {
	// A constant-value tile must pass through normalization unchanged,
	// never as NaN/Inf.
	pre := raster.New(32, 32, 1)
	post := raster.New(32, 32, 1)
	for i := range pre.Pix {
		pre.Pix[i] = 7
		post.Pix[i] = 7
	}
	diff, err := DifferenceTile(pre, post)
	require.NoError(t, err)
	for _, v := range diff.Pix {
		require.False(t, math.IsNaN(v))
		require.False(t, math.IsInf(v, 0))
		assert.Equal(t, 0.0, v)
	}
}

func TestAssembleChangeIdenticalPrePostIsZero(t *testing.T) {
	fill := func(x, y int) float64 { return float64(3*x + 2*y) }
	pre := gridOf(t, 64, 64, 32, fill)
	post := gridOf(t, 64, 64, 32, fill)
	masks := gridOf(t, 64, 64, 32, func(x, y int) float64 { return 0 })

	samples, err := AssembleChange(pre, post, masks)
	require.NoError(t, err)
	require.Len(t, samples, 4)
	for _, s := range samples {
		for _, v := range s.Image.Pix {
			assert.Equal(t, 0.0, v)
		}
	}
}

func TestDifferenceTileRange(t *testing.T) {
	pre := raster.New(2, 1, 1)
	post := raster.New(2, 1, 1)
	pre.Set(0, 0, 0, 0)
	pre.Set(1, 0, 0, 10)
	post.Set(0, 0, 0, 10)
	post.Set(1, 0, 0, 0)

	diff, err := DifferenceTile(pre, post)
	require.NoError(t, err)
	// Difference is (1,-1) before renormalization, so (1,0) after.
	assert.Equal(t, 1.0, diff.At(0, 0, 0))
	assert.Equal(t, 0.0, diff.At(1, 0, 0))
}

func TestDifferenceTileShapeMismatch(t *testing.T) {
	_, err := DifferenceTile(raster.New(32, 32, 1), raster.New(16, 16, 1))
	assert.Error(t, err)
}

func TestImagesLabelsPreserveOrder(t *testing.T) {
	images := gridOf(t, 64, 32, 32, func(x, y int) float64 { return float64(x) })
	masks := gridOf(t, 64, 32, 32, func(x, y int) float64 { return 1 })
	samples, err := Assemble(images, masks)
	require.NoError(t, err)

	imgs := Images(samples)
	labels := Labels(samples)
	require.Len(t, imgs, 2)
	for i := range samples {
		assert.Same(t, samples[i].Image, imgs[i])
		assert.Same(t, samples[i].Label, labels[i])
	}
}
