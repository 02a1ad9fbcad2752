package viz

import (
	"testing"

	"collapse-mapper/internal/raster"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSideBySideDimensions(t *testing.T) {
	a := raster.New(32, 32, 3)
	b := raster.New(32, 32, 1)
	c := raster.New(32, 32, 1)

	img, err := SideBySide(a, b, c)
	require.NoError(t, err)
	bounds := img.Bounds()
	assert.Equal(t, 32*3+gap*2, bounds.Dx())
	assert.Equal(t, 32, bounds.Dy())
}

func TestSideBySidePanelContent(t *testing.T) {
	a := raster.New(2, 2, 1)
	for i := range a.Pix {
		a.Pix[i] = 1 // white panel
	}
	b := raster.New(2, 2, 1) // black panel

	img, err := SideBySide(a, b)
	require.NoError(t, err)

	r, _, _, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	r2, _, _, _ := img.At(2+gap, 0).RGBA()
	assert.Equal(t, uint32(0), r2)
}

func TestSideBySideEmpty(t *testing.T) {
	_, err := SideBySide()
	assert.Error(t, err)
}
