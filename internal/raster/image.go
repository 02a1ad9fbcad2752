package raster

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"

	_ "golang.org/x/image/tiff"
)

// LoadImage decodes an ordinary image file (auxiliary imagery: png, jpeg
// or tiff) into a 3-band raster with samples in [0,255]. No
// georeferencing is assumed for these sources.
func LoadImage(path string) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}

	bounds := img.Bounds()
	out := New(bounds.Dx(), bounds.Dy(), 3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r16, g16, b16, _ := img.At(x, y).RGBA()
			px, py := x-bounds.Min.X, y-bounds.Min.Y
			out.Set(px, py, 0, float64(r16>>8))
			out.Set(px, py, 1, float64(g16>>8))
			out.Set(px, py, 2, float64(b16>>8))
		}
	}
	return out, nil
}

// ToImage renders a raster as an 8-bit image for quick viewing. Samples
// are assumed to lie in [0,1]; single-band rasters become grayscale,
// anything with 3+ bands uses the first three as RGB.
func (r *Raster) ToImage() image.Image {
	if r.Bands == 1 {
		img := image.NewGray(image.Rect(0, 0, r.Width, r.Height))
		for y := 0; y < r.Height; y++ {
			for x := 0; x < r.Width; x++ {
				img.SetGray(x, y, color.Gray{Y: clamp8(r.At(x, y, 0))})
			}
		}
		return img
	}
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			c := color.RGBA{A: 255}
			c.R = clamp8(r.At(x, y, 0))
			if r.Bands >= 3 {
				c.G = clamp8(r.At(x, y, 1))
				c.B = clamp8(r.At(x, y, 2))
			} else {
				c.G, c.B = c.R, c.R
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// WritePNG writes a [0,1]-scaled raster as a PNG file.
func WritePNG(path string, r *Raster) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, r.ToImage()); err != nil {
		return fmt.Errorf("encode png %s: %w", path, err)
	}
	return nil
}

func clamp8(v float64) uint8 {
	s := v * 255
	if s < 0 {
		return 0
	}
	if s > 255 {
		return 255
	}
	return uint8(s)
}
