// Package viz writes spot-check imagery: side-by-side panels of an image
// tile, its reference tile, and the model's prediction.
package viz

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"collapse-mapper/internal/raster"

	"golang.org/x/image/draw"
)

const gap = 2 // pixels between panels

// SideBySide composes [0,1]-scaled rasters into one horizontal strip.
// Panels may differ in band count; each is rendered independently.
func SideBySide(panels ...*raster.Raster) (image.Image, error) {
	if len(panels) == 0 {
		return nil, fmt.Errorf("no panels")
	}
	width, height := 0, 0
	for _, p := range panels {
		width += p.Width
		if p.Height > height {
			height = p.Height
		}
	}
	width += gap * (len(panels) - 1)

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	x := 0
	for _, p := range panels {
		img := p.ToImage()
		r := image.Rect(x, 0, x+p.Width, p.Height)
		draw.Draw(out, r, img, image.Point{}, draw.Src)
		x += p.Width + gap
	}
	return out, nil
}

// WriteSideBySide writes the composed strip as a PNG file.
func WriteSideBySide(path string, panels ...*raster.Raster) error {
	img, err := SideBySide(panels...)
	if err != nil {
		return fmt.Errorf("compose %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
