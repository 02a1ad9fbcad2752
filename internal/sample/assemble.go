// Package sample turns parallel tile grids into flat (tile, label)
// training examples for the collapse model.
package sample

import (
	"errors"
	"fmt"

	"collapse-mapper/internal/raster"
	"collapse-mapper/internal/tiling"
)

// ErrNoSamples reports an assembly that produced zero training examples.
// Downstream train/split stages must not run on an empty dataset, so the
// pipeline treats this as fatal rather than proceeding silently.
var ErrNoSamples = errors.New("no samples assembled")

// Sample pairs one image tile with its label tile. Samples are created at
// one grid position each, consumed once, and never mutated. Row/Col keep
// the grid position so predictions can be reassembled later.
type Sample struct {
	Image *raster.Raster
	Label *raster.Raster
	Row   int
	Col   int
}

// Assemble emits one Sample per grid cell from parallel image and mask
// grids. Output order matches the row-major grid traversal; the
// reconstructor depends on that ordering end to end.
func Assemble(images, masks *tiling.Grid) ([]Sample, error) {
	if err := checkShapes(images, masks); err != nil {
		return nil, err
	}
	samples := make([]Sample, 0, len(images.Tiles))
	for idx := range images.Tiles {
		i, j := images.Position(idx)
		samples = append(samples, Sample{
			Image: images.Tiles[idx],
			Label: masks.Tiles[idx],
			Row:   i,
			Col:   j,
		})
	}
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	return samples, nil
}

// AssembleChange is the multi-temporal variant: for each grid cell it
// computes the normalized pre/post difference tile and pairs it with the
// mask tile. The difference becomes the effective image tile downstream.
func AssembleChange(pre, post, masks *tiling.Grid) ([]Sample, error) {
	if err := checkShapes(pre, post); err != nil {
		return nil, fmt.Errorf("pre/post grids: %w", err)
	}
	if err := checkShapes(post, masks); err != nil {
		return nil, fmt.Errorf("post/mask grids: %w", err)
	}
	samples := make([]Sample, 0, len(post.Tiles))
	for idx := range post.Tiles {
		diff, err := DifferenceTile(pre.Tiles[idx], post.Tiles[idx])
		if err != nil {
			return nil, fmt.Errorf("tile %d: %w", idx, err)
		}
		i, j := post.Position(idx)
		samples = append(samples, Sample{
			Image: diff,
			Label: masks.Tiles[idx],
			Row:   i,
			Col:   j,
		})
	}
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	return samples, nil
}

// DifferenceTile computes the per-channel normalized difference of a
// pre/post tile pair: normalize each tile independently to [0,1],
// subtract, then min-max rescale the difference back to [0,1]. Each
// normalization step leaves zero-spread ranges unchanged instead of
// dividing by zero.
func DifferenceTile(pre, post *raster.Raster) (*raster.Raster, error) {
	if pre.Width != post.Width || pre.Height != post.Height || pre.Bands != post.Bands {
		return nil, fmt.Errorf("tile shape mismatch: %dx%dx%d vs %dx%dx%d",
			pre.Width, pre.Height, pre.Bands, post.Width, post.Height, post.Bands)
	}
	preN := pre.Normalize()
	postN := post.Normalize()
	diff := postN.Clone()
	for i := range diff.Pix {
		diff.Pix[i] -= preN.Pix[i]
	}
	return diff.Normalize(), nil
}

// Images returns the image tiles of a sample slice in their original
// order, the batch shape the model boundary consumes.
func Images(samples []Sample) []*raster.Raster {
	out := make([]*raster.Raster, len(samples))
	for i, s := range samples {
		out[i] = s.Image
	}
	return out
}

// Labels returns the label tiles of a sample slice in their original
// order.
func Labels(samples []Sample) []*raster.Raster {
	out := make([]*raster.Raster, len(samples))
	for i, s := range samples {
		out[i] = s.Label
	}
	return out
}

func checkShapes(a, b *tiling.Grid) error {
	if a.Rows != b.Rows || a.Cols != b.Cols {
		return fmt.Errorf("grid shape mismatch: %dx%d vs %dx%d", a.Rows, a.Cols, b.Rows, b.Cols)
	}
	if a.TileSize != b.TileSize {
		return fmt.Errorf("tile size mismatch: %d vs %d", a.TileSize, b.TileSize)
	}
	return nil
}
