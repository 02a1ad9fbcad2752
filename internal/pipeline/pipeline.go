// Package pipeline wires the preparation stages together: load,
// normalize, pad, tile, assemble, predict, reconstruct. A failure in any
// stage aborts the run for that input, except auxiliary alignment which
// degrades to a resize.
package pipeline

import (
	"context"
	"fmt"

	"collapse-mapper/internal/alignment"
	"collapse-mapper/internal/log"
	"collapse-mapper/internal/model"
	"collapse-mapper/internal/raster"
	"collapse-mapper/internal/sample"
	"collapse-mapper/internal/tiling"

	"go.uber.org/zap"
)

const logTag = "pipeline: "

// Pipeline runs the tiling/alignment/reconstruction stages for one
// configuration.
type Pipeline struct {
	cfg       Config
	predictor model.Predictor
}

// New builds a pipeline. The predictor may be nil when only dataset
// preparation is needed.
func New(cfg Config, predictor model.Predictor) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{cfg: cfg, predictor: predictor}, nil
}

// Dataset is the output of dataset preparation for one scene.
type Dataset struct {
	Samples []sample.Sample
	Rows    int
	Cols    int

	// Original (pre-padding) dimensions, kept so reconstructed outputs
	// can be cropped back to the source footprint.
	OrigWidth  int
	OrigHeight int

	// Aligned auxiliary imagery on the primary pixel grid, one entry per
	// input, in input order.
	Aux []*alignment.Result
}

// BuildDataset prepares training samples from a primary raster and its
// label mask. pre may be nil; when the pipeline is configured
// multi-temporal it must carry the pre-event raster of the same scene.
// Auxiliary images are registered onto the primary grid when configured.
func (p *Pipeline) BuildDataset(img, pre, mask *raster.Raster, aux []*raster.Raster) (*Dataset, error) {
	if img.Width != mask.Width || img.Height != mask.Height {
		return nil, fmt.Errorf("mask %dx%d does not match raster %dx%d",
			mask.Width, mask.Height, img.Width, img.Height)
	}

	imgGrid, err := p.prepareGrid(img)
	if err != nil {
		return nil, fmt.Errorf("primary raster: %w", err)
	}
	maskGrid, err := p.splitOnly(mask)
	if err != nil {
		return nil, fmt.Errorf("label mask: %w", err)
	}

	var samples []sample.Sample
	if p.cfg.MultiTemporal {
		if pre == nil {
			return nil, fmt.Errorf("multi-temporal pipeline needs a pre-event raster")
		}
		preGrid, err := p.prepareGrid(pre)
		if err != nil {
			return nil, fmt.Errorf("pre-event raster: %w", err)
		}
		samples, err = sample.AssembleChange(preGrid, imgGrid, maskGrid)
		if err != nil {
			return nil, err
		}
	} else {
		samples, err = sample.Assemble(imgGrid, maskGrid)
		if err != nil {
			return nil, err
		}
	}

	ds := &Dataset{
		Samples:    samples,
		Rows:       imgGrid.Rows,
		Cols:       imgGrid.Cols,
		OrigWidth:  img.Width,
		OrigHeight: img.Height,
	}

	if p.cfg.AlignAux {
		for i, a := range aux {
			res, err := alignment.Align(img, a, p.cfg.Alignment)
			if err != nil {
				return nil, fmt.Errorf("auxiliary image %d: %w", i, err)
			}
			ds.Aux = append(ds.Aux, res)
		}
	}

	log.Info(logTag+"dataset built",
		zap.Int("samples", len(samples)),
		zap.Int("rows", ds.Rows), zap.Int("cols", ds.Cols),
		zap.Bool("multiTemporal", p.cfg.MultiTemporal),
		zap.Int("aux", len(ds.Aux)))
	return ds, nil
}

// Prediction holds a full-scene model output reassembled from tiles,
// cropped back to the source footprint.
type Prediction struct {
	Probability *raster.Raster // per-pixel collapse probability
	Mask        *raster.Raster // probability thresholded at the cutoff
}

// PredictScene tiles a raster, runs the model over the full tile batch,
// and reconstructs the per-tile probability maps into one raster.
func (p *Pipeline) PredictScene(ctx context.Context, img *raster.Raster) (*Prediction, error) {
	if p.predictor == nil {
		return nil, fmt.Errorf("pipeline has no predictor")
	}

	grid, err := p.prepareGrid(img)
	if err != nil {
		return nil, err
	}
	probs, err := p.predictor.Predict(ctx, grid.Tiles)
	if err != nil {
		return nil, fmt.Errorf("model predict: %w", err)
	}

	prob, err := tiling.Reconstruct(probs, grid.Rows, grid.Cols, grid.TileSize)
	if err != nil {
		return nil, fmt.Errorf("reconstruct probability map: %w", err)
	}
	prob, err = prob.Crop(img.Width, img.Height)
	if err != nil {
		return nil, err
	}
	if img.Geo != nil {
		geo := *img.Geo
		prob.Geo = &geo
	}

	mask, err := model.Threshold(prob, p.cfg.Cutoff)
	if err != nil {
		return nil, err
	}

	log.Info(logTag+"scene predicted",
		zap.Int("tiles", len(probs)),
		zap.Int("width", prob.Width), zap.Int("height", prob.Height),
		zap.Float64("cutoff", p.cfg.Cutoff))
	return &Prediction{Probability: prob, Mask: mask}, nil
}

// prepareGrid normalizes, pads and splits a raster into the tile grid.
func (p *Pipeline) prepareGrid(r *raster.Raster) (*tiling.Grid, error) {
	padded, err := tiling.Pad(r.Normalize(), p.cfg.TileSize)
	if err != nil {
		return nil, err
	}
	return tiling.Split(padded, p.cfg.TileSize)
}

// splitOnly pads and splits without normalization, for {0,1} masks whose
// values must survive untouched.
func (p *Pipeline) splitOnly(r *raster.Raster) (*tiling.Grid, error) {
	padded, err := tiling.Pad(r, p.cfg.TileSize)
	if err != nil {
		return nil, err
	}
	return tiling.Split(padded, p.cfg.TileSize)
}
