// Package model is the boundary to the external collapse-segmentation
// model. The network itself is opaque: the pipeline hands it batches of
// normalized tiles and receives per-pixel probability maps back.
package model

import (
	"context"
	"fmt"

	"collapse-mapper/internal/raster"
)

// Predictor is an opaque trainable image-to-mask function.
type Predictor interface {
	// Predict maps a batch of T×T×C tiles to per-pixel collapse
	// probability maps of matching spatial shape.
	Predict(ctx context.Context, tiles []*raster.Raster) ([]*raster.Raster, error)
}

// EpochMetric is one row of a training history.
type EpochMetric struct {
	Epoch       int     `json:"epoch"`
	Loss        float64 `json:"loss"`
	Accuracy    float64 `json:"accuracy"`
	ValLoss     float64 `json:"val_loss"`
	ValAccuracy float64 `json:"val_accuracy"`
}

// DefaultCutoff is the probability cutoff used when none is configured.
// Useful values sit between 0.2 and 0.5 depending on how eager the
// operator wants collapse flagging to be.
const DefaultCutoff = 0.4

// Threshold binarizes a probability map at the given cutoff, yielding a
// {0,1} collapse mask.
func Threshold(prob *raster.Raster, cutoff float64) (*raster.Raster, error) {
	if cutoff < 0 || cutoff > 1 {
		return nil, fmt.Errorf("cutoff %v outside [0,1]", cutoff)
	}
	return prob.Binarize(cutoff)
}

// ThresholdBatch binarizes every probability map of a batch.
func ThresholdBatch(probs []*raster.Raster, cutoff float64) ([]*raster.Raster, error) {
	out := make([]*raster.Raster, len(probs))
	for i, p := range probs {
		m, err := Threshold(p, cutoff)
		if err != nil {
			return nil, fmt.Errorf("tile %d: %w", i, err)
		}
		out[i] = m
	}
	return out, nil
}
