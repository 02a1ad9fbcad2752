package pipeline

import (
	"fmt"

	"collapse-mapper/internal/alignment"
	"collapse-mapper/internal/model"
)

// Config parameterizes one pipeline instance. A single configuration
// covers all dataset variants: band count, whether multi-temporal
// differencing runs, and whether auxiliary imagery gets registered.
type Config struct {
	TileSize      int     // tile edge in pixels
	Bands         int     // bands read from the primary raster; <=0 reads all
	MultiTemporal bool    // compute pre/post difference tiles
	AlignAux      bool    // register auxiliary imagery onto the primary grid
	Cutoff        float64 // probability cutoff for binarizing predictions

	Alignment alignment.Options
}

// DefaultConfig returns the settings observed across the collapse
// experiments: 32px tiles and a 0.4 cutoff.
func DefaultConfig() Config {
	return Config{
		TileSize:  32,
		Bands:     0,
		Cutoff:    model.DefaultCutoff,
		Alignment: alignment.DefaultOptions(),
	}
}

// Validate rejects configurations no pipeline stage could honor.
func (c Config) Validate() error {
	if c.TileSize <= 0 {
		return fmt.Errorf("tile size must be positive, got %d", c.TileSize)
	}
	if c.Cutoff < 0 || c.Cutoff > 1 {
		return fmt.Errorf("cutoff %v outside [0,1]", c.Cutoff)
	}
	return nil
}
