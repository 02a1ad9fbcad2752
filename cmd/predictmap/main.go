// Command predictmap runs the collapse model over a scene and writes the
// reconstructed probability and mask rasters.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"collapse-mapper/internal/model"
	"collapse-mapper/internal/pipeline"
	"collapse-mapper/internal/raster"
	"collapse-mapper/internal/version"
)

func main() {
	image := flag.String("image", "", "Path to the scene raster")
	modelURL := flag.String("model", "http://localhost:8500", "Model server base URL")
	tile := flag.Int("tile", 32, "Tile size in pixels")
	bands := flag.Int("bands", 0, "Bands to read (0 = all)")
	cutoff := flag.Float64("cutoff", model.DefaultCutoff, "Probability cutoff for the collapse mask")
	out := flag.String("out", "prediction", "Output path prefix")
	showVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("predictmap " + version.String())
		return
	}
	if *image == "" {
		fmt.Println("Usage: predictmap -image <raster> -model <url> [-cutoff 0.4] [-out prefix]")
		os.Exit(1)
	}

	cfg := pipeline.DefaultConfig()
	cfg.TileSize = *tile
	cfg.Bands = *bands
	cfg.Cutoff = *cutoff

	p, err := pipeline.New(cfg, model.NewHTTPPredictor(*modelURL))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	img, err := raster.LoadGeoTIFF(*image, cfg.Bands)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load raster: %v\n", err)
		os.Exit(1)
	}

	pred, err := p.PredictScene(context.Background(), img)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Prediction failed: %v\n", err)
		os.Exit(1)
	}

	if err := raster.WriteGeoTIFF(*out+"_prob.tif", pred.Probability); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write probability raster: %v\n", err)
		os.Exit(1)
	}
	if err := raster.WriteGeoTIFF(*out+"_mask.tif", pred.Mask); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write mask raster: %v\n", err)
		os.Exit(1)
	}
	if err := raster.WritePNG(*out+"_mask.png", pred.Mask); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write mask preview: %v\n", err)
		os.Exit(1)
	}

	collapsed := 0
	for _, v := range pred.Mask.Pix {
		if v > 0 {
			collapsed++
		}
	}
	total := len(pred.Mask.Pix)
	fmt.Printf("Wrote %s_prob.tif, %s_mask.tif, %s_mask.png\n", *out, *out, *out)
	fmt.Printf("Collapsed pixels: %d / %d (%.2f%%)\n", collapsed, total, 100*float64(collapsed)/float64(total))
}
