// Command trainrun assembles a tile dataset and submits it to the model
// server's train endpoint, persisting the returned training history.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"collapse-mapper/internal/model"
	"collapse-mapper/internal/pipeline"
	"collapse-mapper/internal/raster"
	"collapse-mapper/internal/store"
	"collapse-mapper/internal/version"
)

func main() {
	image := flag.String("image", "", "Path to the primary (post-event) raster")
	pre := flag.String("pre", "", "Path to the pre-event raster (enables multi-temporal differencing)")
	mask := flag.String("mask", "", "Path to the label mask raster")
	modelURL := flag.String("model", "http://localhost:8500", "Model server base URL")
	epochs := flag.Int("epochs", 20, "Training epochs")
	tile := flag.Int("tile", 32, "Tile size in pixels")
	bands := flag.Int("bands", 0, "Bands to read from the primary raster (0 = all)")
	dbPath := flag.String("db", "runs.db", "Run store path")
	notes := flag.String("notes", "", "Free-form notes recorded with the run")
	showVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("trainrun " + version.String())
		return
	}
	if *image == "" || *mask == "" {
		fmt.Println("Usage: trainrun -image <raster> -mask <raster> -model <url> [-pre <raster>] [-epochs 20]")
		os.Exit(1)
	}

	cfg := pipeline.DefaultConfig()
	cfg.TileSize = *tile
	cfg.Bands = *bands
	cfg.MultiTemporal = *pre != ""

	p, err := pipeline.New(cfg, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	img, err := raster.LoadGeoTIFF(*image, cfg.Bands)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load primary raster: %v\n", err)
		os.Exit(1)
	}
	labels, err := raster.LoadMask(*mask)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load mask: %v\n", err)
		os.Exit(1)
	}
	var preRaster *raster.Raster
	if *pre != "" {
		if preRaster, err = raster.LoadGeoTIFF(*pre, cfg.Bands); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load pre-event raster: %v\n", err)
			os.Exit(1)
		}
	}

	ds, err := p.BuildDataset(img, preRaster, labels, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Dataset build failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Assembled %d samples, training for %d epochs\n", len(ds.Samples), *epochs)

	ctx := context.Background()
	predictor := model.NewHTTPPredictor(*modelURL)
	history, err := predictor.Train(ctx, ds.Samples, *epochs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Training failed: %v\n", err)
		os.Exit(1)
	}

	s, err := store.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open run store: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	run := store.NewRun(*tile, img.Bands, len(ds.Samples), cfg.MultiTemporal, *notes)
	if err := s.SaveRun(ctx, run); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to record run: %v\n", err)
		os.Exit(1)
	}
	if err := s.SaveMetrics(ctx, run.ID, history); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to record metrics: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Run %s recorded with %d epochs\n", run.ID, len(history))
	for _, m := range history {
		fmt.Printf("  epoch %2d  loss=%.4f acc=%.4f val_loss=%.4f val_acc=%.4f\n",
			m.Epoch, m.Loss, m.Accuracy, m.ValLoss, m.ValAccuracy)
	}
}
