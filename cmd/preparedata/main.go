// Command preparedata builds a tile dataset from a scene: primary raster,
// label mask, optional pre-event raster, optional auxiliary imagery. It
// records the run in the local store and writes spot-check panels.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"collapse-mapper/internal/pipeline"
	"collapse-mapper/internal/raster"
	"collapse-mapper/internal/store"
	"collapse-mapper/internal/version"
	"collapse-mapper/internal/viz"
)

func main() {
	image := flag.String("image", "", "Path to the primary (post-event) raster")
	pre := flag.String("pre", "", "Path to the pre-event raster (enables multi-temporal differencing)")
	mask := flag.String("mask", "", "Path to the label mask raster")
	aux := flag.String("aux", "", "Comma-separated auxiliary image paths to register")
	tile := flag.Int("tile", 32, "Tile size in pixels")
	bands := flag.Int("bands", 0, "Bands to read from the primary raster (0 = all)")
	outDir := flag.String("out", "out", "Output directory for spot-check panels")
	dbPath := flag.String("db", "runs.db", "Run store path")
	panels := flag.Int("panels", 8, "Number of spot-check panels to write (0 = none)")
	notes := flag.String("notes", "", "Free-form notes recorded with the run")
	showVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("preparedata " + version.String())
		return
	}
	if *image == "" || *mask == "" {
		fmt.Println("Usage: preparedata -image <raster> -mask <raster> [-pre <raster>] [-aux a.png,b.png] [-tile 32]")
		os.Exit(1)
	}

	cfg := pipeline.DefaultConfig()
	cfg.TileSize = *tile
	cfg.Bands = *bands
	cfg.MultiTemporal = *pre != ""
	cfg.AlignAux = *aux != ""

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

	var auxImages []*raster.Raster
	if *aux != "" {
		for _, path := range strings.Split(*aux, ",") {
			a, err := raster.LoadImage(strings.TrimSpace(path))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to load auxiliary image %s: %v\n", path, err)
				os.Exit(1)
			}
			auxImages = append(auxImages, a)
		}
	}

	ds, err := p.BuildDataset(img, preRaster, labels, auxImages)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Dataset build failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Assembled %d samples (%dx%d grid, tile %d)\n", len(ds.Samples), ds.Rows, ds.Cols, *tile)
	for i, res := range ds.Aux {
		mode := "registered"
		if res.Fallback {
			mode = "resize fallback"
		}
		fmt.Printf("Auxiliary %d: %s (matches=%d inliers=%d)\n", i, mode, res.Matches, res.Inliers)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output dir: %v\n", err)
		os.Exit(1)
	}

	run := store.NewRun(*tile, img.Bands, len(ds.Samples), cfg.MultiTemporal, *notes)
	s, err := store.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open run store: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()
	if err := s.SaveRun(context.Background(), run); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to record run: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Recorded run %s\n", run.ID)

	for i := 0; i < *panels && i < len(ds.Samples); i++ {
		sm := ds.Samples[i]
		out := filepath.Join(*outDir, fmt.Sprintf("panel_%s_%03d.png", run.ID[:8], i))
		if err := viz.WriteSideBySide(out, sm.Image, sm.Label); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write panel %s: %v\n", out, err)
			os.Exit(1)
		}
	}

	for i, res := range ds.Aux {
		out := filepath.Join(*outDir, fmt.Sprintf("aux_%s_%d.png", run.ID[:8], i))
		if err := raster.WritePNG(out, res.Aligned); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write aligned auxiliary %s: %v\n", out, err)
			os.Exit(1)
		}
	}
}
