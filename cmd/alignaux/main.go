// Command alignaux registers an auxiliary image onto a reference raster
// and prints the estimated transform, for checking registration quality
// before a full pipeline run.
package main

import (
	"flag"
	"fmt"
	"os"

	"collapse-mapper/internal/alignment"
	"collapse-mapper/internal/raster"
	"collapse-mapper/internal/version"
)

func main() {
	ref := flag.String("ref", "", "Path to the reference raster")
	aux := flag.String("aux", "", "Path to the auxiliary image")
	band := flag.Int("band", -1, "Reference band used for intensity (-1 = luma)")
	ratio := flag.Float64("ratio", 0.7, "Descriptor match ambiguity-rejection ratio")
	out := flag.String("out", "", "Optional output path for the aligned image (png)")
	showVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("alignaux " + version.String())
		return
	}
	if *ref == "" || *aux == "" {
		fmt.Println("Usage: alignaux -ref <raster> -aux <image> [-band 0] [-out aligned.png]")
		os.Exit(1)
	}

	reference, err := raster.LoadGeoTIFF(*ref, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load reference: %v\n", err)
		os.Exit(1)
	}
	auxiliary, err := raster.LoadImage(*aux)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load auxiliary image: %v\n", err)
		os.Exit(1)
	}

	opts := alignment.DefaultOptions()
	opts.Band = *band
	opts.Ratio = *ratio

	res, err := alignment.Align(reference, auxiliary, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Alignment failed: %v\n", err)
		os.Exit(1)
	}

	if res.Fallback {
		fmt.Println("Registration degraded to resize fallback")
	} else {
		xf := res.Transform
		fmt.Printf("Matches: %d, inliers: %d\n", res.Matches, res.Inliers)
		fmt.Printf("Rotation: %.4f°\n", xf.Rotation())
		fmt.Printf("Scale: %.6f\n", xf.Scale())
		fmt.Printf("Translation: (%.1f, %.1f)\n", xf.TX, xf.TY)
	}

	if *out != "" {
		if err := raster.WritePNG(*out, res.Aligned); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write aligned image: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *out)
	}
}
