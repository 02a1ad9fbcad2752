package raster

import (
	"fmt"

	"collapse-mapper/internal/log"

	"github.com/lukeroth/gdal"
	"go.uber.org/zap"
)

const logTag = "raster: "

// LoadGeoTIFF reads up to maxBands bands of a geo-referenced raster into
// a Raster, preserving band order, geotransform and projection. Pass
// maxBands <= 0 to read every band the file carries.
func LoadGeoTIFF(path string, maxBands int) (*Raster, error) {
	ds, err := gdal.Open(path, gdal.ReadOnly)
	if err != nil {
		return nil, fmt.Errorf("open raster %s: %w", path, err)
	}
	defer ds.Close()

	width := ds.RasterXSize()
	height := ds.RasterYSize()
	bands := ds.RasterCount()
	if maxBands > 0 && maxBands < bands {
		bands = maxBands
	}
	if bands == 0 {
		return nil, fmt.Errorf("raster %s has no bands", path)
	}
	log.Info(logTag+"read raster",
		zap.String("path", path),
		zap.Int("width", width), zap.Int("height", height), zap.Int("bands", bands))

	out := New(width, height, bands)
	out.Geo = &GeoRef{
		Transform:  ds.GeoTransform(),
		Projection: ds.Projection(),
	}

	plane := make([]float64, width*height)
	for b := 0; b < bands; b++ {
		band := ds.RasterBand(b + 1)
		if err := band.IO(gdal.Read, 0, 0, width, height, plane, width, height, 0, 0); err != nil {
			return nil, fmt.Errorf("read band %d of %s: %w", b+1, path, err)
		}
		for i, v := range plane {
			out.Pix[i*bands+b] = v
		}
	}
	return out, nil
}

// LoadMask reads a single-band label raster and binarizes it to {0,1}.
// Any sample above zero counts as a positive label.
func LoadMask(path string) (*Raster, error) {
	r, err := LoadGeoTIFF(path, 1)
	if err != nil {
		return nil, err
	}
	return r.Binarize(0)
}

// WriteGeoTIFF writes a raster as a Float32 GeoTIFF, carrying over the
// geotransform and projection when present.
func WriteGeoTIFF(path string, r *Raster) error {
	driver, err := gdal.GetDriverByName("GTiff")
	if err != nil {
		return fmt.Errorf("gtiff driver: %w", err)
	}
	ds := driver.Create(path, r.Width, r.Height, r.Bands, gdal.Float32, nil)
	defer ds.Close()

	if r.Geo != nil {
		if err := ds.SetGeoTransform(r.Geo.Transform); err != nil {
			return fmt.Errorf("set geotransform on %s: %w", path, err)
		}
		if r.Geo.Projection != "" {
			if err := ds.SetProjection(r.Geo.Projection); err != nil {
				return fmt.Errorf("set projection on %s: %w", path, err)
			}
		}
	}

	plane := make([]float32, r.Width*r.Height)
	for b := 0; b < r.Bands; b++ {
		for i := 0; i < r.Width*r.Height; i++ {
			plane[i] = float32(r.Pix[i*r.Bands+b])
		}
		band := ds.RasterBand(b + 1)
		if err := band.IO(gdal.Write, 0, 0, r.Width, r.Height, plane, r.Width, r.Height, 0, 0); err != nil {
			return fmt.Errorf("write band %d of %s: %w", b+1, path, err)
		}
	}
	log.Info(logTag+"wrote raster",
		zap.String("path", path),
		zap.Int("width", r.Width), zap.Int("height", r.Height), zap.Int("bands", r.Bands))
	return nil
}
