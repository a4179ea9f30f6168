package raster

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/airbusgeo/godal"
)

// WriteGTiff writes a single-band GeoTIFF on the grid described by info.
// data must be a slice whose element type matches dtype or be convertible
// by GDAL.
func WriteGTiff(path string, info Info, data interface{}, dtype godal.DataType) error {
	Register()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	ds, err := godal.Create(godal.GTiff, path, 1, dtype, info.Width, info.Height)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := georeference(ds, info); err != nil {
		ds.Close()
		return err
	}
	if err := ds.Bands()[0].Write(0, 0, data, info.Width, info.Height); err != nil {
		ds.Close()
		return fmt.Errorf("failed to write band: %w", err)
	}
	if err := ds.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// NewMem creates an in-memory dataset on the grid described by info.
func NewMem(info Info, nBands int, dtype godal.DataType) (*godal.Dataset, error) {
	Register()
	ds, err := godal.Create(godal.Mem, "", nBands, dtype, info.Width, info.Height)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory dataset: %w", err)
	}
	if err := georeference(ds, info); err != nil {
		ds.Close()
		return nil, err
	}
	return ds, nil
}

func georeference(ds *godal.Dataset, info Info) error {
	if err := ds.SetGeoTransform(info.GeoTransform); err != nil {
		return fmt.Errorf("failed to set GeoTransform: %w", err)
	}
	if info.Projection != "" {
		if err := ds.SetProjection(info.Projection); err != nil {
			return fmt.Errorf("failed to set projection: %w", err)
		}
	}
	return nil
}

// ResampleNearest returns an in-memory copy of ds resized to width x height
// with nearest neighbour sampling.
func ResampleNearest(ds *godal.Dataset, width, height int) (*godal.Dataset, error) {
	out, err := ds.Translate("", []string{
		"-of", "MEM",
		"-outsize", strconv.Itoa(width), strconv.Itoa(height),
		"-r", "near",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resample to %dx%d: %w", width, height, err)
	}
	return out, nil
}
