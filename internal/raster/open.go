// Package raster wraps the godal calls the extractors share: opening
// scenes quietly, sampling bands at pixel positions and writing results.
package raster

import (
	"fmt"
	"sync"

	"github.com/airbusgeo/godal"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
)

var registerOnce sync.Once

// Register loads every GDAL driver once per process.
func Register() {
	registerOnce.Do(godal.RegisterAll)
}

// quiet drops GDAL warnings and turns everything else into an error.
func quiet(ec godal.ErrorCategory, code int, msg string) error {
	if ec == godal.CE_Warning {
		return nil
	}
	return fmt.Errorf("gdal error %d: %s", code, msg)
}

func Open(path string) (*godal.Dataset, error) {
	Register()
	ds, err := godal.Open(path, godal.ErrLogger(quiet))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return ds, nil
}

// Info describes the grid of a single dataset.
type Info struct {
	Width        int
	Height       int
	Bands        int
	GeoTransform geo.GeoTransform
	Projection   string
}

func ReadInfo(ds *godal.Dataset) (Info, error) {
	st := ds.Structure()
	gt, err := ds.GeoTransform()
	if err != nil {
		return Info{}, fmt.Errorf("failed to get GeoTransform: %w", err)
	}
	return Info{
		Width:        st.SizeX,
		Height:       st.SizeY,
		Bands:        st.NBands,
		GeoTransform: geo.GeoTransform(gt),
		Projection:   ds.Projection(),
	}, nil
}

// Subdatasets lists the SUBDATASET_n_NAME entries of a container file such
// as HDF4, in index order.
func Subdatasets(ds *godal.Dataset) []string {
	md := ds.Metadatas(godal.Domain("SUBDATASETS"))
	names := []string{}
	for i := 1; ; i++ {
		name, ok := md[fmt.Sprintf("SUBDATASET_%d_NAME", i)]
		if !ok {
			break
		}
		names = append(names, name)
	}
	return names
}
