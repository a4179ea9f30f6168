package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/airbusgeo/godal"
	"github.com/stretchr/testify/require"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/raster"
)

const gridW, gridH = 10, 10

// A 10x10 WGS84 grid of 0.01 degree pixels with its corner at (42N, 91W).
var gridTransform = geo.GeoTransform{-91, 0.01, 0, 42, 0, -0.01}

// Pixel centers of the test grid.
var (
	pointA = geo.LatLon{Lat: 41.955, Lon: -90.955} // col 4, row 4
	pointB = geo.LatLon{Lat: 41.975, Lon: -90.935} // col 6, row 2
	pointC = geo.LatLon{Lat: 50, Lon: -90.955}     // outside
)

func wgs84Info(t *testing.T) raster.Info {
	t.Helper()
	sr, err := godal.NewSpatialRefFromEPSG(4326)
	require.NoError(t, err)
	defer sr.Close()
	wkt, err := sr.WKT()
	require.NoError(t, err)
	return raster.Info{Width: gridW, Height: gridH, GeoTransform: gridTransform, Projection: wkt}
}

// writeGrid writes a constant raster with a few pixels overridden.
func writeGrid(t *testing.T, path string, fill float32, set map[[2]int]float32) {
	t.Helper()
	data := make([]float32, gridW*gridH)
	for i := range data {
		data[i] = fill
	}
	for cr, v := range set {
		data[cr[1]*gridW+cr[0]] = v
	}
	require.NoError(t, raster.WriteGTiff(path, wgs84Info(t), data, godal.Float32))
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}
