package raster

import (
	"path/filepath"
	"testing"

	"github.com/airbusgeo/godal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
)

func testInfo(t *testing.T) Info {
	sr, err := godal.NewSpatialRefFromEPSG(32615)
	require.NoError(t, err)
	defer sr.Close()
	wkt, err := sr.WKT()
	require.NoError(t, err)
	return Info{
		Width:        4,
		Height:       3,
		GeoTransform: geo.GeoTransform{500000, 30, 0, 4500000, 0, -30},
		Projection:   wkt,
	}
}

func TestWriteGTiffRoundTrip(t *testing.T) {
	info := testInfo(t)
	path := filepath.Join(t.TempDir(), "nested", "out.tif")
	data := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

	require.NoError(t, WriteGTiff(path, info, data, godal.Float32))

	ds, err := Open(path)
	require.NoError(t, err)
	defer ds.Close()

	got, err := ReadInfo(ds)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Width)
	assert.Equal(t, 3, got.Height)
	assert.Equal(t, 1, got.Bands)
	assert.Equal(t, info.GeoTransform, got.GeoTransform)

	values, err := ReadAll(ds.Bands()[0], got.Width, got.Height)
	require.NoError(t, err)
	assert.Equal(t, 12.0, values[11])
}

func TestResampleNearest(t *testing.T) {
	info := testInfo(t)
	ds, err := NewMem(info, 1, godal.Float32)
	require.NoError(t, err)
	defer ds.Close()
	require.NoError(t, ds.Bands()[0].Write(0, 0, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, 4, 3))

	out, err := ResampleNearest(ds, 8, 6)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, 8, out.Structure().SizeX)
	values, err := ReadAll(out.Bands()[0], 8, 6)
	require.NoError(t, err)
	assert.Equal(t, 1.0, values[0])
	assert.Equal(t, 12.0, values[len(values)-1])
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.tif"))
	assert.Error(t, err)
}

func TestSubdatasetsInIndexOrder(t *testing.T) {
	ds, err := NewMem(testInfo(t), 1, godal.Byte)
	require.NoError(t, err)
	defer ds.Close()

	require.NoError(t, ds.SetMetadata("SUBDATASET_2_NAME", "HDF4_EOS:EOS_GRID:\"f.hdf\":grid:QC_Day", godal.Domain("SUBDATASETS")))
	require.NoError(t, ds.SetMetadata("SUBDATASET_1_NAME", "HDF4_EOS:EOS_GRID:\"f.hdf\":grid:LST_Day_1km", godal.Domain("SUBDATASETS")))

	names := Subdatasets(ds)
	require.Len(t, names, 2)
	assert.Contains(t, names[0], "LST_Day_1km")
	assert.Contains(t, names[1], "QC_Day")
}
