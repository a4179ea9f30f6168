package rastertools

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/airbusgeo/godal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/raster"
)

const size = 12

func gridInfo(t *testing.T) raster.Info {
	t.Helper()
	sr, err := godal.NewSpatialRefFromEPSG(32615)
	require.NoError(t, err)
	defer sr.Close()
	wkt, err := sr.WKT()
	require.NoError(t, err)
	return raster.Info{Width: size, Height: size, GeoTransform: geo.GeoTransform{500000, 30, 0, 4500000, 0, -30}, Projection: wkt}
}

func writeBytes(t *testing.T, path string, data []uint8) {
	t.Helper()
	require.NoError(t, raster.WriteGTiff(path, gridInfo(t), data, godal.Byte))
}

func readBytes(t *testing.T, path string) []uint8 {
	t.Helper()
	ds, err := raster.Open(path)
	require.NoError(t, err)
	defer ds.Close()
	data := make([]uint8, size*size)
	require.NoError(t, ds.Bands()[0].Read(0, 0, data, size, size))
	return data
}

// block sets a w x h rectangle with its corner at (col, row) to v.
func block(data []uint8, col, row, w, h int, v uint8) {
	for y := row; y < row+h; y++ {
		for x := col; x < col+w; x++ {
			data[y*size+x] = v
		}
	}
}

func sum(data []uint8) int {
	s := 0
	for _, v := range data {
		s += int(v)
	}
	return s
}

func TestCountPixels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classes.tif")
	data := make([]uint8, size*size)
	block(data, 0, 0, 2, 2, 1)
	block(data, 5, 5, 1, 3, 255)
	writeBytes(t, path, data)

	var progress bytes.Buffer
	counts, err := CountPixels(path, &progress)
	require.NoError(t, err)
	assert.Equal(t, []PixelCount{{"0", 137}, {"1", 4}, {"255", 3}}, counts)
	assert.NotZero(t, progress.Len())

	csvPath := filepath.Join(t.TempDir(), "counts", "classes.csv")
	require.NoError(t, WriteCounts(csvPath, counts))
	raw, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "value,count\n0,137\n1,4\n255,3\n", string(raw))
}

func TestMosaic(t *testing.T) {
	dir := t.TempDir()
	a := make([]uint8, size*size)
	b := make([]uint8, size*size)
	a[0], a[1] = 1, 1
	b[1], b[2] = 1, 1
	writeBytes(t, filepath.Join(dir, "corn.tif"), a)
	writeBytes(t, filepath.Join(dir, "soy.tif"), b)

	out := filepath.Join(dir, "mosaic.tif")
	require.NoError(t, Mosaic(filepath.Join(dir, "corn.tif"), filepath.Join(dir, "soy.tif"), out))
	got := readBytes(t, out)
	assert.Equal(t, []uint8{1, 2, 2, 0}, got[:4])
}

func TestMosaicTreatsNodataAsBackground(t *testing.T) {
	dir := t.TempDir()
	a := make([]float32, size*size)
	b := make([]float32, size*size)
	a[0], a[1], a[2], a[3] = float32(math.NaN()), -9999, 1, 300
	b[0], b[1], b[2], b[3] = 1, float32(math.NaN()), -1, -9999
	require.NoError(t, raster.WriteGTiff(filepath.Join(dir, "a.tif"), gridInfo(t), a, godal.Float32))
	require.NoError(t, raster.WriteGTiff(filepath.Join(dir, "b.tif"), gridInfo(t), b, godal.Float32))

	out := filepath.Join(dir, "mosaic.tif")
	require.NoError(t, Mosaic(filepath.Join(dir, "a.tif"), filepath.Join(dir, "b.tif"), out))
	assert.Equal(t, []uint8{2, 0, 1, 2}, readBytes(t, out)[:4])
}

func TestFilterContoursDropsSmallShapes(t *testing.T) {
	mask := make([]uint8, size*size)
	block(mask, 1, 1, 5, 5, 1)
	block(mask, 9, 9, 1, 1, 1)

	out, err := FilterContours(mask, size, size, 7)
	require.NoError(t, err)
	assert.Equal(t, 25, sum(out))
	assert.Equal(t, uint8(1), out[3*size+3])
	assert.Equal(t, uint8(0), out[9*size+9])
}

func TestContourFilterRaster(t *testing.T) {
	dir := t.TempDir()
	data := make([]uint8, size*size)
	block(data, 0, 0, 4, 4, 255)
	block(data, 8, 8, 2, 1, 255)
	block(data, 6, 0, 4, 4, 3)
	in := filepath.Join(dir, "125-41-20180101-20181231.tif")
	writeBytes(t, in, data)

	out := filepath.Join(dir, "125-41-20180101-20181231_filter7.tif")
	require.NoError(t, ContourFilterRaster(in, 255, 7, out))
	got := readBytes(t, out)
	assert.Equal(t, 16, sum(got))
	assert.Equal(t, uint8(0), got[8*size+8])
}

func TestClipPath(t *testing.T) {
	assert.Equal(t, "/maps/chops/26-35-2018_clip.tif", ClipPath("/maps/26-35-2018.tif"))
}

func TestClipBordersReportsFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	_, err := ClipBorders(filepath.Join(dir, "wrs.shp"), []string{
		filepath.Join(dir, "noname.tif"),
		filepath.Join(dir, "xx-yy-2018.tif"),
	}, 2)
	assert.Error(t, err)
}
