package output

import (
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/sampling"
)

func imageSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestPlotSeries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots", "series.png")
	features := [][]float64{{0.1, 0.2, 0.3}, {0.3, math.NaN(), 0.1}}

	require.NoError(t, PlotSeries(features, []int{0, 1}, "Cotton", path))
	w, h := imageSize(t, path)
	assert.Equal(t, plotWidth, w)
	assert.Equal(t, plotHeight, h)

	assert.Error(t, PlotSeries(features, []int{2}, "Cotton", path))
	assert.Error(t, PlotSeries(features, nil, "Cotton", path))
}

func TestPlotPCACompare(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pca_compare_corn.png")
	require.NoError(t, PlotPCACompare([]float64{1, 1, 1, 1}, []float64{1, 1}, "corn", path))
	assert.FileExists(t, path)
}

func TestPlotBandDifference(t *testing.T) {
	path := filepath.Join(t.TempDir(), "L_NIR_band_diff.png")
	require.NoError(t, PlotBandDifference("L_NIR_band", "2017", "2018", []float64{0.2, 0.3}, []float64{0.25, math.NaN(), 0.4}, path))
	w, _ := imageSize(t, path)
	assert.Equal(t, plotWidth, w)

	assert.Error(t, PlotBandDifference("L_NIR_band", "2017", "2018", nil, nil, path))
}

func TestBoundsIgnoresNaN(t *testing.T) {
	lo, hi, n := bounds([]Curve{{Values: []float64{math.NaN(), 2, 5}}, {Values: []float64{3}}})
	assert.Equal(t, 2.0, lo)
	assert.Equal(t, 5.0, hi)
	assert.Equal(t, 3, n)

	lo, hi, _ = bounds([]Curve{{Values: []float64{4}}})
	assert.Equal(t, 3.5, lo)
	assert.Equal(t, 4.5, hi)
}

func TestSaveDistribution(t *testing.T) {
	dir := t.TempDir()
	points := []geo.LatLon{{Lat: 41.5, Lon: -90.1}, {Lat: 35.25, Lon: -101}}

	js, err := SaveDistribution(points, filepath.Join(dir, "2018_corn_MS_distribution.json"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2018_corn_MS_distribution.geojson"), js)

	read, err := sampling.PointsFromVector(filepath.Join(dir, "2018_corn_MS_distribution.shp"))
	require.NoError(t, err)
	require.Len(t, read, 2)
	assert.InDelta(t, 41.5, read[0].Lat, 1e-6)
	assert.InDelta(t, -101, read[1].Lon, 1e-6)

	raw, err := os.ReadFile(js)
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 2)

	// Saving again replaces the previous shapefile.
	_, err = SaveDistribution(points[:1], filepath.Join(dir, "2018_corn_MS_distribution.shp"))
	require.NoError(t, err)
	read, err = sampling.PointsFromVector(filepath.Join(dir, "2018_corn_MS_distribution.shp"))
	require.NoError(t, err)
	assert.Len(t, read, 1)
}

func TestDistributionImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "distribution.png")
	err := DistributionImage(map[string][]geo.LatLon{
		"Corn":  {{Lat: 41.5, Lon: -90.1}},
		"Sugar": {{Lat: 41.6, Lon: -90.3}},
	}, 400, 300, path)
	require.NoError(t, err)
	w, h := imageSize(t, path)
	assert.Equal(t, 550, w)
	assert.Equal(t, 300, h)

	assert.Error(t, DistributionImage(nil, 400, 300, path))
}
