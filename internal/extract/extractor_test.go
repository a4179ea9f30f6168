package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/cache"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/series"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/tiles"
)

func TestParseTaskName(t *testing.T) {
	year, crop, err := ParseTaskName("/data/sample_points/2018_Cotton_Texas_sample_points.json")
	require.NoError(t, err)
	assert.Equal(t, 2018, year)
	assert.Equal(t, "Cotton", crop)

	_, crop, err = ParseTaskName("2017_Corn.json")
	require.NoError(t, err)
	assert.Equal(t, "Corn", crop)

	_, _, err = ParseTaskName("points.json")
	assert.Error(t, err)
}

func writePoints(t *testing.T, dir, name string) string {
	t.Helper()
	g := tiles.NewPointGroups()
	g.Landsat["026-035"] = []geo.LatLon{pointA, pointB}
	g.Sentinel["15TVG"] = []geo.LatLon{pointA}
	g.Modis["h11v04"] = []geo.LatLon{pointA, pointC}
	path := filepath.Join(dir, name)
	require.NoError(t, tiles.SaveGroups(path, g))
	return path
}

func TestExtractorRunEnsemblesOnLandsat(t *testing.T) {
	dir := t.TempDir()
	points := writePoints(t, dir, "2018_Cotton_Texas_sample_points.json")
	out := filepath.Join(dir, "out")
	stale := filepath.Join(out, "2018_Cotton_extracted_results_7.json")
	touch(t, stale)

	landsat := &fakeExtractor{source: SourceLandsat, band: "L_B_band", value: map[string]float64{"026-035": 0.3}}
	modis := &fakeExtractor{source: SourceModis, band: series.ModisLST, value: map[string]float64{"h11v04": 290}}
	e := &Extractor{
		Runner:          Runner{Workers: 2},
		Sources:         []string{SourceLandsat, SourceModis},
		Tiles:           map[string]TileExtractor{SourceLandsat: landsat, SourceModis: modis},
		IntermediateDir: filepath.Join(dir, "intermediate"),
		OutDir:          out,
		ChunkSize:       1,
	}

	summary, err := e.Run(context.Background(), Task{PointsFile: points, Start: "20180401", End: "20181001"})
	require.NoError(t, err)
	assert.Equal(t, 2018, summary.Year)
	assert.Equal(t, 2, summary.Points)
	require.Len(t, summary.Files, 2)
	assert.NoFileExists(t, stale)
	assert.FileExists(t, filepath.Join(dir, "intermediate", "2018_Cotton_Texas_sample_points_modis_intermediate.json"))

	first, err := series.LoadEntries(summary.Files[0])
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, pointA.Key(), first[0].Point)
	assert.Contains(t, first[0].Bands, series.ModisLST)

	second, err := series.LoadEntries(summary.Files[1])
	require.NoError(t, err)
	assert.NotContains(t, second[0].Bands, series.ModisLST)
}

func TestExtractorSkipsSentinelBefore2016(t *testing.T) {
	dir := t.TempDir()
	points := writePoints(t, dir, "2015_Corn_Iowa_sample_points.json")
	sentinel := &fakeExtractor{source: SourceSentinel, band: "S_B_band"}
	e := &Extractor{
		Runner:          Runner{Workers: 1},
		Sources:         []string{SourceSentinel},
		Tiles:           map[string]TileExtractor{SourceSentinel: sentinel},
		IntermediateDir: dir,
		OutDir:          dir,
		ChunkSize:       10,
	}
	summary, err := e.Run(context.Background(), Task{PointsFile: points, Start: "20150401", End: "20151001"})
	require.NoError(t, err)
	assert.Equal(t, int32(0), sentinel.calls.Load())
	assert.Zero(t, summary.Points)
}

func TestExtractorUnknownSource(t *testing.T) {
	dir := t.TempDir()
	points := writePoints(t, dir, "2018_Corn_Iowa_sample_points.json")
	e := &Extractor{Sources: []string{SourceModis}, IntermediateDir: dir, OutDir: dir}
	_, err := e.Run(context.Background(), Task{PointsFile: points, Start: "20180401", End: "20181001"})
	assert.Error(t, err)
}

func TestCachedExtractorServesRepeatRuns(t *testing.T) {
	inner := &fakeExtractor{source: SourceLandsat, band: "L_B_band", value: map[string]float64{"026-035": 0.4}}
	ex := Cached(inner, cache.NewFileCacheAt[series.Results](t.TempDir()))

	for i := 0; i < 2; i++ {
		res, err := ex.ExtractTile(context.Background(), "026-035", []geo.LatLon{pointA}, "20180401", "20181001")
		require.NoError(t, err)
		assert.Equal(t, 0.4, res[pointA.Key()]["L_B_band"][0].Value)
	}
	assert.Equal(t, int32(1), inner.calls.Load())

	_, err := ex.ExtractTile(context.Background(), "026-035", []geo.LatLon{pointB}, "20180401", "20181001")
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestSplitResults(t *testing.T) {
	dir := t.TempDir()
	r := series.Results{}
	for i, p := range []geo.LatLon{pointA, pointB, pointC} {
		r.Add(p.Key(), "L_B_band", "20180401", float64(i))
	}
	src := filepath.Join(dir, "2018_OtherCrop_extracted_results.json")
	require.NoError(t, series.SaveResults(src, r))

	files, err := SplitResults(src, 2)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(dir, "2018_OtherCrop_extracted_results_1.json"), files[1])

	last, err := series.LoadEntries(files[1])
	require.NoError(t, err)
	assert.Len(t, last, 1)
	_, err = os.Stat(src)
	assert.NoError(t, err)
}

func TestSplitResultsKeepsSiblingChunks(t *testing.T) {
	dir := t.TempDir()
	r := series.Results{}
	for i, p := range []geo.LatLon{pointA, pointB, pointC} {
		r.Add(p.Key(), "L_B_band", "20180401", float64(i))
	}
	first := filepath.Join(dir, "2018_Corn_extracted_results_0.json")
	require.NoError(t, series.SaveResults(first, r))
	siblings := []string{
		filepath.Join(dir, "2018_Corn_extracted_results_1.json"),
		filepath.Join(dir, "2018_Corn_extracted_results_2.json"),
	}
	for _, s := range siblings {
		require.NoError(t, series.SaveResults(s, r))
	}

	files, err := SplitResults(first, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "2018_Corn_extracted_results_0_0.json"),
		filepath.Join(dir, "2018_Corn_extracted_results_0_1.json"),
	}, files)
	for _, s := range append(siblings, first) {
		entries, err := series.LoadEntries(s)
		require.NoError(t, err)
		assert.Len(t, entries, 3, s)
	}
}

func TestExtractorAllTilesFailedKeepsResults(t *testing.T) {
	dir := t.TempDir()
	points := writePoints(t, dir, "2018_Cotton_Texas_sample_points.json")
	kept := filepath.Join(dir, "2018_Cotton_extracted_results_0.json")
	touch(t, kept)

	landsat := &fakeExtractor{source: SourceLandsat, band: "L_B_band", fail: map[string]bool{"026-035": true}}
	e := &Extractor{
		Runner:          Runner{Workers: 1},
		Sources:         []string{SourceLandsat},
		Tiles:           map[string]TileExtractor{SourceLandsat: landsat},
		IntermediateDir: dir,
		OutDir:          dir,
		ChunkSize:       10,
	}
	summary, err := e.Run(context.Background(), Task{PointsFile: points, Start: "20180401", End: "20181001"})
	require.ErrorIs(t, err, ErrNoResults)
	assert.Len(t, summary.Failures, 1)
	assert.Empty(t, summary.Files)
	assert.FileExists(t, kept)
}

func TestWriteChunksRemovesOnlyNumberedLeftovers(t *testing.T) {
	dir := t.TempDir()
	leftover := filepath.Join(dir, "2018_Corn_extracted_results_3.json")
	split := filepath.Join(dir, "2018_Corn_extracted_results_0_1.json")
	touch(t, leftover)
	touch(t, split)

	r := series.Results{}
	r.Add(pointA.Key(), "L_B_band", "20180401", 0.2)
	files, err := WriteChunks(dir, 2018, "Corn", r, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "2018_Corn_extracted_results_0.json")}, files)
	assert.NoFileExists(t, leftover)
	assert.FileExists(t, split)
}
