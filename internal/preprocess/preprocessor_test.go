package preprocess

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/series"
)

var shortSeason = Item{Year: 2018, Crop: "Cotton", Start: "0401", End: "0410", Window: 5, Poly: 2}

func landsatEntry(point string, value float64, bands []string) series.Entry {
	rec := series.Record{}
	for _, b := range bands {
		rec[b] = series.Series{
			obs("20180330", 9),
			obs("20180402", value),
			obs("20180402", value),
			obs("20180408", value),
		}
	}
	return series.Entry{Point: point, Bands: rec}
}

func writeExtracted(t *testing.T, dir, name string, entries []series.Entry) {
	t.Helper()
	require.NoError(t, series.SaveEntries(filepath.Join(dir, name), entries))
}

func TestProcessSeriesFillsAndSmooths(t *testing.T) {
	p := New(shortSeason, 0, nil, "", "")
	s := series.Series{obs("20180330", 9), obs("20180402", 0.2), obs("20180408", 0.2)}

	out, err := p.ProcessSeries(series.LandsatBand(series.Red), s)
	require.NoError(t, err)
	require.Len(t, out, 10)
	assert.Equal(t, "20180401", out[0].Date)
	assert.Equal(t, "20180410", out[9].Date)
	for _, o := range out {
		assert.InDelta(t, 0.2, o.Value, 1e-9)
	}
}

func TestProcessSeriesLeavesPrecipSparse(t *testing.T) {
	p := New(shortSeason, 0, nil, "", "")
	out, err := p.ProcessSeries(series.Precip, series.Series{obs("20180402", 15), obs("20180405", 60)})
	require.NoError(t, err)
	assert.Equal(t, series.Series{obs("20180402", 0.5), obs("20180405", 1)}, out)
}

func TestProcessEntryDropsIncompleteEntries(t *testing.T) {
	p := New(shortSeason, 0, nil, "", "")
	partial := landsatEntry("1,1", 0.3, series.LandsatBands()[:5])
	_, ok, err := p.ProcessEntry(partial)
	require.NoError(t, err)
	assert.False(t, ok)

	full := landsatEntry("1,1", 0.3, series.LandsatBands())
	out, ok, err := p.ProcessEntry(full)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, out.Bands, 6)
}

func TestRunWritesNamedOutputAndSkipsExisting(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	bands := series.LandsatBands()
	entries := []series.Entry{}
	for i := 0; i < 5; i++ {
		entries = append(entries, landsatEntry(fmt.Sprintf("%d,0", i), 0.1, bands))
	}
	writeExtracted(t, in, "2018_Cotton_extracted_results_0.json", entries)
	writeExtracted(t, in, "2018_Corn_extracted_results_0.json", entries)

	p := New(shortSeason, 3, nil, in, out)
	results, err := p.Run()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "2018_Cotton_0401_0410_5_2_3_0.json", results[0].Output)
	assert.Equal(t, 3, results[0].Read)
	assert.Equal(t, 3, results[0].Kept)

	saved, err := series.LoadEntries(filepath.Join(out, results[0].Output))
	require.NoError(t, err)
	assert.Len(t, saved, 3)

	again, err := p.Run()
	require.NoError(t, err)
	assert.True(t, again[0].Skipped)
}

func TestRunFailsWithoutFiles(t *testing.T) {
	p := New(shortSeason, 10, nil, t.TempDir(), t.TempDir())
	_, err := p.Run()
	assert.Error(t, err)
}

func TestBatchRunCollectsFailuresAndReports(t *testing.T) {
	defer goleak.VerifyNone(t)

	in, out := t.TempDir(), t.TempDir()
	writeExtracted(t, in, "2018_Cotton_extracted_results_0.json", []series.Entry{landsatEntry("0,0", 0.1, series.LandsatBands())})

	corn := shortSeason
	corn.Crop = "Corn"
	jobs := []*Preprocessor{New(shortSeason, 10, nil, in, out), New(corn, 10, nil, in, out)}

	results, failures := BatchRun(context.Background(), jobs, 2)
	assert.Len(t, results, 1)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Error(), "Corn")

	report := filepath.Join(out, "report", "preprocess.csv")
	require.NoError(t, WriteReport(report, results))
	f, err := os.Open(report)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"item", "file", "output", "read", "kept", "skipped", "error"}, rows[0])
}
