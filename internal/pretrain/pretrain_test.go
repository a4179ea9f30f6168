package pretrain

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/series"
)

var season = Item{TrainYears: []int{2016, 2017}, TestYear: 2018, Start: "0401", End: "0930", Window: 17, Poly: 1}

func entry(point string, values ...float64) series.Entry {
	s := series.Series{}
	for i, v := range values {
		s = append(s, series.Observation{Date: []string{"20180403", "20180401", "20180402"}[i], Value: v})
	}
	return series.Entry{Point: point, Bands: series.Record{series.Precip: s}}
}

func TestLabelMaker(t *testing.T) {
	p := New([]string{"Corn", "Soybeans", "Other"}, append(series.LandsatBands(), series.ModisLST, series.Precip), "", "", "")
	train, test := p.LabelMaker(season)
	assert.Equal(t, "0401_0930_17_1_CoSoOt_LTG_REG_TRAIN_1617", train)
	assert.Equal(t, "0401_0930_17_1_CoSoOt_LTG_REG_TEST_18", test)
}

func TestReduceCropType(t *testing.T) {
	p := New([]string{"Corn", "Cotton"}, nil, "", "", "")
	files := []string{
		"2018_Corn_0401_0930_17_1_2000_0.json",
		"2018_Cotton_0401_0930_17_1_2000_1.json",
		"2018_Rice_0401_0930_17_1_2000_0.json",
		"2017_Corn_0401_0930_17_1_2000_0.json",
		"2018_Corn_0401_1001_33_2_2000_0.json",
		"2018_Corn_0401_0930_17_1_2000_0.npz",
	}
	assert.Equal(t, []string{
		"2018_Corn_0401_0930_17_1_2000_0.json",
		"2018_Cotton_0401_0930_17_1_2000_1.json",
	}, p.ReduceCropType(files, 2018, season.Tag()))
}

func TestCombineWritesTrainAndTestArchives(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	save := func(name string, entries ...series.Entry) {
		require.NoError(t, series.SaveEntries(filepath.Join(in, name), entries))
	}
	save("2016_Corn_0401_0930_17_1_10_0.json", entry("a", 3, 1, 2), entry("b", 1, math.NaN(), 1))
	save("2017_Other_0401_0930_17_1_10_0.json", entry("c", 6, 4, 5))
	save("2018_Corn_0401_0930_17_1_10_0.json", entry("d", 9, 7, 8))

	p := New([]string{"Corn", "Other"}, []string{series.Precip}, "REG", in, out)
	res, err := p.Combine(season)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TrainRows)
	assert.Equal(t, 1, res.TestRows)

	train, err := ReadNPZ(res.Train)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2, 3}, {4, 5, 6}}, train.Features)
	assert.Equal(t, []int64{1, 0}, train.Labels)

	test, err := ReadNPZ(res.Test)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{7, 8, 9}}, test.Features)
	assert.Equal(t, filepath.Join(out, "0401_0930_17_1_CoOt_G_REG_TEST_18.npz"), res.Test)
}

func TestCombineWithoutRowsFails(t *testing.T) {
	p := New([]string{"Corn"}, nil, "", t.TempDir(), t.TempDir())
	_, err := p.Combine(season)
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestWriteNPZRejectsRaggedRows(t *testing.T) {
	err := WriteNPZ(filepath.Join(t.TempDir(), "x.npz"), Batch{Features: [][]float64{{1, 2}, {3}}, Labels: []int64{0, 1}})
	assert.Error(t, err)
}

func TestBatchCombineCollectsFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	in := t.TempDir()
	require.NoError(t, series.SaveEntries(filepath.Join(in, "2018_Corn_0401_0930_17_1_10_0.json"), []series.Entry{entry("d", 1, 2, 3)}))
	p := New([]string{"Corn"}, []string{series.Precip}, "", in, t.TempDir())

	ok := Item{TrainYears: []int{2018}, TestYear: 2018, Start: "0401", End: "0930", Window: 17, Poly: 1}
	missing := ok
	missing.TrainYears = []int{2019}

	results, failures := p.BatchCombine(context.Background(), []Item{ok, missing}, 2)
	assert.Len(t, results, 1)
	assert.Len(t, failures, 1)
}
