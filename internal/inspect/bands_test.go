package inspect

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/series"
)

func TestBandMean(t *testing.T) {
	entries := []series.Entry{
		{Point: "a", Bands: series.Record{"L_NIR_band": {{Date: "20180401", Value: 0.2}, {Date: "20180417", Value: 0.4}}}},
		{Point: "b", Bands: series.Record{"L_NIR_band": {{Date: "20180401", Value: 0.4}, {Date: "20180417", Value: math.NaN()}, {Date: "20180503", Value: math.NaN()}}}},
		{Point: "c", Bands: series.Record{"L_R_band": {{Date: "20180401", Value: 9}}}},
	}
	mean, err := BandMean(entries, "L_NIR_band")
	require.NoError(t, err)
	require.Len(t, mean, 3)
	assert.InDelta(t, 0.3, mean[0], 1e-9)
	assert.InDelta(t, 0.4, mean[1], 1e-9)
	assert.True(t, math.IsNaN(mean[2]))

	_, err = BandMean(entries, "L_SWIR1")
	assert.Error(t, err)
}
