package inspect

import (
	"fmt"
	"math"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/series"
)

// BandMean averages one band over the entries, observation by observation.
// Entries without the band are skipped and NaN samples do not count, so a
// position no entry covers stays NaN.
func BandMean(entries []series.Entry, band string) ([]float64, error) {
	var sums []float64
	var counts []int
	for _, e := range entries {
		s, ok := e.Bands[band]
		if !ok {
			continue
		}
		for len(sums) < len(s) {
			sums = append(sums, 0)
			counts = append(counts, 0)
		}
		for i, o := range s {
			if math.IsNaN(o.Value) {
				continue
			}
			sums[i] += o.Value
			counts[i]++
		}
	}
	if sums == nil {
		return nil, fmt.Errorf("no entry has band %s", band)
	}
	for i := range sums {
		if counts[i] == 0 {
			sums[i] = math.NaN()
			continue
		}
		sums[i] /= float64(counts[i])
	}
	return sums, nil
}
