package preprocess

import (
	"math"
	"sort"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/series"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/utils"
)

// NormalizeRange maps a band's physical range onto [0, 1]: High maps to 1
// and Low to 0.
type NormalizeRange struct {
	High, Low float64
}

var DefaultNormalize = map[string]NormalizeRange{
	series.ModisLST: {High: 320, Low: 260},
	series.Precip:   {High: 30, Low: 0},
}

// Truncate keeps observations dated within [start, end].
func Truncate(s series.Series, start, end string) series.Series {
	out := series.Series{}
	for _, o := range s {
		if o.Date >= start && o.Date <= end {
			out = append(out, o)
		}
	}
	return out
}

// RemoveDuplicates averages observations sharing a date and returns the
// series sorted by date.
func RemoveDuplicates(s series.Series) series.Series {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, o := range s {
		sums[o.Date] += o.Value
		counts[o.Date]++
	}
	out := make(series.Series, 0, len(sums))
	for date, sum := range sums {
		out = append(out, series.Observation{Date: date, Value: sum / float64(counts[date])})
	}
	out.Sort()
	return out
}

func Normalize(s series.Series, r NormalizeRange) series.Series {
	out := make(series.Series, len(s))
	for i, o := range s {
		v := (o.Value - r.Low) / (r.High - r.Low)
		out[i] = series.Observation{Date: o.Date, Value: math.Min(math.Max(v, 0), 1)}
	}
	return out
}

// FillDays returns one observation per day of [start, end], NaN where s
// has no value. s must be free of duplicates.
func FillDays(s series.Series, start, end string) (series.Series, error) {
	days, err := utils.DateRange(start, end)
	if err != nil {
		return nil, err
	}
	have := make(map[string]float64, len(s))
	for _, o := range s {
		have[o.Date] = o.Value
	}
	out := make(series.Series, 0, len(days))
	for _, d := range days {
		v, ok := have[d]
		if !ok {
			v = math.NaN()
		}
		out = append(out, series.Observation{Date: d, Value: v})
		delete(have, d)
	}
	for d, v := range have {
		out = append(out, series.Observation{Date: d, Value: v})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// Interpolate fills NaN gaps linearly by index. Leading and trailing gaps
// take the nearest valid value. An all-NaN input is returned unchanged.
func Interpolate(values []float64) []float64 {
	out := append([]float64(nil), values...)
	prev := -1
	for i, v := range out {
		if math.IsNaN(v) {
			continue
		}
		switch {
		case prev == -1:
			for j := 0; j < i; j++ {
				out[j] = v
			}
		case i-prev > 1:
			step := (v - out[prev]) / float64(i-prev)
			for j := prev + 1; j < i; j++ {
				out[j] = out[prev] + step*float64(j-prev)
			}
		}
		prev = i
	}
	if prev >= 0 {
		for j := prev + 1; j < len(out); j++ {
			out[j] = out[prev]
		}
	}
	return out
}

// interpAt evaluates the piecewise linear function through (xs, ys) at x,
// clamping outside the sample range. xs must be increasing.
func interpAt(xs, ys []float64, x float64) float64 {
	if x <= xs[0] {
		return ys[0]
	}
	last := len(xs) - 1
	if x >= xs[last] {
		return ys[last]
	}
	i := sort.SearchFloat64s(xs, x)
	if xs[i] == x {
		return ys[i]
	}
	t := (x - xs[i-1]) / (xs[i] - xs[i-1])
	return ys[i-1] + t*(ys[i]-ys[i-1])
}
