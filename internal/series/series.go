// Package series holds the per-point band time series produced by the
// extractors and consumed by preprocessing and pretraining.
package series

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

const (
	Blue  = "B_band"
	Green = "G_band"
	Red   = "R_band"
	NIR   = "NIR_band"
	SWIR1 = "SWIR1"
	SWIR2 = "SWIR2"

	ModisLST = "MODIS_LST"
	Precip   = "TRMM_GPM"
)

// ReflectanceSuffixes is the band order shared by Landsat and Sentinel.
var ReflectanceSuffixes = []string{Blue, Green, Red, NIR, SWIR1, SWIR2}

func LandsatBand(suffix string) string  { return "L_" + suffix }
func SentinelBand(suffix string) string { return "S_" + suffix }

func LandsatBands() []string {
	bands := make([]string, len(ReflectanceSuffixes))
	for i, s := range ReflectanceSuffixes {
		bands[i] = LandsatBand(s)
	}
	return bands
}

func SentinelBands() []string {
	bands := make([]string, len(ReflectanceSuffixes))
	for i, s := range ReflectanceSuffixes {
		bands[i] = SentinelBand(s)
	}
	return bands
}

// Observation is one dated sample. It is encoded as ["YYYYMMDD", value]
// with NaN written as null.
type Observation struct {
	Date  string
	Value float64
}

func (o Observation) MarshalJSON() ([]byte, error) {
	if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
		return json.Marshal([]any{o.Date, nil})
	}
	return json.Marshal([]any{o.Date, o.Value})
}

func (o *Observation) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("observation must have 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &o.Date); err != nil {
		return fmt.Errorf("invalid observation date: %w", err)
	}
	if bytes.Equal(bytes.TrimSpace(raw[1]), []byte("null")) {
		o.Value = math.NaN()
		return nil
	}
	if err := json.Unmarshal(raw[1], &o.Value); err != nil {
		return fmt.Errorf("invalid observation value: %w", err)
	}
	return nil
}

type Series []Observation

// Sort orders the series by date. Equal dates keep their relative order.
func (s Series) Sort() {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Date < s[j].Date })
}

func (s Series) Values() []float64 {
	values := make([]float64, len(s))
	for i, o := range s {
		values[i] = o.Value
	}
	return values
}

func (s Series) Dates() []string {
	dates := make([]string, len(s))
	for i, o := range s {
		dates[i] = o.Date
	}
	return dates
}

// Record maps a band key to its series.
type Record map[string]Series

// Results maps a point key to the bands sampled there.
type Results map[string]Record

func (r Results) Add(point, band, date string, value float64) {
	rec, ok := r[point]
	if !ok {
		rec = Record{}
		r[point] = rec
	}
	rec[band] = append(rec[band], Observation{Date: date, Value: value})
}

// SortAll sorts every band series by date.
func (r Results) SortAll() {
	for _, rec := range r {
		for _, s := range rec {
			s.Sort()
		}
	}
}

// Merge copies every point of src into dst. A point present in both is
// replaced by the src record.
func Merge(dst, src Results) {
	for k, v := range src {
		dst[k] = v
	}
}

// MergeBands adds the bands of src to the points dst already holds.
// Points only in src are ignored.
func MergeBands(dst, src Results) int {
	merged := 0
	for point, rec := range src {
		base, ok := dst[point]
		if !ok {
			continue
		}
		for band, s := range rec {
			base[band] = s
		}
		merged++
	}
	return merged
}
