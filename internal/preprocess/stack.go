package preprocess

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/airbusgeo/godal"
	"github.com/sirupsen/logrus"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/raster"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/utils"
)

// StackItem is one dated raster of a stack.
type StackItem struct {
	Date  string `json:"date"`
	Path  string `json:"path"`
	Label string `json:"label,omitempty"`
}

// StackInterpolator fills the invalid pixels of a dated raster stack with
// a per-pixel daily interpolation smoothed by Savitzky-Golay.
type StackInterpolator struct {
	Items []StackItem
	// RefSource picks the reference raster: the first item whose path
	// contains it. Its size, geotransform and projection are used for all
	// outputs.
	RefSource string
	Invalid   float64
	Window    int
	Poly      int
	BandName  string
	// Labels selects the items to fill. Items carrying another label are
	// listed untouched under sb_<band>_sg. Unlabelled items are always
	// filled.
	Labels []string
	OutDir string
}

func NewStackInterpolator(items []StackItem, refSource, outDir string) *StackInterpolator {
	return &StackInterpolator{
		Items:     items,
		RefSource: refSource,
		Invalid:   -9999,
		Window:    13,
		Poly:      1,
		BandName:  "ndvi",
		Labels:    []string{"SB", "2B", "NB"},
		OutDir:    outDir,
	}
}

// StackIndex maps <source>_<band>_sg to the written rasters.
type StackIndex map[string][]StackItem

// selected splits the items into those to fill and the passed through rest,
// both sorted by date.
func (s *StackInterpolator) selected() ([]StackItem, []StackItem) {
	var fill, skip []StackItem
	for _, it := range s.Items {
		if it.Label == "" || len(s.Labels) == 0 || slices.Contains(s.Labels, it.Label) {
			fill = append(fill, it)
		} else {
			skip = append(skip, it)
		}
	}
	byDate := func(a, b StackItem) int { return strings.Compare(a.Date, b.Date) }
	slices.SortStableFunc(fill, byDate)
	slices.SortStableFunc(skip, byDate)
	return fill, skip
}

func (s *StackInterpolator) reference(items []StackItem) (raster.Info, error) {
	for _, it := range items {
		if strings.Contains(it.Path, s.RefSource) {
			ds, err := raster.Open(it.Path)
			if err != nil {
				return raster.Info{}, err
			}
			defer ds.Close()
			return raster.ReadInfo(ds)
		}
	}
	return raster.Info{}, fmt.Errorf("no %s reference raster in stack", s.RefSource)
}

func (s *StackInterpolator) read(path string, ref raster.Info) ([]float64, error) {
	ds, err := raster.Open(path)
	if err != nil {
		return nil, err
	}
	defer ds.Close()
	st := ds.Structure()
	if st.SizeX != ref.Width || st.SizeY != ref.Height {
		resized, err := raster.ResampleNearest(ds, ref.Width, ref.Height)
		if err != nil {
			return nil, err
		}
		defer resized.Close()
		ds = resized
	}
	data, err := raster.ReadAll(ds.Bands()[0], ref.Width, ref.Height)
	if err != nil {
		return nil, err
	}
	for i, v := range data {
		if v == s.Invalid {
			data[i] = math.NaN()
		}
	}
	return data, nil
}

func dayOffsets(dates []string) ([]float64, int, error) {
	first, err := time.Parse(utils.DateLayout, dates[0])
	if err != nil {
		return nil, 0, err
	}
	offsets := make([]float64, len(dates))
	for i, d := range dates {
		t, err := time.Parse(utils.DateLayout, d)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid date %q: %w", d, err)
		}
		offsets[i] = math.Round(t.Sub(first).Hours() / 24)
	}
	return offsets, int(offsets[len(offsets)-1]) + 1, nil
}

// smoothPixel interpolates the valid samples of one pixel onto every day
// and smooths them. A pixel with no valid sample stays NaN.
func (s *StackInterpolator) smoothPixel(offsets, values []float64, days int) ([]float64, error) {
	xs := make([]float64, 0, len(values))
	ys := make([]float64, 0, len(values))
	for i, v := range values {
		if !math.IsNaN(v) {
			xs = append(xs, offsets[i])
			ys = append(ys, v)
		}
	}
	daily := make([]float64, days)
	if len(xs) == 0 {
		for i := range daily {
			daily[i] = math.NaN()
		}
		return daily, nil
	}
	for d := range daily {
		daily[d] = interpAt(xs, ys, float64(d))
	}
	return SavGol(daily, s.Window, s.Poly, ModeNearest)
}

// Run writes one filled Float32 GTiff per input into OutDir and an index
// stack_sg.json describing them.
func (s *StackInterpolator) Run() (StackIndex, error) {
	if len(s.Items) == 0 {
		return nil, fmt.Errorf("empty raster stack")
	}
	if err := checkWindow(s.Window, s.Poly); err != nil {
		return nil, err
	}
	items, skipped := s.selected()
	if len(items) == 0 {
		return nil, fmt.Errorf("no raster labelled %v in stack", s.Labels)
	}

	ref, err := s.reference(items)
	if err != nil {
		return nil, err
	}
	stack := make([][]float64, len(items))
	dates := make([]string, len(items))
	for i, it := range items {
		if stack[i], err = s.read(it.Path, ref); err != nil {
			return nil, err
		}
		dates[i] = it.Date
		logrus.Debugf("read %s", it.Path)
	}
	offsets, days, err := dayOffsets(dates)
	if err != nil {
		return nil, err
	}

	pixels := ref.Width * ref.Height
	column := make([]float64, len(items))
	for px := 0; px < pixels; px++ {
		missing := false
		for t := range items {
			column[t] = stack[t][px]
			missing = missing || math.IsNaN(column[t])
		}
		if !missing {
			continue
		}
		smoothed, err := s.smoothPixel(offsets, column, days)
		if err != nil {
			return nil, err
		}
		for t := range items {
			if math.IsNaN(stack[t][px]) {
				stack[t][px] = smoothed[int(offsets[t])]
			}
		}
	}

	index := StackIndex{}
	for t, it := range items {
		out := filepath.Join(s.OutDir, filepath.Base(it.Path))
		data := make([]float32, pixels)
		for i, v := range stack[t] {
			data[i] = float32(v)
		}
		if err := raster.WriteGTiff(out, ref, data, godal.Float32); err != nil {
			return nil, err
		}
		source, _, _ := strings.Cut(filepath.Base(it.Path), "_")
		key := source + "_" + s.BandName + "_sg"
		index[key] = append(index[key], StackItem{Date: it.Date, Path: out, Label: it.Label})
		logrus.Infof("%d/%d written %s", t+1, len(items), out)
	}
	if len(skipped) > 0 {
		index["sb_"+s.BandName+"_sg"] = skipped
	}

	raw, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(s.OutDir, "stack_sg.json"), raw, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write stack index: %w", err)
	}
	return index, nil
}
