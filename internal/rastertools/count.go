// Package rastertools holds the one-off raster utilities used around a
// classification run: pixel counts, mosaics, contour filtering and border
// clipping.
package rastertools

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/schollz/progressbar/v3"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/raster"
)

// PixelCount is one histogram row.
type PixelCount struct {
	Value string `csv:"value"`
	Count int    `csv:"count"`
}

// CountPixels reads the first band row by row and counts each value. A
// nil progress writer disables the bar.
func CountPixels(path string, progress io.Writer) ([]PixelCount, error) {
	ds, err := raster.Open(path)
	if err != nil {
		return nil, err
	}
	defer ds.Close()
	st := ds.Structure()
	band := ds.Bands()[0]

	var bar *progressbar.ProgressBar
	if progress != nil {
		bar = progressbar.NewOptions(st.SizeY,
			progressbar.OptionSetWriter(progress),
			progressbar.OptionSetDescription("Counting "+filepath.Base(path)),
		)
	}

	counts := map[float64]int{}
	row := make([]float64, st.SizeX)
	for y := 0; y < st.SizeY; y++ {
		if err := band.Read(0, y, row, st.SizeX, 1); err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", y, err)
		}
		for _, v := range row {
			counts[v]++
		}
		if bar != nil {
			bar.Add(1)
		}
	}

	values := make([]float64, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Float64s(values)
	out := make([]PixelCount, len(values))
	for i, v := range values {
		out[i] = PixelCount{Value: strconv.FormatFloat(v, 'f', -1, 64), Count: counts[v]}
	}
	return out, nil
}

func WriteCounts(path string, counts []PixelCount) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()
	if err := gocsv.MarshalFile(&counts, file); err != nil {
		return fmt.Errorf("failed to write counts: %w", err)
	}
	return nil
}
