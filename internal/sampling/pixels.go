// Package sampling draws sample points from categorical label rasters such
// as the CDL, clipped to the footprint of each Landsat tile.
package sampling

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"

	"github.com/airbusgeo/godal"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/raster"
)

var ErrNotEnoughPixels = errors.New("not enough labelled pixels")

// CropCodes are the CDL values of the crops we sample.
var CropCodes = map[string]int{
	"Corn":     1,
	"Cotton":   2,
	"Rice":     3,
	"Soybeans": 5,
	"Peanuts":  10,
}

func CropCode(crop string) (int, error) {
	code, ok := CropCodes[crop]
	if !ok {
		return 0, fmt.Errorf("unknown crop %q", crop)
	}
	return code, nil
}

// LabelPixels returns the column and row of every pixel equal to code, in
// row major order.
func LabelPixels(ds *godal.Dataset, code int) ([][2]int, error) {
	st := ds.Structure()
	data, err := raster.ReadAll(ds.Bands()[0], st.SizeX, st.SizeY)
	if err != nil {
		return nil, err
	}
	want := float64(code)
	pixels := [][2]int{}
	for i, v := range data {
		if v == want {
			pixels = append(pixels, [2]int{i % st.SizeX, i / st.SizeX})
		}
	}
	return pixels, nil
}

// SampleLabelPixels draws n distinct pixels labelled code and returns the
// lat/lon of their upper left corners, in draw order.
func SampleLabelPixels(ds *godal.Dataset, code, n int, rng *rand.Rand) ([]geo.LatLon, error) {
	pixels, err := LabelPixels(ds, code)
	if err != nil {
		return nil, err
	}
	if n > len(pixels) {
		return nil, fmt.Errorf("%w: want %d of code %d, have %d", ErrNotEnoughPixels, n, code, len(pixels))
	}
	picked := rng.Perm(len(pixels))[:n]

	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, fmt.Errorf("failed to get GeoTransform: %w", err)
	}
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, idx := range picked {
		px := pixels[idx]
		xs[i], ys[i] = geo.GeoTransform(gt).PixelToGeo(float64(px[0]), float64(px[1]))
	}

	proj, err := geo.NewProjectorFromWKT(ds.Projection())
	if err != nil {
		return nil, err
	}
	defer proj.Close()
	return proj.ToLatLon(xs, ys)
}

// Histogram counts the pixels of each code present in ds.
func Histogram(ds *godal.Dataset) (map[int]int, error) {
	st := ds.Structure()
	data, err := raster.ReadAll(ds.Bands()[0], st.SizeX, st.SizeY)
	if err != nil {
		return nil, err
	}
	counts := map[int]int{}
	for _, v := range data {
		counts[int(v)]++
	}
	return counts, nil
}

// Codes lists the codes of a histogram in ascending order.
func Codes(h map[int]int) []int {
	codes := make([]int, 0, len(h))
	for c := range h {
		codes = append(codes, c)
	}
	slices.Sort(codes)
	return codes
}
