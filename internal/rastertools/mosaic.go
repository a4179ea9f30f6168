package rastertools

import (
	"fmt"
	"math"

	"github.com/airbusgeo/godal"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/raster"
)

func readBand(path string) ([]float64, raster.Info, error) {
	ds, err := raster.Open(path)
	if err != nil {
		return nil, raster.Info{}, err
	}
	defer ds.Close()
	info, err := raster.ReadInfo(ds)
	if err != nil {
		return nil, raster.Info{}, err
	}
	data, err := raster.ReadAll(ds.Bands()[0], info.Width, info.Height)
	return data, info, err
}

// Mosaic overlays two binary class maps: pixels of b become class 2, those
// of a stay 1, and overlaps are capped at 2. The output is a Byte GTiff on
// a's grid.
func Mosaic(a, b, out string) error {
	first, info, err := readBand(a)
	if err != nil {
		return err
	}
	second, infoB, err := readBand(b)
	if err != nil {
		return err
	}
	if infoB.Width != info.Width || infoB.Height != info.Height {
		return fmt.Errorf("size mismatch: %dx%d and %dx%d", info.Width, info.Height, infoB.Width, infoB.Height)
	}

	data := make([]uint8, len(first))
	for i := range first {
		data[i] = mosaicPixel(first[i], second[i])
	}
	return raster.WriteGTiff(out, info, data, godal.Byte)
}

// mosaicPixel combines one pixel of each map into a class in [0, 2]. NaN
// and negative nodata count as background.
func mosaicPixel(a, b float64) uint8 {
	a, b = classValue(a), classValue(b)
	if b == 1 {
		b = 2
	}
	return uint8(min(a+b, 2))
}

func classValue(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
