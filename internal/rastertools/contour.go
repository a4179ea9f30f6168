package rastertools

import (
	"fmt"
	"image/color"

	"github.com/airbusgeo/godal"
	"gocv.io/x/gocv"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/raster"
)

// FilterContours keeps the connected shapes of a 0/1 mask whose contour
// area is at least minArea and returns them filled with 1.
func FilterContours(mask []uint8, width, height int, minArea float64) ([]uint8, error) {
	src, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC1, mask)
	if err != nil {
		return nil, fmt.Errorf("failed to build mask: %w", err)
	}
	defer src.Close()

	contours := gocv.FindContours(src, gocv.RetrievalList, gocv.ChainApproxNone)
	defer contours.Close()

	kept := gocv.NewPointsVector()
	defer kept.Close()
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		if gocv.ContourArea(c) >= minArea {
			kept.Append(c)
		}
	}

	dst := gocv.Zeros(height, width, gocv.MatTypeCV8UC1)
	defer dst.Close()
	if kept.Size() > 0 {
		gocv.DrawContours(&dst, kept, -1, color.RGBA{R: 1, G: 1, B: 1}, -1)
	}
	return dst.ToBytes(), nil
}

// ContourFilterRaster binarizes the first band at value, filters the shapes
// smaller than minArea and writes the Byte result on the input grid.
func ContourFilterRaster(path string, value, minArea float64, out string) error {
	data, info, err := readBand(path)
	if err != nil {
		return err
	}
	mask := make([]uint8, len(data))
	for i, v := range data {
		if v == value {
			mask[i] = 1
		}
	}
	filtered, err := FilterContours(mask, info.Width, info.Height, minArea)
	if err != nil {
		return err
	}
	return raster.WriteGTiff(out, info, filtered, godal.Byte)
}
