package geo

import (
	"errors"
	"math"
)

var ErrSingularTransform = errors.New("geotransform is not invertible")

// GeoTransform is the GDAL affine transform:
// Xgeo = gt[0] + col*gt[1] + row*gt[2], Ygeo = gt[3] + col*gt[4] + row*gt[5].
type GeoTransform [6]float64

// PixelToGeo returns the georeferenced position of the pixel corner (col, row).
func (gt GeoTransform) PixelToGeo(col, row float64) (float64, float64) {
	return gt[0] + col*gt[1] + row*gt[2], gt[3] + col*gt[4] + row*gt[5]
}

// GeoToPixel inverts the transform and returns fractional pixel coordinates.
func (gt GeoTransform) GeoToPixel(x, y float64) (float64, float64, error) {
	det := gt[1]*gt[5] - gt[2]*gt[4]
	if det == 0 || math.IsNaN(det) {
		return 0, 0, ErrSingularTransform
	}
	dx, dy := x-gt[0], y-gt[3]
	col := (dx*gt[5] - dy*gt[2]) / det
	row := (dy*gt[1] - dx*gt[4]) / det
	return col, row, nil
}

// Pixel is GeoToPixel truncated toward zero.
func (gt GeoTransform) Pixel(x, y float64) (int, int, error) {
	col, row, err := gt.GeoToPixel(x, y)
	if err != nil {
		return 0, 0, err
	}
	return int(col), int(row), nil
}

// Inside reports whether (col, row) lies strictly inside a width x height
// raster. Column and row zero are excluded.
func Inside(col, row, width, height int) bool {
	return col > 0 && col < width && row > 0 && row < height
}
