package geo

import (
	"fmt"

	"github.com/airbusgeo/godal"
)

// Located is a point that falls inside a raster.
type Located struct {
	Key string
	Col int
	Row int
}

// LocatePoints projects points into ds and keeps those strictly inside it.
func LocatePoints(ds *godal.Dataset, points []LatLon) ([]Located, error) {
	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, fmt.Errorf("failed to get GeoTransform: %w", err)
	}
	proj, err := NewProjectorFromWKT(ds.Projection())
	if err != nil {
		return nil, err
	}
	defer proj.Close()

	xs, ys, err := proj.ToRaster(points)
	if err != nil {
		return nil, err
	}
	st := ds.Structure()
	return locate(GeoTransform(gt), points, xs, ys, st.SizeX, st.SizeY)
}

func locate(gt GeoTransform, points []LatLon, xs, ys []float64, width, height int) ([]Located, error) {
	out := make([]Located, 0, len(points))
	for i, p := range points {
		col, row, err := gt.Pixel(xs[i], ys[i])
		if err != nil {
			return nil, err
		}
		if !Inside(col, row, width, height) {
			continue
		}
		out = append(out, Located{Key: p.Key(), Col: col, Row: row})
	}
	return out, nil
}
