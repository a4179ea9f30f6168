package geo

import (
	"fmt"

	"github.com/airbusgeo/godal"
)

// Projector converts between WGS84 lon/lat and a raster's spatial reference.
type Projector struct {
	wgs84    *godal.SpatialRef
	target   *godal.SpatialRef
	toTarget *godal.Transform
	toWGS84  *godal.Transform
}

func NewProjectorFromWKT(wkt string) (*Projector, error) {
	sr, err := godal.NewSpatialRefFromWKT(wkt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse projection: %w", err)
	}
	return newProjector(sr)
}

func NewProjectorFromEPSG(code int) (*Projector, error) {
	sr, err := godal.NewSpatialRefFromEPSG(code)
	if err != nil {
		return nil, fmt.Errorf("failed to create EPSG:%d: %w", code, err)
	}
	return newProjector(sr)
}

func newProjector(target *godal.SpatialRef) (*Projector, error) {
	wgs84, err := godal.NewSpatialRefFromEPSG(4326)
	if err != nil {
		target.Close()
		return nil, fmt.Errorf("failed to create WGS84: %w", err)
	}
	toTarget, err := godal.NewTransform(wgs84, target)
	if err != nil {
		wgs84.Close()
		target.Close()
		return nil, fmt.Errorf("failed to create forward transform: %w", err)
	}
	toWGS84, err := godal.NewTransform(target, wgs84)
	if err != nil {
		toTarget.Close()
		wgs84.Close()
		target.Close()
		return nil, fmt.Errorf("failed to create inverse transform: %w", err)
	}
	return &Projector{wgs84: wgs84, target: target, toTarget: toTarget, toWGS84: toWGS84}, nil
}

// ToRaster projects points into the raster's coordinate system.
func (p *Projector) ToRaster(points []LatLon) ([]float64, []float64, error) {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, pt := range points {
		xs[i], ys[i] = pt.Lon, pt.Lat
	}
	if len(points) == 0 {
		return xs, ys, nil
	}
	if err := p.toTarget.TransformEx(xs, ys, nil, nil); err != nil {
		return nil, nil, fmt.Errorf("transform error: %w", err)
	}
	return xs, ys, nil
}

func (p *Projector) ToLatLon(xs, ys []float64) ([]LatLon, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("coordinate length mismatch: %d != %d", len(xs), len(ys))
	}
	lon := append([]float64(nil), xs...)
	lat := append([]float64(nil), ys...)
	if len(xs) > 0 {
		if err := p.toWGS84.TransformEx(lon, lat, nil, nil); err != nil {
			return nil, fmt.Errorf("transform error: %w", err)
		}
	}
	out := make([]LatLon, len(xs))
	for i := range xs {
		out[i] = LatLon{Lat: lat[i], Lon: lon[i]}
	}
	return out, nil
}

func (p *Projector) Close() {
	p.toWGS84.Close()
	p.toTarget.Close()
	p.target.Close()
	p.wgs84.Close()
}
