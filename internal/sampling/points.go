package sampling

import (
	"fmt"
	"os"

	"github.com/airbusgeo/godal"
	"github.com/gocarina/gocsv"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/raster"
)

// PointsFromCSV reads a CSV with lat and lon columns.
func PointsFromCSV(path string) ([]geo.LatLon, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	var rows []*geo.LatLon
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("failed to read points from %s: %w", path, err)
	}
	points := make([]geo.LatLon, 0, len(rows))
	for _, r := range rows {
		points = append(points, *r)
	}
	return points, nil
}

// PointsFromVector reads the point features of the first layer of a
// shapefile or GeoJSON, reprojected to WGS84. Other geometries are skipped.
func PointsFromVector(path string) ([]geo.LatLon, error) {
	ds, err := raster.Open(path)
	if err != nil {
		return nil, err
	}
	defer ds.Close()
	layers := ds.Layers()
	if len(layers) == 0 {
		return nil, fmt.Errorf("no layers in %s", path)
	}
	layer := layers[0]

	wgs84, err := godal.NewSpatialRefFromEPSG(4326)
	if err != nil {
		return nil, err
	}
	defer wgs84.Close()
	sr := layer.SpatialRef()
	reproject := sr != nil && !sr.IsSame(wgs84)

	points := []geo.LatLon{}
	for {
		feat := layer.NextFeature()
		if feat == nil {
			break
		}
		p, ok, err := pointOf(feat, reproject, wgs84)
		feat.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read point from %s: %w", path, err)
		}
		if ok {
			points = append(points, p)
		}
	}
	return points, nil
}

func pointOf(feat *godal.Feature, reproject bool, wgs84 *godal.SpatialRef) (geo.LatLon, bool, error) {
	g := feat.Geometry()
	if g == nil || g.Empty() {
		return geo.LatLon{}, false, nil
	}
	defer g.Close()
	if reproject {
		if err := g.Reproject(wgs84); err != nil {
			return geo.LatLon{}, false, err
		}
	}
	js, err := g.GeoJSON()
	if err != nil {
		return geo.LatLon{}, false, err
	}
	geom, err := geojson.UnmarshalGeometry([]byte(js))
	if err != nil {
		return geo.LatLon{}, false, err
	}
	pt, ok := geom.Geometry().(orb.Point)
	if !ok {
		return geo.LatLon{}, false, nil
	}
	return geo.LatLon{Lat: pt.Lat(), Lon: pt.Lon()}, true, nil
}
