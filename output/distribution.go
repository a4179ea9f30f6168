// Package output renders extraction and training artifacts: sample point
// maps and series plots.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/airbusgeo/godal"
	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/properties"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/raster"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/utils"
)

// SaveDistribution writes points as a WGS84 point shapefile at path and as
// GeoJSON next to it. It returns the GeoJSON path.
func SaveDistribution(points []geo.LatLon, path string) (string, error) {
	raster.Register()
	shp := strings.TrimSuffix(path, filepath.Ext(path)) + ".shp"
	if err := os.MkdirAll(filepath.Dir(shp), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	for _, ext := range []string{".shp", ".shx", ".dbf", ".prj"} {
		os.Remove(strings.TrimSuffix(shp, ".shp") + ext)
	}

	ds, err := godal.CreateVector(godal.DriverName("ESRI Shapefile"), shp)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", shp, err)
	}
	sr, err := godal.NewSpatialRefFromEPSG(4326)
	if err != nil {
		ds.Close()
		return "", err
	}
	defer sr.Close()
	name := strings.TrimSuffix(filepath.Base(shp), ".shp")
	layer, err := ds.CreateLayer(name, sr, godal.GTPoint)
	if err != nil {
		ds.Close()
		return "", fmt.Errorf("failed to create layer: %w", err)
	}

	fc := geojson.NewFeatureCollection()
	for _, p := range points {
		g, err := godal.NewGeometryFromWKT(fmt.Sprintf("POINT (%f %f)", p.Lon, p.Lat), sr)
		if err != nil {
			ds.Close()
			return "", fmt.Errorf("invalid point %s: %w", p.Key(), err)
		}
		feat, err := layer.NewFeature(g)
		g.Close()
		if err != nil {
			ds.Close()
			return "", fmt.Errorf("failed to add point %s: %w", p.Key(), err)
		}
		feat.Close()
		fc.Append(geojson.NewFeature(orb.Point{p.Lon, p.Lat}))
	}
	if err := ds.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", shp, err)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("failed to encode GeoJSON: %w", err)
	}
	js := strings.TrimSuffix(shp, ".shp") + ".geojson"
	if err := os.WriteFile(js, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", js, err)
	}
	logrus.Infof("saved %d points to %s", len(points), shp)
	return js, nil
}

// DistributionImage draws the points of each crop over their common extent,
// colored by properties.ColorMap, with a legend.
func DistributionImage(points map[string][]geo.LatLon, width, height int, path string) error {
	all := orb.MultiPoint{}
	for _, pts := range points {
		for _, p := range pts {
			all = append(all, orb.Point{p.Lon, p.Lat})
		}
	}
	if len(all) == 0 {
		return fmt.Errorf("no points to draw")
	}
	bound := all.Bound().Pad(0.01)

	const legendWidth = 150
	dc := gg.NewContext(width+legendWidth, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	px := func(p geo.LatLon) (float64, float64) {
		x := (p.Lon - bound.Min.Lon()) / (bound.Max.Lon() - bound.Min.Lon()) * float64(width)
		y := (bound.Max.Lat() - p.Lat) / (bound.Max.Lat() - bound.Min.Lat()) * float64(height)
		return x, y
	}
	names := utils.GetSortedKeys(points, true)
	for _, crop := range names {
		c, ok := properties.ColorMap[crop]
		if !ok {
			c = properties.ColorMap["unknown"]
		}
		dc.SetRGB255(int(c.R), int(c.G), int(c.B))
		for _, p := range points[crop] {
			x, y := px(p)
			dc.DrawCircle(x, y, 2)
			dc.Fill()
		}
	}

	legendX := width + 10
	for i, crop := range names {
		c, ok := properties.ColorMap[crop]
		if !ok {
			c = properties.ColorMap["unknown"]
		}
		y := 10 + i*25
		dc.SetRGB255(int(c.R), int(c.G), int(c.B))
		dc.DrawRectangle(float64(legendX), float64(y), 15, 15)
		dc.Fill()
		dc.SetRGB(0, 0, 0)
		dc.DrawRectangle(float64(legendX), float64(y), 15, 15)
		dc.SetLineWidth(1)
		dc.Stroke()
		dc.DrawStringAnchored(fmt.Sprintf("%s (%d)", crop, len(points[crop])), float64(legendX+20), float64(y+7), 0, 0.5)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	logrus.Infof("distribution image written to %s", path)
	return nil
}
