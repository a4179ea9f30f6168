// Package tiles maps sample points onto the reference grids of each
// program: WRS2 path/row for Landsat, MGRS for Sentinel and the MODIS
// sinusoidal h/v grid.
package tiles

import (
	"fmt"

	"github.com/airbusgeo/godal"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/raster"
)

// Footprint is one tile polygon in WGS84 lon/lat.
type Footprint struct {
	ID       string
	Geometry orb.Geometry
	bound    orb.Bound
}

func NewFootprint(id string, g orb.Geometry) Footprint {
	return Footprint{ID: id, Geometry: g, bound: g.Bound()}
}

func (f Footprint) Contains(p orb.Point) bool {
	if !f.bound.Contains(p) {
		return false
	}
	switch g := f.Geometry.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, p)
	case orb.Bound:
		return g.Contains(p)
	}
	return false
}

// Index answers which tiles contain a point.
type Index struct {
	footprints []Footprint
}

func NewIndex(footprints []Footprint) *Index {
	return &Index{footprints: footprints}
}

func (ix *Index) Len() int { return len(ix.footprints) }

// Lookup returns the ids of every footprint containing the point. Tiles
// overlap at their edges so a point may belong to several.
func (ix *Index) Lookup(p geo.LatLon) []string {
	pt := orb.Point{p.Lon, p.Lat}
	ids := []string{}
	for _, f := range ix.footprints {
		if f.Contains(pt) {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

// FieldID extracts a tile id from a feature's attributes.
type FieldID func(fields map[string]godal.Field) (string, bool)

// WRSFieldID builds PPP-RRR from the PATH and ROW attributes.
func WRSFieldID(fields map[string]godal.Field) (string, bool) {
	path, ok := fields["PATH"]
	if !ok {
		return "", false
	}
	row, ok := fields["ROW"]
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%03d-%03d", path.Int(), row.Int()), true
}

// MGRSFieldID uses the Name attribute, e.g. 15TVG.
func MGRSFieldID(fields map[string]godal.Field) (string, bool) {
	name, ok := fields["Name"]
	if !ok {
		return "", false
	}
	return name.String(), name.String() != ""
}

func LoadWRS(path string) (*Index, error)  { return LoadIndex(path, WRSFieldID) }
func LoadMGRS(path string) (*Index, error) { return LoadIndex(path, MGRSFieldID) }

// LoadIndex reads every polygon feature of the first layer of a vector file.
func LoadIndex(path string, idOf FieldID) (*Index, error) {
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
	layerSR := layer.SpatialRef()
	reproject := layerSR != nil && !layerSR.IsSame(wgs84)

	footprints := []Footprint{}
	for {
		feat := layer.NextFeature()
		if feat == nil {
			break
		}
		fp, ok, err := footprintOf(feat, idOf, reproject, wgs84)
		feat.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read footprint from %s: %w", path, err)
		}
		if ok {
			footprints = append(footprints, fp)
		}
	}
	return NewIndex(footprints), nil
}

func footprintOf(feat *godal.Feature, idOf FieldID, reproject bool, wgs84 *godal.SpatialRef) (Footprint, bool, error) {
	id, ok := idOf(feat.Fields())
	if !ok {
		return Footprint{}, false, nil
	}
	g := feat.Geometry()
	if g == nil || g.Empty() {
		return Footprint{}, false, nil
	}
	defer g.Close()
	if reproject {
		if err := g.Reproject(wgs84); err != nil {
			return Footprint{}, false, err
		}
	}
	js, err := g.GeoJSON()
	if err != nil {
		return Footprint{}, false, err
	}
	geom, err := geojson.UnmarshalGeometry([]byte(js))
	if err != nil {
		return Footprint{}, false, err
	}
	return NewFootprint(id, geom.Geometry()), true, nil
}
