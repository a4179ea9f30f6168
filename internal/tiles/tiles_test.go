package tiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
)

func square(minX, minY, maxX, maxY float64) orb.Polygon {
	return orb.Polygon{{{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY}}}
}

func TestLookupHandlesOverlap(t *testing.T) {
	ix := NewIndex([]Footprint{
		NewFootprint("026-035", square(-92, 40, -90, 42)),
		NewFootprint("025-035", square(-90.5, 40, -88, 42)),
		NewFootprint("multi", orb.MultiPolygon{square(10, 10, 11, 11), square(-89, 41, -88.5, 41.5)}),
	})

	assert.Equal(t, []string{"026-035"}, ix.Lookup(geo.LatLon{Lat: 41, Lon: -91}))
	assert.Equal(t, []string{"026-035", "025-035"}, ix.Lookup(geo.LatLon{Lat: 41, Lon: -90.2}))
	assert.Equal(t, []string{"025-035", "multi"}, ix.Lookup(geo.LatLon{Lat: 41.2, Lon: -88.7}))
	assert.Empty(t, ix.Lookup(geo.LatLon{Lat: 0, Lon: 0}))
}

func TestModisTile(t *testing.T) {
	tests := []struct {
		lat, lon float64
		want     string
	}{
		{41.5, -90, "h11v04"},
		{0.5, 0.5, "h18v08"},
		{-0.5, -0.5, "h17v09"},
		{89.9, 179.9, "h18v00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ModisTile(tt.lat, tt.lon), "lat=%v lon=%v", tt.lat, tt.lon)
	}
}

func TestGroupSkipsMissingIndexes(t *testing.T) {
	wrs := NewIndex([]Footprint{NewFootprint("026-035", square(-92, 40, -90, 42))})
	points := []geo.LatLon{{Lat: 41, Lon: -91}, {Lat: 41.5, Lon: -91.5}, {Lat: 10, Lon: 10}}

	g := Group(points, wrs, nil)

	assert.Len(t, g.Landsat["026-035"], 2)
	assert.Empty(t, g.Sentinel)
	total := 0
	for _, pts := range g.Modis {
		total += len(pts)
	}
	assert.Equal(t, 3, total)
}

func TestLandsatPointsDeduplicates(t *testing.T) {
	g := NewPointGroups()
	p := geo.LatLon{Lat: 41, Lon: -90.2}
	g.Landsat["026-035"] = []geo.LatLon{p}
	g.Landsat["025-035"] = []geo.LatLon{p, {Lat: 41, Lon: -89}}

	assert.Len(t, g.LandsatPoints(), 2)
	assert.Equal(t, 2, g.Count())
}

func TestSaveLoadGroups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.json")
	g := NewPointGroups()
	g.Landsat["026-035"] = []geo.LatLon{{Lat: 41, Lon: -91}}

	require.NoError(t, SaveGroups(path, g))
	back, err := LoadGroups(path)
	require.NoError(t, err)
	assert.Equal(t, g.Landsat, back.Landsat)
	assert.NotNil(t, back.Sentinel)
}

func TestTileFromName(t *testing.T) {
	tile, err := TileFromName("/data/cdl/26-35-20180401-cdl.tif")
	require.NoError(t, err)
	assert.Equal(t, "026-035", tile)

	tile, err = TileFromName("126-5.tif")
	require.NoError(t, err)
	assert.Equal(t, "126-005", tile)

	_, err = TileFromName("cdl.tif")
	assert.Error(t, err)
}

const wrsGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"PATH": 26, "ROW": 35},
     "geometry": {"type": "Polygon", "coordinates": [[[-92,40],[-90,40],[-90,42],[-92,42],[-92,40]]]}},
    {"type": "Feature", "properties": {"PATH": 25, "ROW": 35},
     "geometry": {"type": "Polygon", "coordinates": [[[-90.5,40],[-88,40],[-88,42],[-90.5,42],[-90.5,40]]]}}
  ]
}`

func TestLoadWRSFromVectorFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wrs.geojson")
	require.NoError(t, os.WriteFile(path, []byte(wrsGeoJSON), 0o644))

	ix, err := LoadWRS(path)
	require.NoError(t, err)
	assert.Equal(t, 2, ix.Len())
	assert.ElementsMatch(t, []string{"026-035", "025-035"}, ix.Lookup(geo.LatLon{Lat: 41, Lon: -90.2}))
}

func TestLoadMGRSWithoutNameField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wrs.geojson")
	require.NoError(t, os.WriteFile(path, []byte(wrsGeoJSON), 0o644))

	ix, err := LoadMGRS(path)
	require.NoError(t, err)
	assert.Equal(t, 0, ix.Len())
}
