package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectorRoundTripUTM(t *testing.T) {
	proj, err := NewProjectorFromEPSG(32615)
	require.NoError(t, err)
	defer proj.Close()

	points := []LatLon{{Lat: 40.5, Lon: -93.0}, {Lat: 41.0, Lon: -92.5}}
	xs, ys, err := proj.ToRaster(points)
	require.NoError(t, err)
	// -93 is the central meridian of zone 15.
	assert.InDelta(t, 500000, xs[0], 1e-3)
	assert.Greater(t, ys[1], ys[0])

	back, err := proj.ToLatLon(xs, ys)
	require.NoError(t, err)
	for i := range points {
		assert.InDelta(t, points[i].Lat, back[i].Lat, 1e-7)
		assert.InDelta(t, points[i].Lon, back[i].Lon, 1e-7)
	}
}

func TestProjectorEmptyInput(t *testing.T) {
	proj, err := NewProjectorFromEPSG(4326)
	require.NoError(t, err)
	defer proj.Close()

	xs, ys, err := proj.ToRaster(nil)
	require.NoError(t, err)
	assert.Empty(t, xs)
	assert.Empty(t, ys)

	_, err = proj.ToLatLon([]float64{1}, nil)
	assert.Error(t, err)
}
