package extract

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fhs/go-netcdf/netcdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/series"
)

var (
	testLons = []float64{-91.05, -90.95, -90.85}
	testLats = []float64{41.85, 41.95}
)

// writeDay writes a lon x lat precipitation grid where cell (i, j) holds
// base + 10*i + j. withTime adds a leading time dimension.
func writeDay(t *testing.T, path, variable string, base float32, withTime bool) {
	t.Helper()
	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	require.NoError(t, err)
	defer ds.Close()

	lonDim, err := ds.AddDim("lon", uint64(len(testLons)))
	require.NoError(t, err)
	latDim, err := ds.AddDim("lat", uint64(len(testLats)))
	require.NoError(t, err)
	dims := []netcdf.Dim{lonDim, latDim}
	if withTime {
		timeDim, err := ds.AddDim("time", 1)
		require.NoError(t, err)
		dims = append([]netcdf.Dim{timeDim}, dims...)
	}

	lonVar, err := ds.AddVar("lon", netcdf.DOUBLE, []netcdf.Dim{lonDim})
	require.NoError(t, err)
	latVar, err := ds.AddVar("lat", netcdf.DOUBLE, []netcdf.Dim{latDim})
	require.NoError(t, err)
	v, err := ds.AddVar(variable, netcdf.FLOAT, dims)
	require.NoError(t, err)

	require.NoError(t, lonVar.WriteFloat64s(testLons))
	require.NoError(t, latVar.WriteFloat64s(testLats))
	data := make([]float32, 0, len(testLons)*len(testLats))
	for i := range testLons {
		for j := range testLats {
			data = append(data, base+float32(10*i+j))
		}
	}
	require.NoError(t, v.WriteFloat32s(data))
}

func TestSplitPeriod(t *testing.T) {
	trmm, gpm := SplitPeriod([]string{"20140311", "20140312", "20140313", "20140314"})
	assert.Equal(t, []string{"20140311", "20140312"}, trmm)
	assert.Equal(t, []string{"20140313", "20140314"}, gpm)

	trmm, gpm = SplitPeriod([]string{"20100101"})
	assert.Len(t, trmm, 1)
	assert.Empty(t, gpm)
}

func TestPrecipAcrossMissionBoundary(t *testing.T) {
	root := t.TempDir()
	writeDay(t, filepath.Join(root, "trmm", "3B42_Daily.20140312.7.nc4"), trmmVariable, 100, true)
	writeDay(t, filepath.Join(root, "gpm", "3B-DAY.MS.MRG.3IMERG.20140313-S000000-E235959.V05.nc4"), gpmVariable, 200, false)

	p := &Precip{
		Root: root,
		TRMM: []string{"./trmm/3B42_Daily.20140312.7.nc4"},
		GPM: []string{
			"./gpm/3B-DAY.MS.MRG.3IMERG.20140313-S000000-E235959.V05.nc4",
			"./gpm/3B-DAY.MS.MRG.3IMERG.20140314-S000000-E235959.V05.nc4",
		},
	}
	// pointA is nearest lon index 1 and lat index 1.
	points := []geo.LatLon{pointA, pointA, {Lat: 41.86, Lon: -91.04}}
	res, err := p.Extract(context.Background(), points, "20140311", "20140314")
	require.NoError(t, err)
	require.Len(t, res, 2)

	assert.Equal(t, series.Series{
		{Date: "20140312", Value: 111},
		{Date: "20140313", Value: 211},
	}, res[pointA.Key()][series.Precip])
	assert.Equal(t, 200.0, res[geo.PointKey(41.86, -91.04)][series.Precip][1].Value)
}

func TestNearest(t *testing.T) {
	assert.Equal(t, 0, nearest(testLons, -100))
	assert.Equal(t, 2, nearest(testLons, -90.8))
	assert.Equal(t, 1, nearest(testLats, 41.95))
}
