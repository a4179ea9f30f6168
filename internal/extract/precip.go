package extract

import (
	"context"
	"fmt"
	"math"

	"github.com/fhs/go-netcdf/netcdf"
	"github.com/sirupsen/logrus"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/catalog"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/series"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/utils"
)

// GPMStart is the first day served from GPM instead of TRMM.
const GPMStart = "20140313"

const (
	gpmVariable  = "precipitationCal"
	trmmVariable = "precipitation"
)

// Precip extracts daily TRMM/GPM precipitation from NetCDF day files.
type Precip struct {
	Root string
	GPM  []string
	TRMM []string
}

func (p *Precip) Source() string { return SourcePrecip }

// SplitPeriod separates the days served by TRMM from those served by GPM.
func SplitPeriod(days []string) (trmm, gpm []string) {
	for i, d := range days {
		if d >= GPMStart {
			return days[:i], days[i:]
		}
	}
	return days, nil
}

// Extract returns the TRMM_GPM series of every point over [start, end].
// Days without a file are skipped.
func (p *Precip) Extract(ctx context.Context, points []geo.LatLon, start, end string) (series.Results, error) {
	days, err := utils.DateRange(start, end)
	if err != nil {
		return nil, err
	}
	points = geo.Unique(points)
	results := series.Results{}
	trmm, gpm := SplitPeriod(days)
	if err := p.run(ctx, results, p.TRMM, trmmVariable, trmm, points); err != nil {
		return nil, err
	}
	if err := p.run(ctx, results, p.GPM, gpmVariable, gpm, points); err != nil {
		return nil, err
	}
	results.SortAll()
	return results, nil
}

func (p *Precip) run(ctx context.Context, results series.Results, list []string, variable string, days []string, points []geo.LatLon) error {
	var grid *gridIndex
	for _, day := range days {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry, ok := catalog.PrecipFile(list, day)
		if !ok {
			logrus.Warnf("no %s file for %s", variable, day)
			continue
		}
		path := catalog.Resolve(p.Root, entry)
		values, g, err := readPrecipDay(path, variable, points, grid)
		if err != nil {
			logrus.Warnf("skipping %s: %v", path, err)
			continue
		}
		grid = g
		for i, pt := range points {
			results.Add(pt.Key(), series.Precip, day, round(values[i], 3))
		}
	}
	return nil
}

// gridIndex holds the nearest lon/lat indices of each point. It is computed
// from the first file of a source and reused for the rest.
type gridIndex struct {
	lon []int
	lat []int
}

func nearest(grid []float64, v float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, g := range grid {
		if d := math.Abs(g - v); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func newGridIndex(lons, lats []float64, points []geo.LatLon) *gridIndex {
	g := &gridIndex{lon: make([]int, len(points)), lat: make([]int, len(points))}
	for i, p := range points {
		g.lon[i] = nearest(lons, p.Lon)
		g.lat[i] = nearest(lats, p.Lat)
	}
	return g
}

func readPrecipDay(path, variable string, points []geo.LatLon, grid *gridIndex) ([]float64, *gridIndex, error) {
	ds, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer ds.Close()

	if grid == nil {
		lons, err := readVar(ds, "lon")
		if err != nil {
			return nil, nil, err
		}
		lats, err := readVar(ds, "lat")
		if err != nil {
			return nil, nil, err
		}
		grid = newGridIndex(lons, lats, points)
	}

	v, err := ds.Var(variable)
	if err != nil {
		return nil, nil, fmt.Errorf("variable %s: %w", variable, err)
	}
	dims, err := v.LenDims()
	if err != nil {
		return nil, nil, err
	}
	if len(dims) < 2 {
		return nil, nil, fmt.Errorf("variable %s has %d dimensions", variable, len(dims))
	}
	// Daily files may carry a leading time dimension of length one.
	lead := len(dims) - 2
	values := make([]float64, len(points))
	for i := range points {
		idx := make([]uint64, len(dims))
		idx[lead] = uint64(grid.lon[i])
		idx[lead+1] = uint64(grid.lat[i])
		val, err := readAt(v, idx)
		if err != nil {
			return nil, nil, err
		}
		values[i] = val
	}
	return values, grid, nil
}

func readVar(ds netcdf.Dataset, name string) ([]float64, error) {
	v, err := ds.Var(name)
	if err != nil {
		return nil, fmt.Errorf("variable %s: %w", name, err)
	}
	n, err := v.Len()
	if err != nil {
		return nil, err
	}
	t, err := v.Type()
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	switch t {
	case netcdf.DOUBLE:
		err = v.ReadFloat64s(out)
	case netcdf.FLOAT:
		buf := make([]float32, n)
		err = v.ReadFloat32s(buf)
		for i, f := range buf {
			out[i] = float64(f)
		}
	default:
		err = fmt.Errorf("variable %s has unsupported type %v", name, t)
	}
	return out, err
}

func readAt(v netcdf.Var, idx []uint64) (float64, error) {
	t, err := v.Type()
	if err != nil {
		return 0, err
	}
	switch t {
	case netcdf.DOUBLE:
		return v.ReadFloat64At(idx)
	case netcdf.FLOAT:
		f, err := v.ReadFloat32At(idx)
		return float64(f), err
	}
	return 0, fmt.Errorf("unsupported type %v", t)
}
