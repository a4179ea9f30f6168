package extract

import (
	"context"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/catalog"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/raster"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/series"
)

const (
	lstScale = 0.02
	lstMin   = 7500 * lstScale
	lstMax   = 65535 * lstScale
)

// Subdataset positions inside a MOD11A1/MYD11A1 granule.
const (
	sdsDayLST   = 0
	sdsDayQC    = 1
	sdsNightLST = 4
	sdsNightQC  = 5
)

var modisKeys = []string{"day", "day_qc", "night", "night_qc"}

// LST converts a raw LST DN to kelvin, or NaN when the pixel is flagged by
// its QC byte or out of the valid range.
func LST(dn, qc float64) float64 {
	q := int(qc)
	if q != 0 && q&0xF != 1 {
		return math.NaN()
	}
	v := round(dn*lstScale, 4)
	if v >= lstMax || v <= lstMin {
		return math.NaN()
	}
	return v
}

// DailyLST averages valid day and night LST.
func DailyLST(day, night float64) float64 {
	switch {
	case math.IsNaN(day) && math.IsNaN(night):
		return math.NaN()
	case math.IsNaN(day):
		return round(night, 2)
	case math.IsNaN(night):
		return round(day, 2)
	}
	return round((day+night)/2, 2)
}

// Modis reads MODIS LST from one or more product roots (MOD11A1, MYD11A1).
type Modis struct {
	Roots     []string
	Threshold int
}

func (m *Modis) Source() string { return SourceModis }

func (m *Modis) ExtractTile(ctx context.Context, tile string, points []geo.LatLon, start, end string) (series.Results, error) {
	results := series.Results{}
	strategy := raster.ChooseStrategy(len(points), m.Threshold)
	for _, root := range m.Roots {
		files, err := catalog.ModisFiles(root, tile, start, end)
		if err != nil {
			logrus.Warnf("modis root %s: %v", root, err)
			continue
		}
		logrus.WithFields(logrus.Fields{"tile": tile, "root": root, "files": len(files)}).Info("extracting modis tile")
		for _, f := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			date, ok := catalog.CheckModisName(f)
			if !ok {
				logrus.Warnf("granule %s does not match its folder", f)
				continue
			}
			if err := m.granule(ctx, results, f, date, points, strategy); err != nil {
				logrus.Warnf("skipping granule %s: %v", f, err)
			}
		}
	}
	results.SortAll()
	return results, nil
}

func (m *Modis) granule(ctx context.Context, results series.Results, path, date string, points []geo.LatLon, strategy raster.Strategy) error {
	ds, err := raster.Open(path)
	if err != nil {
		return err
	}
	subs := raster.Subdatasets(ds)
	ds.Close()
	if len(subs) <= sdsNightQC {
		return catalog.ErrNoFiles
	}
	files := map[string]string{
		"day":      subs[sdsDayLST],
		"day_qc":   subs[sdsDayQC],
		"night":    subs[sdsNightLST],
		"night_qc": subs[sdsNightQC],
	}

	grid, err := raster.Open(files["day"])
	if err != nil {
		return err
	}
	located, err := geo.LocatePoints(grid, points)
	grid.Close()
	if err != nil {
		return err
	}
	if len(located) == 0 {
		return nil
	}

	values, err := readFiles(ctx, files, modisKeys, located, strategy)
	if err != nil {
		return err
	}
	for i, p := range located {
		lst := DailyLST(LST(values[0][i], values[1][i]), LST(values[2][i], values[3][i]))
		if math.IsNaN(lst) {
			continue
		}
		results.Add(p.Key, series.ModisLST, date, lst)
	}
	return nil
}
