package extract

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/raster"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/series"
)

const (
	reflectanceScale   = 0.0001
	invalidReflectance = -1
)

// Reflectance scales a surface reflectance DN into [0, 1]. Anything outside
// that range is marked -1.
func Reflectance(dn float64) float64 {
	v := round(dn*reflectanceScale, 4)
	if v < 0 || v > 1 {
		return invalidReflectance
	}
	return v
}

// sampleFile opens a single band raster and samples the located points.
func sampleFile(path string, points []geo.Located, strategy raster.Strategy) ([]float64, error) {
	ds, err := raster.Open(path)
	if err != nil {
		return nil, err
	}
	defer ds.Close()
	bands := ds.Bands()
	if len(bands) == 0 {
		return nil, fmt.Errorf("%s has no bands", path)
	}
	return raster.Sample(bands[0], points, ds.Structure().SizeX, strategy)
}

// readFiles samples the same points in several rasters at once, one
// goroutine per file. values[i] belongs to keys[i].
func readFiles(ctx context.Context, files map[string]string, keys []string, points []geo.Located, strategy raster.Strategy) ([][]float64, error) {
	for _, key := range keys {
		if _, ok := files[key]; !ok {
			return nil, fmt.Errorf("no file for %s", key)
		}
	}
	values := make([][]float64, len(keys))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(len(keys))
	for i, key := range keys {
		path := files[key]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := sampleFile(path, points, strategy)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			values[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return values, nil
}

// clearPoints locates points on a mask raster and keeps the ones whose mask
// value passes clear.
func clearPoints(maskPath string, points []geo.LatLon, strategy raster.Strategy, order func([]geo.Located), clear func(float64) bool) ([]geo.Located, error) {
	ds, err := raster.Open(maskPath)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	located, err := geo.LocatePoints(ds, points)
	if err != nil {
		return nil, err
	}
	if len(located) == 0 {
		return nil, nil
	}
	order(located)

	mask, err := raster.Sample(ds.Bands()[0], located, ds.Structure().SizeX, strategy)
	if err != nil {
		return nil, fmt.Errorf("failed to read mask %s: %w", maskPath, err)
	}
	kept := located[:0]
	for i, p := range located {
		if clear(mask[i]) {
			kept = append(kept, p)
		}
	}
	return kept, nil
}

// sceneReflectance reads the six bands of one scene for the clear points
// and appends them to results under date.
func sceneReflectance(ctx context.Context, results series.Results, date string, files map[string]string, bands []string, points []geo.Located, strategy raster.Strategy) error {
	if len(points) == 0 {
		return nil
	}
	values, err := readFiles(ctx, files, bands, points, strategy)
	if err != nil {
		return err
	}
	for b, band := range bands {
		for i, p := range points {
			results.Add(p.Key, band, date, Reflectance(values[b][i]))
		}
	}
	logrus.Debugf("%s: %d clear points", date, len(points))
	return nil
}
