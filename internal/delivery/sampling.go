package delivery

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/properties"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/sampling"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/tiles"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/utils"
)

type SampleRequest struct {
	Year   int
	Crop   string
	Region string
	// Tiles maps a tile id to a raster of that tile. With Label set the
	// label raster is clipped to each of them first, otherwise the tile
	// rasters are the label rasters.
	Tiles map[string]string
	Label string
	N     int
	Seed  int64
}

// RunSample draws labelled points for every tile and saves them as a
// sample points file. It returns the written path.
func RunSample(ctx context.Context, req SampleRequest) (string, error) {
	r := newRun("sample")
	r.Log = r.Log.WithFields(logrus.Fields{"crop": req.Crop, "year": req.Year, "region": req.Region})

	failures := []error{}
	labels := req.Tiles
	if req.Label != "" {
		clipDir := filepath.Join(properties.IntermediatePath(), "clips")
		labels = map[string]string{}
		for _, tile := range utils.GetSortedKeys(req.Tiles, true) {
			out, err := sampling.ClipToTile(req.Tiles[tile], req.Label, clipDir)
			if err != nil {
				failures = append(failures, fmt.Errorf("clip %s: %w", tile, err))
				continue
			}
			labels[tile] = out
		}
	}

	rng := rand.New(rand.NewSource(req.Seed))
	groups, errs := sampling.ExtractSamples(ctx, req.Crop, labels, req.N, rng)
	failures = append(failures, errs...)
	if groups.Count() == 0 {
		err := fmt.Errorf("no %s samples drawn", req.Crop)
		if len(failures) > 0 {
			err = fmt.Errorf("%w: %w", err, errors.Join(failures...))
		}
		return "", r.fail(err)
	}

	path := filepath.Join(properties.SamplePointsPath(), sampling.SampleFileName(req.Year, req.Crop, req.Region))
	if err := tiles.SaveGroups(path, groups); err != nil {
		return "", r.fail(err)
	}
	return path, r.finish(len(req.Tiles), failures,
		fmt.Sprintf("%d %s samples in %d tiles saved to %s", groups.Count(), req.Crop, len(groups.Landsat), path))
}

// LoadPoints reads points from a CSV with lat and lon columns, or from any
// point vector file GDAL can open.
func LoadPoints(path string) ([]geo.LatLon, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return sampling.PointsFromCSV(path)
	}
	return sampling.PointsFromVector(path)
}

// RunGroup groups a points file by WRS2, MGRS and MODIS tile. A tile grid
// that cannot be loaded leaves its groups empty.
func RunGroup(pointsPath, out string) (tiles.PointGroups, error) {
	r := newRun("group")
	points, err := LoadPoints(pointsPath)
	if err != nil {
		return tiles.PointGroups{}, r.fail(err)
	}
	wrs, err := tiles.LoadWRS(properties.WRSShapefile())
	if err != nil {
		r.Log.WithError(err).Warn("WRS2 grid unavailable")
		wrs = nil
	}
	mgrs, err := tiles.LoadMGRS(properties.MGRSShapefile())
	if err != nil {
		r.Log.WithError(err).Warn("MGRS grid unavailable")
		mgrs = nil
	}
	groups := tiles.Group(points, wrs, mgrs)
	if err := tiles.SaveGroups(out, groups); err != nil {
		return groups, r.fail(err)
	}
	return groups, r.finish(1, nil, fmt.Sprintf("grouped %d points into %d landsat, %d sentinel and %d modis tiles",
		len(points), len(groups.Landsat), len(groups.Sentinel), len(groups.Modis)))
}
