package sampling

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/raster"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/tiles"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/utils"
)

// SampleFileName is {year}_{crop}_{region}_sample_points.json.
func SampleFileName(year int, crop, region string) string {
	return fmt.Sprintf("%d_%s_%s_sample_points.json", year, crop, region)
}

// ExtractSamples draws n points of crop from each tile's label raster and
// groups them under that tile. Tiles without enough pixels are reported and
// left out.
func ExtractSamples(ctx context.Context, crop string, labelRasters map[string]string, n int, rng *rand.Rand) (tiles.PointGroups, []error) {
	groups := tiles.NewPointGroups()
	code, err := CropCode(crop)
	if err != nil {
		return groups, []error{err}
	}
	var failures []error
	for _, tile := range utils.GetSortedKeys(labelRasters, true) {
		if err := ctx.Err(); err != nil {
			failures = append(failures, err)
			break
		}
		path := labelRasters[tile]
		points, err := sampleTile(path, code, n, rng)
		if err != nil {
			if errors.Is(err, ErrNotEnoughPixels) {
				logrus.Warnf("%s %s: %v", tile, crop, err)
			} else {
				logrus.Errorf("%s %s: %v", tile, crop, err)
			}
			failures = append(failures, fmt.Errorf("tile %s (%s): %w", tile, filepath.Base(path), err))
			continue
		}
		groups.Landsat[tile] = points
		logrus.WithFields(logrus.Fields{"tile": tile, "crop": crop, "points": len(points)}).Info("sampled")
	}
	return groups, failures
}

func sampleTile(path string, code, n int, rng *rand.Rand) ([]geo.LatLon, error) {
	ds, err := raster.Open(path)
	if err != nil {
		return nil, err
	}
	defer ds.Close()
	return SampleLabelPixels(ds, code, n, rng)
}
