package extract

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/catalog"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/raster"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/series"
)

// SentinelMinYear is the first year the archive carries Sentinel-2 L2A.
const SentinelMinYear = 2016

func sentinelClear(v float64) bool { return v == 1 }

type Sentinel struct {
	Root      string
	Scenes    []string
	Threshold int
	BlockSize int
}

func (s *Sentinel) Source() string { return SourceSentinel }

func (s *Sentinel) ExtractTile(ctx context.Context, tile string, points []geo.LatLon, start, end string) (series.Results, error) {
	selected, err := catalog.SentinelScenes(s.Scenes, []string{tile}, start, end)
	if err != nil {
		return nil, err
	}
	scenes := selected[tile]
	results := series.Results{}
	if len(scenes) == 0 {
		logrus.Infof("sentinel tile %s: no scenes between %s and %s", tile, start, end)
		return results, nil
	}

	strategy := raster.ChooseStrategy(len(points), s.Threshold)
	order := func(p []geo.Located) { BlockSort(p, s.BlockSize) }
	logrus.WithFields(logrus.Fields{
		"tile":     tile,
		"scenes":   len(scenes),
		"points":   len(points),
		"strategy": strategy,
	}).Info("extracting sentinel tile")

	bands := series.SentinelBands()
	for _, scene := range scenes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		date, err := catalog.SentinelSceneDate(scene, tile)
		if err != nil {
			logrus.Warn(err)
			continue
		}
		safe := catalog.Resolve(s.Root, scene)
		files, err := catalog.SentinelBandFiles(safe)
		if err != nil {
			logrus.Warnf("skipping scene %s: %v", scene, err)
			continue
		}
		mask, err := catalog.SentinelCloudMask(safe)
		if err != nil {
			logrus.Warnf("skipping scene %s: %v", scene, err)
			continue
		}
		clear, err := clearPoints(mask, points, strategy, order, sentinelClear)
		if err != nil {
			logrus.Warnf("skipping scene %s: %v", scene, err)
			continue
		}
		if err := sceneReflectance(ctx, results, date, files, bands, clear, strategy); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, err
			}
			logrus.Warnf("skipping scene %s: %v", scene, err)
		}
	}
	results.SortAll()
	return results, nil
}
