package extract

import (
	"context"
	"errors"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/catalog"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/raster"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/series"
)

// landsatClearQA are the pixel_qa values of clear land and water pixels
// across TM, ETM+ and OLI.
var landsatClearQA = map[int]bool{66: true, 130: true, 322: true, 386: true, 834: true, 898: true, 1346: true}

func landsatClear(v float64) bool { return landsatClearQA[int(v)] }

func byRow(points []geo.Located) {
	sort.SliceStable(points, func(i, j int) bool { return points[i].Row < points[j].Row })
}

type Landsat struct {
	Root      string
	Scenes    []string
	Threshold int
}

func (l *Landsat) Source() string { return SourceLandsat }

func (l *Landsat) ExtractTile(ctx context.Context, tile string, points []geo.LatLon, start, end string) (series.Results, error) {
	selected, err := catalog.LandsatScenes(l.Scenes, []string{tile}, start, end)
	if err != nil {
		return nil, err
	}
	scenes := selected[tile]
	results := series.Results{}
	if len(scenes) == 0 {
		logrus.Infof("landsat tile %s: no scenes between %s and %s", tile, start, end)
		return results, nil
	}

	strategy := raster.ChooseStrategy(len(points), l.Threshold)
	logrus.WithFields(logrus.Fields{
		"tile":     tile,
		"scenes":   len(scenes),
		"points":   len(points),
		"strategy": strategy,
	}).Info("extracting landsat tile")

	bands := series.LandsatBands()
	for _, scene := range scenes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		date, err := catalog.LandsatSceneDate(scene)
		if err != nil {
			logrus.Warn(err)
			continue
		}
		dir := catalog.Resolve(l.Root, scene)
		files, qa, err := catalog.LandsatFiles(dir)
		if err != nil {
			logrus.Warnf("skipping scene %s: %v", scene, err)
			continue
		}
		clear, err := clearPoints(qa, points, strategy, byRow, landsatClear)
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
