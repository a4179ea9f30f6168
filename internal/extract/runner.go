package extract

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/series"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/utils"
)

// Runner fans tiles out to a fixed size worker pool.
type Runner struct {
	Workers int
	// Progress receives a progress bar when set.
	Progress io.Writer
}

// Run extracts every non-empty tile and merges the results in tile order,
// so a point sampled in two overlapping tiles keeps the later tile's
// record. Failed tiles are returned, the rest still count.
func (r Runner) Run(ctx context.Context, ex TileExtractor, groups map[string][]geo.LatLon, start, end string) (series.Results, []error) {
	tiles := make([]string, 0, len(groups))
	for _, tile := range utils.GetSortedKeys(groups, true) {
		if len(groups[tile]) > 0 {
			tiles = append(tiles, tile)
		}
	}

	var bar *progressbar.ProgressBar
	if r.Progress != nil {
		bar = progressbar.NewOptions(len(tiles),
			progressbar.OptionSetWriter(r.Progress),
			progressbar.OptionSetDescription(fmt.Sprintf("Extracting %s", ex.Source())),
			progressbar.OptionShowCount(),
		)
	}

	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}
	wp := workerpool.New(workers)

	var (
		mu       sync.Mutex
		perTile  = make([]series.Results, len(tiles))
		failures []error
	)
	for i, tile := range tiles {
		if ctx.Err() != nil {
			break
		}
		points := groups[tile]
		wp.Submit(func() {
			res, err := extractTile(ctx, ex, tile, points, start, end)
			mu.Lock()
			defer mu.Unlock()
			if bar != nil {
				bar.Add(1)
			}
			if err != nil {
				logrus.WithField("tile", tile).Errorf("%s extraction failed: %v", ex.Source(), err)
				failures = append(failures, fmt.Errorf("%s tile %s: %w", ex.Source(), tile, err))
				return
			}
			perTile[i] = res
		})
	}
	wp.StopWait()
	if bar != nil {
		bar.Finish()
	}
	if err := ctx.Err(); err != nil {
		failures = append(failures, err)
	}

	merged := series.Results{}
	for _, res := range perTile {
		series.Merge(merged, res)
	}
	return merged, failures
}

func extractTile(ctx context.Context, ex TileExtractor, tile string, points []geo.LatLon, start, end string) (res series.Results, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return ex.ExtractTile(ctx, tile, points, start, end)
}
