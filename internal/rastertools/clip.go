package rastertools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/sirupsen/logrus"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/catalog"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/raster"
)

// ClipPath is <dir>/chops/<name>_clip.tif for a classified tile <dir>/<name>.tif.
func ClipPath(tif string) string {
	name := strings.TrimSuffix(filepath.Base(tif), filepath.Ext(tif))
	return filepath.Join(filepath.Dir(tif), "chops", name+"_clip.tif")
}

// ClipBorder cuts a PP-RR-... tile raster to its WRS2 polygon, dropping the
// ragged scene edges, at 30 m with nearest sampling.
func ClipBorder(shp, tif string) (string, error) {
	parts := strings.SplitN(filepath.Base(tif), "-", 3)
	if len(parts) < 3 {
		return "", fmt.Errorf("no path-row in %s", filepath.Base(tif))
	}
	pr, err := catalog.NormalizePR(parts[0] + "-" + parts[1])
	if err != nil {
		return "", err
	}
	out := ClipPath(tif)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(out), err)
	}

	ds, err := raster.Open(tif)
	if err != nil {
		return "", err
	}
	defer ds.Close()
	clipped, err := ds.Warp(out, []string{
		"-of", "GTiff",
		"-overwrite",
		"-r", "near",
		"-tr", "30", "30",
		"-cutline", shp,
		"-cwhere", "WRSPR=" + pr,
		"-crop_to_cutline",
	})
	if err != nil {
		return "", fmt.Errorf("failed to clip %s: %w", filepath.Base(tif), err)
	}
	if err := clipped.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", out, err)
	}
	return out, nil
}

// ClipBorders clips every tile on a worker pool. It returns the written
// files and the first failure.
func ClipBorders(shp string, tifs []string, workers int) ([]string, error) {
	wp := workerpool.New(max(workers, 1))
	var (
		mu  sync.Mutex
		out []string
	)
	errChan := make(chan error, 1)
	var stopProcessing sync.Once

	for _, tif := range tifs {
		wp.Submit(func() {
			res, err := ClipBorder(shp, tif)
			if err != nil {
				logrus.Errorf("clip %s: %v", filepath.Base(tif), err)
				stopProcessing.Do(func() { errChan <- err })
				return
			}
			mu.Lock()
			out = append(out, res)
			mu.Unlock()
			logrus.Infof("clipped %s", filepath.Base(res))
		})
	}
	wp.StopWait()
	close(errChan)

	if err := <-errChan; err != nil {
		return out, fmt.Errorf("error during border clipping: %w", err)
	}
	return out, nil
}
