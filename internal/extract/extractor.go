package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/cache"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/series"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/tiles"
)

var (
	ErrNoPoints  = errors.New("no points to extract")
	ErrNoResults = errors.New("no results extracted")
)

// Task is one points file extracted over one period.
type Task struct {
	PointsFile string
	Start      string
	End        string
}

func (t Task) Name() string {
	return strings.TrimSuffix(filepath.Base(t.PointsFile), filepath.Ext(t.PointsFile))
}

// ParseTaskName reads year and crop from a points file named
// YEAR_CROP_..._sample_points.json.
func ParseTaskName(path string) (int, string, error) {
	parts := strings.Split(filepath.Base(path), "_")
	if len(parts) < 2 {
		return 0, "", fmt.Errorf("cannot read year and crop from %q", path)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", fmt.Errorf("cannot read year from %q: %w", path, err)
	}
	return year, strings.TrimSuffix(parts[1], filepath.Ext(parts[1])), nil
}

type Summary struct {
	Task     string
	Year     int
	Crop     string
	Points   int
	Files    []string
	Failures []error
}

// Extractor runs the configured sources for a task and writes the merged
// result chunks.
type Extractor struct {
	Runner  Runner
	Sources []string
	Tiles   map[string]TileExtractor
	Precip  *Precip
	// Cache memoizes per-tile results when set.
	Cache           cache.CacheService[series.Results]
	IntermediateDir string
	OutDir          string
	ChunkSize       int
}

func (e *Extractor) Run(ctx context.Context, task Task) (Summary, error) {
	year, crop, err := ParseTaskName(task.PointsFile)
	if err != nil {
		return Summary{}, err
	}
	groups, err := tiles.LoadGroups(task.PointsFile)
	if err != nil {
		return Summary{}, err
	}
	if groups.Count() == 0 {
		return Summary{}, fmt.Errorf("%s: %w", task.PointsFile, ErrNoPoints)
	}
	summary := Summary{Task: task.Name(), Year: year, Crop: crop}
	log := logrus.WithFields(logrus.Fields{"task": summary.Task, "start": task.Start, "end": task.End})

	outputs := map[string]series.Results{}
	for _, source := range e.Sources {
		if source == SourceSentinel && year < SentinelMinYear {
			log.Infof("year %d has no sentinel data, skipping", year)
			continue
		}
		log.Infof("starting %s", source)
		res, failures, err := e.runSource(ctx, source, groups, task.Start, task.End)
		if err != nil {
			return summary, err
		}
		summary.Failures = append(summary.Failures, failures...)
		outputs[source] = res

		path := filepath.Join(e.IntermediateDir, fmt.Sprintf("%s_%s_intermediate.json", summary.Task, source))
		if err := series.SaveResults(path, res); err != nil {
			return summary, err
		}
		log.Infof("%s intermediate saved to %s (%d points)", source, path, len(res))
	}

	final := Ensemble(e.Sources, outputs)
	summary.Points = len(final)
	if len(final) == 0 {
		// Earlier chunks stay in place when nothing new was extracted.
		if len(summary.Failures) > 0 {
			return summary, fmt.Errorf("%s: %w: %w", summary.Task, ErrNoResults, errors.Join(summary.Failures...))
		}
		log.Warn("no points extracted, results left untouched")
		return summary, nil
	}
	files, err := WriteChunks(e.OutDir, year, crop, final, e.ChunkSize)
	if err != nil {
		return summary, err
	}
	summary.Files = files
	return summary, nil
}

func (e *Extractor) runSource(ctx context.Context, source string, groups tiles.PointGroups, start, end string) (series.Results, []error, error) {
	if source == SourcePrecip {
		if e.Precip == nil {
			return nil, nil, fmt.Errorf("source %s is not configured", source)
		}
		res, err := e.Precip.Extract(ctx, groups.LandsatPoints(), start, end)
		return res, nil, err
	}

	ex, ok := e.Tiles[source]
	if !ok {
		return nil, nil, fmt.Errorf("source %s is not configured", source)
	}
	var byTile map[string][]geo.LatLon
	switch source {
	case SourceLandsat:
		byTile = groups.Landsat
	case SourceSentinel:
		byTile = groups.Sentinel
	case SourceModis:
		byTile = groups.Modis
	default:
		return nil, nil, fmt.Errorf("unknown source %s", source)
	}
	res, failures := e.Runner.Run(ctx, Cached(ex, e.Cache), byTile, start, end)
	if err := ctx.Err(); err != nil {
		return nil, failures, err
	}
	return res, failures, nil
}

// Ensemble merges the outputs of every source into one record per point.
// Landsat is the base when it ran, otherwise the first source. Other
// sources only add bands to points the base already holds.
func Ensemble(order []string, outputs map[string]series.Results) series.Results {
	base := ""
	if _, ok := outputs[SourceLandsat]; ok {
		base = SourceLandsat
	} else {
		for _, s := range order {
			if _, ok := outputs[s]; ok {
				base = s
				break
			}
		}
	}
	final := series.Results{}
	if base == "" {
		return final
	}
	series.Merge(final, outputs[base])
	for _, s := range order {
		if s == base {
			continue
		}
		if res, ok := outputs[s]; ok {
			series.MergeBands(final, res)
		}
	}
	return final
}

func chunkPrefix(year int, crop string) string {
	return fmt.Sprintf("%d_%s_extracted_results", year, crop)
}

// WriteChunks writes results in chunks of size points as
// {year}_{crop}_extracted_results_{n}.json, then removes the numbered
// chunks of an earlier run that the new ones did not overwrite.
func WriteChunks(dir string, year int, crop string, results series.Results, size int) ([]string, error) {
	prefix := chunkPrefix(year, crop)
	files, err := writeEntryChunks(dir, prefix, series.Entries(results), size)
	if err != nil {
		return files, err
	}
	return files, removeStaleChunks(dir, prefix, files)
}

func writeEntryChunks(dir, prefix string, entries []series.Entry, size int) ([]string, error) {
	files := []string{}
	for n, chunk := range series.Chunk(entries, size) {
		path := filepath.Join(dir, fmt.Sprintf("%s_%d.json", prefix, n))
		if err := series.SaveEntries(path, chunk); err != nil {
			return files, err
		}
		files = append(files, path)
	}
	return files, nil
}

// removeStaleChunks deletes prefix_<n>.json files in dir that are not in
// keep.
func removeStaleChunks(dir, prefix string, keep []string) error {
	matches, err := filepath.Glob(filepath.Join(dir, prefix+"_*.json"))
	if err != nil {
		return err
	}
	kept := make(map[string]bool, len(keep))
	for _, k := range keep {
		kept[k] = true
	}
	for _, f := range matches {
		n := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(f), prefix+"_"), ".json")
		if kept[f] || n == "" || strings.Trim(n, "0123456789") != "" {
			continue
		}
		if err := os.Remove(f); err != nil {
			return fmt.Errorf("failed to remove %s: %w", f, err)
		}
		logrus.Debugf("removed stale chunk %s", f)
	}
	return nil
}
