package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/cache"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/catalog"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/extract"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/properties"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/series"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/tiles"
)

// NewExtractor builds an extractor for the configured sources. Archive
// lists are only read for the sources that run.
func NewExtractor(sources []string) (*extract.Extractor, error) {
	if len(sources) == 0 {
		sources = []string{extract.SourceLandsat}
	}
	e := &extract.Extractor{
		Runner:          extract.Runner{Workers: properties.Workers(), Progress: os.Stderr},
		Sources:         sources,
		Tiles:           map[string]extract.TileExtractor{},
		Cache:           cache.NewFileCache[series.Results]("cache/extract"),
		IntermediateDir: properties.IntermediatePath(),
		OutDir:          properties.ExtractedPath(),
		ChunkSize:       properties.ChunkSize(),
	}
	root := properties.ArchiveRoot()
	for _, source := range sources {
		switch source {
		case extract.SourceLandsat:
			scenes, err := catalog.LoadList(properties.LandsatListFile())
			if err != nil {
				return nil, err
			}
			e.Tiles[source] = &extract.Landsat{Root: root, Scenes: scenes, Threshold: properties.FetchThreshold()}
		case extract.SourceSentinel:
			scenes, err := catalog.LoadList(properties.SentinelListFile())
			if err != nil {
				return nil, err
			}
			e.Tiles[source] = &extract.Sentinel{Root: root, Scenes: scenes, Threshold: properties.FetchThreshold(), BlockSize: properties.BlockSize()}
		case extract.SourceModis:
			e.Tiles[source] = &extract.Modis{Roots: []string{properties.MODPath(), properties.MYDPath()}, Threshold: properties.FetchThreshold()}
		case extract.SourcePrecip:
			gpm, err := catalog.LoadList(properties.GPMListFile())
			if err != nil {
				return nil, err
			}
			trmm, err := catalog.LoadList(properties.TRMMListFile())
			if err != nil {
				return nil, err
			}
			e.Precip = &extract.Precip{Root: root, GPM: gpm, TRMM: trmm}
		default:
			return nil, fmt.Errorf("unknown source %q", source)
		}
	}
	return e, nil
}

// RunExtract runs every task with one extractor. A failed task does not
// stop the others.
func RunExtract(ctx context.Context, tasks []extract.Task, sources []string) ([]extract.Summary, error) {
	r := newRun("extract")
	e, err := NewExtractor(sources)
	if err != nil {
		return nil, r.fail(err)
	}
	return runExtract(ctx, r, e, tasks)
}

// runExtract counts a task whose tiles all failed as a failed task. Tiles
// failing inside an otherwise successful batch turn the report into a
// warning.
func runExtract(ctx context.Context, r *run, e *extract.Extractor, tasks []extract.Task) ([]extract.Summary, error) {
	summaries := []extract.Summary{}
	failures := []error{}
	tileFailures := []error{}
	points := 0
	for _, task := range tasks {
		if ctx.Err() != nil {
			failures = append(failures, ctx.Err())
			break
		}
		r.Log.WithField("task", task.Name()).Infof("extracting %s to %s", task.Start, task.End)
		summary, err := e.Run(ctx, task)
		if err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", task.Name(), err))
			continue
		}
		for _, f := range summary.Failures {
			r.Log.WithField("task", summary.Task).WithError(f).Warn("tile failed")
			tileFailures = append(tileFailures, fmt.Errorf("%s: %w", summary.Task, f))
		}
		points += summary.Points
		summaries = append(summaries, summary)
	}
	msg := fmt.Sprintf("extracted %d points over %d tasks with %v", points, len(summaries), e.Sources)
	if len(failures) == 0 && len(tileFailures) > 0 {
		r.warn(msg, fmt.Sprintf("%d tiles failed", len(tileFailures)), tileFailures)
		return summaries, nil
	}
	return summaries, r.finish(len(tasks), failures, msg)
}

// RunSplit re-chunks a result file.
func RunSplit(path string, size int) ([]string, error) {
	r := newRun("split")
	if size <= 0 {
		size = properties.ChunkSize()
	}
	files, err := extract.SplitResults(path, size)
	if err != nil {
		return nil, r.fail(err)
	}
	r.Log.Infof("%s split into %d files", path, len(files))
	return files, nil
}

// RunLabels writes the CDL labels of a points file over [start, end] to
// out.
func RunLabels(ctx context.Context, pointsFile, start, end, out string) (series.Labels, error) {
	r := newRun("labels")
	groups, err := tiles.LoadGroups(pointsFile)
	if err != nil {
		return nil, r.fail(err)
	}
	files, err := catalog.LoadList(properties.CDLListFile())
	if err != nil {
		return nil, r.fail(err)
	}
	index, err := extract.LoadCropIndex(properties.CropIndexFile())
	if err != nil {
		return nil, r.fail(err)
	}
	cdl := &extract.CDL{Root: properties.ArchiveRoot(), Files: files, Index: index}
	labels, err := cdl.Extract(ctx, groups.LandsatPoints(), start, end)
	if err != nil {
		return nil, r.fail(err)
	}
	if err := writeJSON(out, labels); err != nil {
		return nil, r.fail(err)
	}
	return labels, r.finish(1, nil, fmt.Sprintf("labelled %d points to %s", len(labels), out))
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
