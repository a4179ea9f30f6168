package delivery

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/manifest"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/preprocess"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/pretrain"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/properties"
)

// LoadManifest reads a manifest file, or returns the defaults for an
// empty path.
func LoadManifest(path string) (*manifest.Manifest, error) {
	if path == "" {
		return manifest.Default(), nil
	}
	return manifest.Load(path)
}

// RunPreprocess smooths the extracted files of every manifest item and
// writes a CSV report of the processed files.
func RunPreprocess(ctx context.Context, m *manifest.Manifest) ([]preprocess.FileResult, error) {
	r := newRun("preprocess")
	items := m.PreprocessItems()
	jobs := make([]*preprocess.Preprocessor, len(items))
	for i, item := range items {
		jobs[i] = preprocess.New(item, m.Preprocess.Quantity, m.Preprocess.Bands,
			properties.ExtractedPath(), properties.PreprocessedPath())
	}
	workers := m.Preprocess.Workers
	if workers <= 0 {
		workers = properties.PreprocessWorkers()
	}
	r.Log.Infof("preprocessing %d items on %d workers", len(items), workers)

	results, failures := preprocess.BatchRun(ctx, jobs, workers)
	report := filepath.Join(properties.ResultPath(), fmt.Sprintf("preprocess_%s.csv", r.ID))
	if err := preprocess.WriteReport(report, results); err != nil {
		r.Log.WithError(err).Warn("failed to write preprocess report")
	}

	written, skipped := 0, 0
	for _, res := range results {
		switch {
		case res.Skipped:
			skipped++
		case res.Error == "":
			written++
		}
	}
	return results, r.finish(len(items), failures,
		fmt.Sprintf("preprocessed %d items: %d files written, %d skipped, report %s", len(items), written, skipped, report))
}

// RunPretrain combines preprocessed files into train and test archives.
func RunPretrain(ctx context.Context, m *manifest.Manifest) ([]pretrain.CombineResult, error) {
	r := newRun("pretrain")
	sec := m.Pretrain
	p := pretrain.New(sec.CropTypes, sec.ModelBands, sec.Note, properties.PreprocessedPath(), properties.PretrainPath())
	p.Indicator = m.Indicators()
	workers := sec.Workers
	if workers <= 0 {
		workers = properties.PreprocessWorkers()
	}
	r.Log.Infof("combining %d items for %v", len(sec.Items), sec.CropTypes)

	results, failures := p.BatchCombine(ctx, sec.Items, workers)
	rows := 0
	for _, res := range results {
		rows += res.TrainRows + res.TestRows
	}
	return results, r.finish(len(sec.Items), failures,
		fmt.Sprintf("wrote %d archive pairs with %d rows to %s", len(results), rows, properties.PretrainPath()))
}

// RunManifest runs the steps the manifest state selects: extraction when
// the manifest lists tasks, then preprocessing and pretraining.
func RunManifest(ctx context.Context, m *manifest.Manifest, sources []string) error {
	if tasks := m.ExtractTasks(); len(tasks) > 0 {
		if _, err := RunExtract(ctx, tasks, sources); err != nil {
			return err
		}
	}
	if m.State.Preprocess() {
		if _, err := RunPreprocess(ctx, m); err != nil {
			return err
		}
	}
	if m.State.Pretrain() {
		if _, err := RunPretrain(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// RunStackSG gap fills a dated raster stack listed in a JSON file of
// {date, path, label} items and writes the index next to the outputs.
func RunStackSG(stackFile, refSource, outDir string, window, poly int) (preprocess.StackIndex, error) {
	r := newRun("stack-sg")
	var items []preprocess.StackItem
	if err := readJSON(stackFile, &items); err != nil {
		return nil, r.fail(err)
	}
	s := preprocess.NewStackInterpolator(items, refSource, outDir)
	if window > 0 {
		s.Window = window
	}
	if poly > 0 {
		s.Poly = poly
	}
	index, err := s.Run()
	if err != nil {
		return nil, r.fail(err)
	}
	return index, r.finish(len(items), nil, fmt.Sprintf("filled %d rasters into %s", len(items), outDir))
}
