package delivery

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/extract"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/inspect"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/ml"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/pretrain"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/properties"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/series"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/tiles"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/output"
)

const (
	distributionWidth  = 1200
	distributionHeight = 900
)

// RunDistribution maps the sample points files as one shapefile, a
// GeoJSON copy and a PNG colored by crop. Crops are read from the file
// names. It returns the shapefile path.
func RunDistribution(pointsFiles []string, outBase string) (string, error) {
	r := newRun("distribution")
	byCrop := map[string][]geo.LatLon{}
	all := []geo.LatLon{}
	failures := []error{}
	for _, f := range pointsFiles {
		_, crop, err := extract.ParseTaskName(f)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		groups, err := tiles.LoadGroups(f)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		points := groups.LandsatPoints()
		byCrop[crop] = append(byCrop[crop], points...)
		all = append(all, points...)
	}
	if len(all) == 0 {
		return "", r.fail(errors.Join(append(failures, fmt.Errorf("no points in %d files", len(pointsFiles)))...))
	}

	shp := outBase + ".shp"
	geojsonPath, err := output.SaveDistribution(all, shp)
	if err != nil {
		return "", r.fail(err)
	}
	png := outBase + ".png"
	if err := output.DistributionImage(byCrop, distributionWidth, distributionHeight, png); err != nil {
		return "", r.fail(err)
	}
	return shp, r.finish(len(pointsFiles), failures,
		fmt.Sprintf("%d points of %d crops written to %s, %s and %s", len(all), len(byCrop), shp, geojsonPath, png))
}

// RunPlot charts rows of a pretrain archive.
func RunPlot(npzPath string, rows []int, out string) error {
	r := newRun("plot")
	b, err := pretrain.ReadNPZ(npzPath)
	if err != nil {
		return r.fail(err)
	}
	title := strings.TrimSuffix(filepath.Base(npzPath), ".npz")
	if err := output.PlotSeries(b.Features, rows, title, out); err != nil {
		return r.fail(err)
	}
	return r.finish(1, nil, fmt.Sprintf("%d rows of %s plotted to %s", len(rows), title, out))
}

// RunPCA fits a PCA on a pretrain archive and plots, per class, the mean
// curve of a random sample against its mean projection.
func RunPCA(npzPath string, k, perClass int, seed int64, outDir string) ([]inspect.ClassMean, error) {
	r := newRun("pca")
	b, err := pretrain.ReadNPZ(npzPath)
	if err != nil {
		return nil, r.fail(err)
	}
	pca, err := inspect.FitPCA(b.Features, k)
	if err != nil {
		return nil, r.fail(err)
	}
	means, err := inspect.ClassMeans(b.Features, b.Labels, perClass, pca, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, r.fail(err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, r.fail(err)
	}

	failures := []error{}
	for _, m := range means {
		title := fmt.Sprintf("class %d (%d samples)", m.Label, m.Count)
		path := filepath.Join(outDir, fmt.Sprintf("pca_class_%d.png", m.Label))
		if err := output.PlotPCACompare(m.Feature, m.Projection, title, path); err != nil {
			failures = append(failures, fmt.Errorf("class %d: %w", m.Label, err))
		}
	}
	summary := fmt.Sprintf("%d classes plotted to %s with %d components (variances %.4g)",
		len(means), outDir, len(pca.Variances), pca.Variances)
	return means, r.finish(len(means), failures, summary)
}

// RunBandDiff plots, band by band, the mean curves of two extracted result
// files into outDir and returns the written charts.
func RunBandDiff(fileA, fileB string, bands []string, outDir string) ([]string, error) {
	r := newRun("band-diff")
	a, err := series.LoadEntries(fileA)
	if err != nil {
		return nil, r.fail(err)
	}
	b, err := series.LoadEntries(fileB)
	if err != nil {
		return nil, r.fail(err)
	}
	nameA := strings.TrimSuffix(filepath.Base(fileA), filepath.Ext(fileA))
	nameB := strings.TrimSuffix(filepath.Base(fileB), filepath.Ext(fileB))

	charts := []string{}
	failures := []error{}
	for _, band := range bands {
		meanA, err := inspect.BandMean(a, band)
		if err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", nameA, err))
			continue
		}
		meanB, err := inspect.BandMean(b, band)
		if err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", nameB, err))
			continue
		}
		path := filepath.Join(outDir, band+"_diff.png")
		if err := output.PlotBandDifference(band, nameA, nameB, meanA, meanB, path); err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", band, err))
			continue
		}
		charts = append(charts, path)
	}
	return charts, r.finish(len(bands), failures, fmt.Sprintf("%d band charts written to %s", len(charts), outDir))
}

// ClassifiedRow is one prediction written by RunClassify.
type ClassifiedRow struct {
	Row         int     `csv:"row"`
	Label       int64   `csv:"label"`
	Predicted   int     `csv:"predicted"`
	Probability float64 `csv:"probability"`
}

// RunClassify sends the features of a pretrain archive to the classifier
// and writes the predictions next to the known labels. It returns the
// share of rows predicted correctly.
func RunClassify(ctx context.Context, npzPath, addr, out string) (float64, error) {
	r := newRun("classify")
	if addr == "" {
		addr = properties.ClassifierAddr()
	}
	b, err := pretrain.ReadNPZ(npzPath)
	if err != nil {
		return 0, r.fail(err)
	}
	preds, err := ml.Classify(ctx, addr, b.Features)
	if err != nil {
		return 0, r.fail(err)
	}

	rows := make([]*ClassifiedRow, len(preds))
	correct := 0
	for i, p := range preds {
		rows[i] = &ClassifiedRow{Row: i, Label: b.Labels[i], Predicted: p.Label, Probability: p.Probability}
		if int64(p.Label) == b.Labels[i] {
			correct++
		}
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return 0, r.fail(err)
	}
	f, err := os.Create(out)
	if err != nil {
		return 0, r.fail(err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return 0, r.fail(err)
	}

	accuracy := 0.0
	if len(rows) > 0 {
		accuracy = float64(correct) / float64(len(rows))
	}
	return accuracy, r.finish(1, nil, fmt.Sprintf("%d rows classified, accuracy %.2f%%, written to %s", len(rows), 100*accuracy, out))
}
