package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/delivery"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/extract"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/properties"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/tiles"
)

func ExtractPoints() {
	PrintWarning(fmt.Sprintf("Points files are read from %s and results written to %s", properties.SamplePointsPath(), properties.ExtractedPath()))
	names := ReadList("Enter the points file names: ")
	if len(names) == 0 {
		PrintError("no points file given")
		return
	}
	start, err := ReadDate("Enter the start date (YYYYMMDD): ")
	if err != nil {
		PrintError(err.Error())
		return
	}
	end, err := ReadDate("Enter the end date (YYYYMMDD): ")
	if err != nil {
		PrintError(err.Error())
		return
	}
	tasks := make([]extract.Task, len(names))
	for i, n := range names {
		tasks[i] = extract.Task{PointsFile: filepath.Join(properties.SamplePointsPath(), n), Start: start, End: end}
	}
	summaries, err := delivery.RunExtract(context.Background(), tasks, properties.Sources())
	if err != nil {
		PrintError(err.Error())
		return
	}
	for _, s := range summaries {
		PrintSuccess(fmt.Sprintf("%s: %d points in %d files", s.Task, s.Points, len(s.Files)))
	}
}

func RunManifest() {
	path := ReadString("Enter the manifest path (empty for defaults): ")
	m, err := delivery.LoadManifest(path)
	if err != nil {
		PrintError(err.Error())
		return
	}
	PrintInfo(fmt.Sprintf("Running %s\n", m.State))
	if err := delivery.RunManifest(context.Background(), m, properties.Sources()); err != nil {
		PrintError(err.Error())
		return
	}
	PrintSuccess("Manifest completed successfully!")
}

func SamplePoints() {
	req := delivery.SampleRequest{}
	var err error
	if req.Year, err = ReadInt("Enter the year: ", 1980, 2100); err != nil {
		PrintError(err.Error())
		return
	}
	req.Crop = ReadString("Enter the crop (Corn, Cotton, Rice, Soybeans, Peanuts): ")
	req.Region = ReadString("Enter the region name: ")
	req.Label = ReadString("Enter the label raster path (empty when tile rasters are labels): ")

	req.Tiles = map[string]string{}
	for _, path := range ReadList("Enter the tile raster paths: ") {
		tile, err := tiles.TileFromName(path)
		if err != nil {
			PrintError(err.Error())
			return
		}
		req.Tiles[tile] = path
	}
	if req.N, err = ReadIntDefault("Enter the points per tile", 1000); err != nil {
		PrintError(err.Error())
		return
	}
	path, err := delivery.RunSample(context.Background(), req)
	if err != nil {
		PrintError(err.Error())
		return
	}
	PrintSuccess("Sample points saved to " + path)
}

func GroupPoints() {
	in := ReadString("Enter the points file (csv, shp or geojson): ")
	out := filepath.Join(properties.SamplePointsPath(), strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))+"_sample_points.json")
	groups, err := delivery.RunGroup(in, out)
	if err != nil {
		PrintError(err.Error())
		return
	}
	PrintSuccess(fmt.Sprintf("%d grouped points saved to %s", groups.Count(), out))
}

func CountPixels() {
	path := ReadString("Enter the raster path: ")
	out := strings.TrimSuffix(path, filepath.Ext(path)) + "_count.csv"
	counts, err := delivery.RunCount(path, out)
	if err != nil {
		PrintError(err.Error())
		return
	}
	for _, c := range counts {
		PrintInfo(fmt.Sprintf("%s: %d\n", c.Value, c.Count))
	}
	PrintSuccess("Counts saved to " + out)
}

func MapDistribution() {
	files := ReadList("Enter the sample points files: ")
	name := ReadString("Enter the output name: ")
	if len(files) == 0 || name == "" {
		PrintError("points files and output name cannot be empty")
		return
	}
	shp, err := delivery.RunDistribution(files, filepath.Join(properties.ResultPath(), name))
	if err != nil {
		PrintError(err.Error())
		return
	}
	PrintSuccess("Distribution saved to " + shp)
}

func InspectArchive() {
	npz := ReadString("Enter the pretrain archive path: ")
	outDir := filepath.Join(properties.ResultPath(), strings.TrimSuffix(filepath.Base(npz), ".npz"))

	rows, err := parseInts(ReadList("Enter the rows to plot (empty to skip): "))
	if err != nil {
		PrintError(err.Error())
		return
	}
	if len(rows) > 0 {
		if err := delivery.RunPlot(npz, rows, filepath.Join(outDir, "rows.png")); err != nil {
			PrintError(err.Error())
			return
		}
	}
	k, err := ReadIntDefault("Enter the PCA components", 10)
	if err != nil {
		PrintError(err.Error())
		return
	}
	perClass, err := ReadIntDefault("Enter the samples per class", 100)
	if err != nil {
		PrintError(err.Error())
		return
	}
	if _, err := delivery.RunPCA(npz, k, perClass, 0, outDir); err != nil {
		PrintError(err.Error())
		return
	}
	PrintSuccess("Plots saved to " + outDir)
}

func ClassifyArchive() {
	npz := ReadString("Enter the pretrain archive path: ")
	out := filepath.Join(properties.ResultPath(), strings.TrimSuffix(filepath.Base(npz), ".npz")+"_predictions.csv")
	accuracy, err := delivery.RunClassify(context.Background(), npz, "", out)
	if err != nil {
		PrintError(err.Error())
		return
	}
	PrintSuccess(fmt.Sprintf("Accuracy: %.2f%%, predictions saved to %s", 100*accuracy, out))
}
