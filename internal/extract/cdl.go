package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/catalog"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/raster"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/series"
)

// CropIndex maps a CDL class code to its crop name.
type CropIndex map[string]string

func LoadCropIndex(path string) (CropIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read crop index: %w", err)
	}
	var idx CropIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to decode crop index: %w", err)
	}
	return idx, nil
}

func (c CropIndex) Name(code int) string {
	if name, ok := c[strconv.Itoa(code)]; ok {
		return name
	}
	return "Unknown"
}

// CDL labels points with the Cropland Data Layer class of each year.
type CDL struct {
	Root  string
	Files []string
	Index CropIndex
}

func (c *CDL) Extract(ctx context.Context, points []geo.LatLon, start, end string) (series.Labels, error) {
	if len(start) < 4 || len(end) < 4 {
		return nil, fmt.Errorf("invalid period %s-%s", start, end)
	}
	first, err := strconv.Atoi(start[:4])
	if err != nil {
		return nil, fmt.Errorf("invalid start %q: %w", start, err)
	}
	last, err := strconv.Atoi(end[:4])
	if err != nil {
		return nil, fmt.Errorf("invalid end %q: %w", end, err)
	}

	labels := series.Labels{}
	for year := first; year <= last; year++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry, ok := catalog.CDLFile(c.Files, year)
		if !ok {
			logrus.Warnf("no CDL raster for %d", year)
			continue
		}
		path := catalog.Resolve(c.Root, entry)
		if err := c.year(labels, path, year, points); err != nil {
			return nil, fmt.Errorf("CDL %d: %w", year, err)
		}
	}
	return labels, nil
}

func (c *CDL) year(labels series.Labels, path string, year int, points []geo.LatLon) error {
	ds, err := raster.Open(path)
	if err != nil {
		return err
	}
	defer ds.Close()
	info, err := raster.ReadInfo(ds)
	if err != nil {
		return err
	}
	proj, err := geo.NewProjectorFromWKT(info.Projection)
	if err != nil {
		return err
	}
	defer proj.Close()
	xs, ys, err := proj.ToRaster(points)
	if err != nil {
		return err
	}

	located := make([]geo.Located, 0, len(points))
	for i, p := range points {
		col, row, err := info.GeoTransform.Pixel(xs[i], ys[i])
		if err != nil {
			return err
		}
		if col < 0 || row < 0 || col >= info.Width || row >= info.Height {
			continue
		}
		located = append(located, geo.Located{Key: p.Key(), Col: col, Row: row})
	}
	codes, err := raster.Sample(ds.Bands()[0], located, info.Width, raster.Fetch)
	if err != nil {
		return err
	}
	for i, p := range located {
		code := int(codes[i])
		labels[p.Key] = append(labels[p.Key], series.CropLabel{Year: year, Code: code, Name: c.Index.Name(code)})
	}
	return nil
}
