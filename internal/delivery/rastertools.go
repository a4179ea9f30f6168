package delivery

import (
	"fmt"
	"os"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/properties"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/rastertools"
)

// RunCount writes the pixel value histogram of a raster as CSV.
func RunCount(path, out string) ([]rastertools.PixelCount, error) {
	r := newRun("count")
	counts, err := rastertools.CountPixels(path, os.Stderr)
	if err != nil {
		return nil, r.fail(err)
	}
	if err := rastertools.WriteCounts(out, counts); err != nil {
		return nil, r.fail(err)
	}
	return counts, r.finish(1, nil, fmt.Sprintf("%d distinct values in %s written to %s", len(counts), path, out))
}

func RunMosaic(a, b, out string) error {
	r := newRun("mosaic")
	if err := rastertools.Mosaic(a, b, out); err != nil {
		return r.fail(err)
	}
	return r.finish(1, nil, fmt.Sprintf("mosaic of %s and %s written to %s", a, b, out))
}

func RunContour(path string, value, minArea float64, out string) error {
	r := newRun("contour")
	if err := rastertools.ContourFilterRaster(path, value, minArea, out); err != nil {
		return r.fail(err)
	}
	return r.finish(1, nil, fmt.Sprintf("shapes of %v with area >= %v written to %s", value, minArea, out))
}

// RunClip crops every classified tile to its WRS2 footprint.
func RunClip(shp string, tifs []string, workers int) ([]string, error) {
	r := newRun("clip")
	if shp == "" {
		shp = properties.WRSShapefile()
	}
	if workers <= 0 {
		workers = properties.ClipWorkers()
	}
	outs, err := rastertools.ClipBorders(shp, tifs, workers)
	if err != nil {
		return nil, r.fail(err)
	}
	return outs, r.finish(len(tifs), nil, fmt.Sprintf("clipped %d rasters", len(outs)))
}
