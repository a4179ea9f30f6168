// Package extract samples per-point time series from the imagery archive.
//
// Each program (Landsat, Sentinel, MODIS) implements TileExtractor and is
// run tile by tile on a worker pool. Precipitation and CDL are global and
// are extracted for a flat list of points.
package extract

import (
	"context"
	"math"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/series"
)

const (
	SourceLandsat  = "landsat"
	SourceSentinel = "sentinel"
	SourceModis    = "modis"
	SourcePrecip   = "precip"
)

// TileExtractor samples every point of one tile over [start, end].
type TileExtractor interface {
	Source() string
	ExtractTile(ctx context.Context, tile string, points []geo.LatLon, start, end string) (series.Results, error)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
