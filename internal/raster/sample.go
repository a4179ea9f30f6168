package raster

import (
	"fmt"
	"sort"

	"github.com/airbusgeo/godal"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
)

// BandReader is the subset of godal.Band the samplers need.
type BandReader interface {
	Read(srcX, srcY int, buffer interface{}, bufWidth, bufHeight int, opts ...godal.BandIOOption) error
}

type Strategy int

const (
	// Fetch reads one pixel window per point.
	Fetch Strategy = iota
	// Strips reads every row that holds a point once.
	Strips
)

func (s Strategy) String() string {
	if s == Strips {
		return "strips"
	}
	return "fetch"
}

// ChooseStrategy picks Fetch for sparse tiles and Strips once the point
// count exceeds threshold.
func ChooseStrategy(points, threshold int) Strategy {
	if points <= threshold {
		return Fetch
	}
	return Strips
}

// Sample reads band values at the located points, in the order given.
func Sample(band BandReader, points []geo.Located, width int, strategy Strategy) ([]float64, error) {
	if strategy == Strips {
		return sampleStrips(band, points, width)
	}
	return sampleFetch(band, points)
}

func sampleFetch(band BandReader, points []geo.Located) ([]float64, error) {
	values := make([]float64, len(points))
	buf := make([]float64, 1)
	for i, p := range points {
		if err := band.Read(p.Col, p.Row, buf, 1, 1); err != nil {
			return nil, fmt.Errorf("failed to read pixel (%d, %d): %w", p.Col, p.Row, err)
		}
		values[i] = buf[0]
	}
	return values, nil
}

func sampleStrips(band BandReader, points []geo.Located, width int) ([]float64, error) {
	order := make([]int, len(points))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return points[order[a]].Row < points[order[b]].Row })

	values := make([]float64, len(points))
	row := make([]float64, width)
	current := -1
	for _, idx := range order {
		p := points[idx]
		if p.Row != current {
			if err := band.Read(0, p.Row, row, width, 1); err != nil {
				return nil, fmt.Errorf("failed to read row %d: %w", p.Row, err)
			}
			current = p.Row
		}
		values[idx] = row[p.Col]
	}
	return values, nil
}

// ReadAll reads a full band as float64 in row-major order.
func ReadAll(band BandReader, width, height int) ([]float64, error) {
	data := make([]float64, width*height)
	if err := band.Read(0, 0, data, width, height); err != nil {
		return nil, fmt.Errorf("failed to read raster data: %w", err)
	}
	return data, nil
}
