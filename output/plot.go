package output

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
)

const (
	plotWidth  = 1500
	plotHeight = 1000
	margin     = 80
)

// Curve is one line of a chart. NaN values leave gaps.
type Curve struct {
	Values []float64
	R, G, B float64
}

var (
	purple = Curve{R: 0.58, G: 0.40, B: 0.74}
	olive  = Curve{R: 0.74, G: 0.74, B: 0.13}
	cyan   = Curve{R: 0.09, G: 0.75, B: 0.81}
)

func bounds(curves []Curve) (lo, hi float64, n int) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, c := range curves {
		n = max(n, len(c.Values))
		for _, v := range c.Values {
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 1, n
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	return lo, hi, n
}

// drawChart renders the curves against their index with labelled axes and
// saves a PNG.
func drawChart(path, title, xLabel, yLabel string, curves []Curve) error {
	lo, hi, n := bounds(curves)
	if n == 0 {
		return errors.New("nothing to plot")
	}
	dc := gg.NewContext(plotWidth, plotHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	w := float64(plotWidth - 2*margin)
	h := float64(plotHeight - 2*margin)
	x := func(i int) float64 { return margin + w*float64(i)/math.Max(1, float64(n-1)) }
	y := func(v float64) float64 { return margin + h*(hi-v)/(hi-lo) }

	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1)
	dc.DrawLine(margin, margin+h, margin+w, margin+h)
	dc.DrawLine(margin, margin, margin, margin+h)
	dc.Stroke()
	dc.DrawStringAnchored(title, plotWidth/2, margin/2, 0.5, 0.5)
	dc.DrawStringAnchored(xLabel, plotWidth/2, plotHeight-margin/3, 0.5, 0.5)
	dc.DrawStringAnchored(yLabel, margin/4, plotHeight/2, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.3g", hi), margin-5, margin, 1, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.3g", lo), margin-5, margin+h, 1, 0.5)
	dc.DrawStringAnchored(fmt.Sprint(n-1), margin+w, margin+h+15, 0.5, 0.5)

	dc.SetLineWidth(3)
	for _, c := range curves {
		dc.SetRGB(c.R, c.G, c.B)
		drawing := false
		for i, v := range c.Values {
			if math.IsNaN(v) {
				if drawing {
					dc.Stroke()
				}
				drawing = false
				continue
			}
			if !drawing {
				dc.MoveTo(x(i), y(v))
				drawing = true
				continue
			}
			dc.LineTo(x(i), y(v))
		}
		if drawing {
			dc.Stroke()
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create plot directory: %w", err)
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// PlotSeries draws the selected feature rows against their day index.
func PlotSeries(features [][]float64, idx []int, title, path string) error {
	curves := make([]Curve, 0, len(idx))
	for _, i := range idx {
		if i < 0 || i >= len(features) {
			return fmt.Errorf("row %d out of range [0, %d)", i, len(features))
		}
		c := cyan
		c.Values = features[i]
		curves = append(curves, c)
	}
	return drawChart(path, title, "Day", "Reflectance Value", curves)
}

// PlotPCACompare draws a feature curve with its PCA projection, padded with
// NaN to the feature length.
func PlotPCACompare(feature, projection []float64, title, path string) error {
	padded := make([]float64, len(feature))
	for i := range padded {
		padded[i] = math.NaN()
	}
	copy(padded, projection)
	f, p := purple, olive
	f.Values, p.Values = feature, padded
	return drawChart(path, title, "Days", "Reflectance Value", []Curve{f, p})
}

// PlotBandDifference draws the mean curves of one band for two sample sets,
// the first in cyan and the second in purple.
func PlotBandDifference(band, nameA, nameB string, a, b []float64, path string) error {
	ca, cb := cyan, purple
	ca.Values, cb.Values = a, b
	title := fmt.Sprintf("%s: %s (cyan) vs %s (purple)", band, nameA, nameB)
	return drawChart(path, title, "Observation", "Reflectance Value", []Curve{ca, cb})
}
