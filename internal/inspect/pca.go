// Package inspect summarizes pretrain feature matrices for visual checks.
package inspect

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PCA is a principal component projection fitted on a feature matrix.
type PCA struct {
	Mean       []float64
	Components *mat.Dense // columns x k
	Variances  []float64
}

func dense(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.New("empty feature matrix")
	}
	cols := len(rows[0])
	m := mat.NewDense(len(rows), cols, nil)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("row %d has %d values, expected %d", i, len(r), cols)
		}
		m.SetRow(i, r)
	}
	return m, nil
}

// FitPCA keeps the first k components, or fewer when the matrix has less
// rank room.
func FitPCA(features [][]float64, k int) (*PCA, error) {
	x, err := dense(features)
	if err != nil {
		return nil, err
	}
	n, d := x.Dims()
	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, errors.New("principal component analysis failed")
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	k = max(1, min(k, min(n, d)))
	_, avail := vecs.Dims()
	k = min(k, avail)

	mean := make([]float64, d)
	for j := range d {
		mean[j] = stat.Mean(mat.Col(nil, j, x), nil)
	}
	comps := mat.DenseCopyOf(vecs.Slice(0, d, 0, k))
	return &PCA{Mean: mean, Components: comps, Variances: pc.VarsTo(nil)[:k]}, nil
}

// Transform centers rows and projects them on the components.
func (p *PCA) Transform(rows [][]float64) ([][]float64, error) {
	x, err := dense(rows)
	if err != nil {
		return nil, err
	}
	n, d := x.Dims()
	if d != len(p.Mean) {
		return nil, fmt.Errorf("rows have %d columns, PCA fitted on %d", d, len(p.Mean))
	}
	for i := range n {
		for j := range d {
			x.Set(i, j, x.At(i, j)-p.Mean[j])
		}
	}
	var proj mat.Dense
	proj.Mul(x, p.Components)
	out := make([][]float64, n)
	for i := range n {
		out[i] = mat.Row(nil, i, &proj)
	}
	return out, nil
}

// ClassMean is the average curve of a random sample of one class, with the
// average of its PCA projections.
type ClassMean struct {
	Label      int64
	Count      int
	Feature    []float64
	Projection []float64
	Samples    [][]float64
}

// ClassMeans draws up to perClass rows of every label, in label order.
func ClassMeans(features [][]float64, labels []int64, perClass int, pca *PCA, rng *rand.Rand) ([]ClassMean, error) {
	if len(features) != len(labels) {
		return nil, fmt.Errorf("%d rows but %d labels", len(features), len(labels))
	}
	byLabel := map[int64][]int{}
	for i, l := range labels {
		byLabel[l] = append(byLabel[l], i)
	}
	keys := make([]int64, 0, len(byLabel))
	for l := range byLabel {
		keys = append(keys, l)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]ClassMean, 0, len(keys))
	for _, l := range keys {
		idx := byLabel[l]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		idx = idx[:min(perClass, len(idx))]
		rows := make([][]float64, len(idx))
		for i, j := range idx {
			rows[i] = features[j]
		}
		cm := ClassMean{Label: l, Count: len(rows), Feature: columnMean(rows), Samples: rows}
		if pca != nil {
			proj, err := pca.Transform(rows)
			if err != nil {
				return nil, err
			}
			cm.Projection = columnMean(proj)
		}
		out = append(out, cm)
	}
	return out, nil
}

func columnMean(rows [][]float64) []float64 {
	mean := make([]float64, len(rows[0]))
	for _, r := range rows {
		for j, v := range r {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= float64(len(rows))
	}
	return mean
}
