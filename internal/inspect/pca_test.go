package inspect

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Points on the line y = 2x spread along one direction.
var line = [][]float64{{-2, -4}, {-1, -2}, {0, 0}, {1, 2}, {2, 4}}

func TestFitPCAFindsMainAxis(t *testing.T) {
	p, err := FitPCA(line, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, p.Mean)

	r, c := p.Components.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 1, c)
	ratio := p.Components.At(1, 0) / p.Components.At(0, 0)
	assert.InDelta(t, 2, ratio, 1e-9)

	proj, err := p.Transform([][]float64{{1, 2}})
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(5), math.Abs(proj[0][0]), 1e-9)
}

func TestFitPCAClampsComponents(t *testing.T) {
	p, err := FitPCA(line, 300)
	require.NoError(t, err)
	_, c := p.Components.Dims()
	assert.Equal(t, 2, c)
	assert.Len(t, p.Variances, 2)
}

func TestTransformRejectsWrongWidth(t *testing.T) {
	p, err := FitPCA(line, 1)
	require.NoError(t, err)
	_, err = p.Transform([][]float64{{1, 2, 3}})
	assert.Error(t, err)
}

func TestClassMeans(t *testing.T) {
	features := [][]float64{{1, 1}, {3, 3}, {10, 0}, {0, 10}, {5, 5}}
	labels := []int64{2, 2, 0, 0, 0}
	p, err := FitPCA(features, 1)
	require.NoError(t, err)

	means, err := ClassMeans(features, labels, 10, p, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	require.Len(t, means, 2)
	assert.Equal(t, int64(0), means[0].Label)
	assert.Equal(t, 3, means[0].Count)
	assert.InDeltaSlice(t, []float64{5, 5}, means[0].Feature, 1e-9)
	assert.InDeltaSlice(t, []float64{2, 2}, means[1].Feature, 1e-9)
	assert.Len(t, means[1].Projection, 1)

	capped, err := ClassMeans(features, labels, 1, nil, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	assert.Equal(t, 1, capped[0].Count)
	assert.Nil(t, capped[0].Projection)
}
