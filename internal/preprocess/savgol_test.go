package preprocess

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavGolPreservesPolynomials(t *testing.T) {
	y := make([]float64, 20)
	for i := range y {
		x := float64(i)
		y[i] = 0.5*x*x - 3*x + 2
	}
	out, err := SavGol(y, 7, 2, ModeInterp)
	require.NoError(t, err)
	assert.InDeltaSlice(t, y, out, 1e-9)
}

func TestSavGolMovingAverage(t *testing.T) {
	out, err := SavGol([]float64{0, 0, 3, 0, 0}, 3, 0, ModeNearest)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 1, 1, 1, 0}, out, 1e-12)
}

func TestSavGolNearestPadsEdges(t *testing.T) {
	out, err := SavGol([]float64{1, 2, 3}, 3, 1, ModeNearest)
	require.NoError(t, err)
	// A line through (-1,1), (0,1), (1,2) is 4/3 + x/2 at 0.
	assert.InDelta(t, 4.0/3, out[0], 1e-12)
	assert.InDelta(t, 2, out[1], 1e-12)
	assert.InDelta(t, 8.0/3, out[2], 1e-12)
}

func TestSavGolErrors(t *testing.T) {
	_, err := SavGol([]float64{1, 2, 3, 4}, 4, 1, ModeInterp)
	assert.ErrorIs(t, err, ErrEvenWindow)
	_, err = SavGol([]float64{1, 2, 3, 4}, 3, 3, ModeInterp)
	assert.ErrorIs(t, err, ErrPolyOrder)
	_, err = SavGol([]float64{1, 2, 3}, 5, 1, ModeInterp)
	assert.ErrorIs(t, err, ErrWindowTooLarge)

	out, err := SavGol([]float64{1, 2, 3}, 5, 1, ModeNearest)
	require.NoError(t, err)
	assert.Len(t, out, 3)
}

func TestInterpolate(t *testing.T) {
	nan := math.NaN()
	assert.Equal(t, []float64{2, 2, 3, 4, 4}, Interpolate([]float64{nan, 2, nan, 4, nan}))
	assert.Equal(t, []float64{1, 1.5, 2, 2.5, 3}, Interpolate([]float64{1, nan, nan, nan, 3}))

	all := Interpolate([]float64{nan, nan})
	assert.True(t, math.IsNaN(all[0]) && math.IsNaN(all[1]))
}

func TestInterpAtClamps(t *testing.T) {
	xs := []float64{0, 10}
	ys := []float64{1, 3}
	assert.Equal(t, 1.0, interpAt(xs, ys, -5))
	assert.Equal(t, 2.0, interpAt(xs, ys, 5))
	assert.Equal(t, 3.0, interpAt(xs, ys, 15))
	assert.Equal(t, 3.0, interpAt(xs, ys, 10))
}
