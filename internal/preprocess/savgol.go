package preprocess

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Mode selects how SavGol treats the series edges.
type Mode int

const (
	// ModeInterp fits a polynomial to the first and last window and
	// evaluates it at the edge samples.
	ModeInterp Mode = iota
	// ModeNearest pads the series with its edge values.
	ModeNearest
)

func (m Mode) String() string {
	if m == ModeNearest {
		return "nearest"
	}
	return "interp"
}

var (
	ErrEvenWindow     = errors.New("savgol window must be odd")
	ErrPolyOrder      = errors.New("savgol polyorder must be less than window")
	ErrWindowTooLarge = errors.New("savgol window larger than series")
)

// savgolProjection returns the least squares projection (AᵀA)⁻¹Aᵀ of the
// Vandermonde matrix over x = -half..half. Row k gives the coefficients of
// xᵏ for a window of samples.
func savgolProjection(window, poly int) (*mat.Dense, error) {
	half := window / 2
	a := mat.NewDense(window, poly+1, nil)
	for i := 0; i < window; i++ {
		x := float64(i - half)
		v := 1.0
		for k := 0; k <= poly; k++ {
			a.Set(i, k, v)
			v *= x
		}
	}
	var ata mat.Dense
	ata.Mul(a.T(), a)
	var inv mat.Dense
	if err := inv.Inverse(&ata); err != nil {
		return nil, fmt.Errorf("savgol normal matrix: %w", err)
	}
	var p mat.Dense
	p.Mul(&inv, a.T())
	return &p, nil
}

func checkWindow(window, poly int) error {
	if window <= 0 || window%2 == 0 {
		return fmt.Errorf("%w: %d", ErrEvenWindow, window)
	}
	if poly < 0 || poly >= window {
		return fmt.Errorf("%w: poly %d, window %d", ErrPolyOrder, poly, window)
	}
	return nil
}

// SavGol smooths y with a Savitzky-Golay filter.
func SavGol(y []float64, window, poly int, mode Mode) ([]float64, error) {
	if err := checkWindow(window, poly); err != nil {
		return nil, err
	}
	n := len(y)
	if n == 0 {
		return []float64{}, nil
	}
	if mode == ModeInterp && window > n {
		return nil, fmt.Errorf("%w: window %d, length %d", ErrWindowTooLarge, window, n)
	}
	p, err := savgolProjection(window, poly)
	if err != nil {
		return nil, err
	}
	half := window / 2
	center := p.RawRowView(0)

	at := func(i int) float64 {
		if i < 0 {
			return y[0]
		}
		if i >= n {
			return y[n-1]
		}
		return y[i]
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		s := 0.0
		for j := -half; j <= half; j++ {
			s += center[j+half] * at(i+j)
		}
		out[i] = s
	}
	if mode == ModeNearest {
		return out, nil
	}

	fitEdge(p, y[:window], out[:half], -half)
	fitEdge(p, y[n-window:], out[n-half:], 1)
	return out, nil
}

// fitEdge fits the window polynomial and evaluates it at x = from,
// from+1, ... into dst.
func fitEdge(p *mat.Dense, window []float64, dst []float64, from int) {
	var c mat.VecDense
	c.MulVec(p, mat.NewVecDense(len(window), append([]float64(nil), window...)))
	for i := range dst {
		x := float64(from + i)
		v, pow := 0.0, 1.0
		for k := 0; k < c.Len(); k++ {
			v += c.AtVec(k) * pow
			pow *= x
		}
		dst[i] = v
	}
}
