package analysis

import (
	"fmt"
	"math"

	"reactorviz/domain/core"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Fit is a first-degree polynomial y = Slope*x + Intercept. StdErr and
// PValue test the slope against zero and need at least three points.
type Fit struct {
	Slope     float64  `json:"slope"`
	Intercept float64  `json:"intercept"`
	N         int      `json:"n"`
	StdErr    *float64 `json:"std_err,omitempty"`
	PValue    *float64 `json:"p_value,omitempty"`
}

// At evaluates the fitted line.
func (f Fit) At(x float64) float64 {
	return f.Slope*x + f.Intercept
}

// LinearFit is the least-squares line through (xs, ys).
func LinearFit(xs, ys []float64) (Fit, error) {
	if len(xs) != len(ys) {
		return Fit{}, fmt.Errorf("linear fit: %d x values but %d y values", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return Fit{}, fmt.Errorf("%w: linear fit needs two points, got %d", core.ErrInsufficientData, len(xs))
	}
	if stat.Variance(xs, nil) == 0 {
		return Fit{}, fmt.Errorf("%w: x values have no spread", core.ErrInsufficientData)
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		return Fit{}, fmt.Errorf("%w: regression did not converge", core.ErrInsufficientData)
	}
	fit := Fit{Slope: beta, Intercept: alpha, N: len(xs)}
	fit.significance(xs, ys)
	return fit, nil
}

// significance runs a two-sided t-test on the slope with n-2 degrees of
// freedom.
func (f *Fit) significance(xs, ys []float64) {
	df := float64(len(xs) - 2)
	if df < 1 {
		return
	}

	mean := stat.Mean(xs, nil)
	var rss, sxx float64
	for i, x := range xs {
		r := ys[i] - f.At(x)
		rss += r * r
		sxx += (x - mean) * (x - mean)
	}
	se := math.Sqrt(rss / df / sxx)

	var p float64
	switch {
	case se > 0:
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		p = 2 * t.CDF(-math.Abs(f.Slope/se))
	case f.Slope == 0:
		p = 1
	}
	f.StdErr = &se
	f.PValue = &p
}

// Segment is a line between two points.
type Segment struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// RegressionLine fits xs/ys and evaluates the line at the extremes of xs.
func RegressionLine(xs, ys []float64) (Segment, Fit, error) {
	fit, err := LinearFit(xs, ys)
	if err != nil {
		return Segment{}, Fit{}, err
	}
	lo, hi := floats.Min(xs), floats.Max(xs)
	return Segment{X0: lo, Y0: fit.At(lo), X1: hi, Y1: fit.At(hi)}, fit, nil
}

// CeilTo rounds v up to the next multiple of step.
func CeilTo(v, step float64) float64 {
	return math.Ceil(v/step) * step
}
