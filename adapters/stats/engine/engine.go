package engine

import (
	"math"

	"gokinetics/domain/core"
	"gokinetics/domain/kinetics"
	"gokinetics/ports"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// FitEngine implements the regression engine over (x, y) samples
type FitEngine struct{}

// NewFitEngine creates a new fit engine
func NewFitEngine() *FitEngine {
	return &FitEngine{}
}

var _ ports.FitterPort = (*FitEngine)(nil)

// FitOrdinary runs least squares through all points and reports R² and the
// two-tailed slope p-value. Degenerate inputs (< 2 distinct x-values, zero
// y-variance) are reported as errors, never as a division by zero.
func (e *FitEngine) FitOrdinary(x, y []float64) (kinetics.FitResult, error) {
	if err := checkDegenerate(x, y); err != nil {
		return kinetics.FitResult{}, err
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)
	r2 := stat.RSquared(x, y, nil, intercept, slope)

	// Floating point can nudge R² just past 1 on near-exact data
	if r2 > 1 {
		r2 = 1
	}
	if r2 < 0 {
		r2 = 0
	}

	return kinetics.FitResult{
		Slope:      slope,
		Intercept:  intercept,
		RSquared:   r2,
		PValue:     slopePValue(x, y, slope, intercept),
		Method:     kinetics.MethodOrdinary,
		SampleSize: len(x),
	}, nil
}

// checkDegenerate enforces the minimum-data contract for a line fit
func checkDegenerate(x, y []float64) error {
	if len(x) != len(y) || len(x) < 2 {
		return core.ErrTooFewPoints
	}
	distinct := false
	for i := 1; i < len(x); i++ {
		if x[i] != x[0] {
			distinct = true
			break
		}
	}
	if !distinct {
		return core.ErrTooFewPoints
	}
	varied := false
	for i := 1; i < len(y); i++ {
		if y[i] != y[0] {
			varied = true
			break
		}
	}
	if !varied {
		return core.ErrZeroVariance
	}
	return nil
}

// slopePValue computes the two-tailed significance of the slope using the
// t-distribution with n-2 degrees of freedom. Perfect fits and n=2 collapse
// to p=0 (the line is exactly determined).
func slopePValue(x, y []float64, slope, intercept float64) float64 {
	n := len(x)
	if n <= 2 {
		return 0
	}

	meanX := stat.Mean(x, nil)
	rss := 0.0
	sxx := 0.0
	for i := range x {
		resid := y[i] - (slope*x[i] + intercept)
		rss += resid * resid
		dx := x[i] - meanX
		sxx += dx * dx
	}
	if rss == 0 || sxx == 0 {
		return 0
	}

	se := math.Sqrt(rss / float64(n-2) / sxx)
	t := math.Abs(slope / se)

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	p := 2 * (1 - dist.CDF(t))
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p
}

// residuals returns vertical residuals of y against the line (slope, intercept)
func residuals(x, y []float64, slope, intercept float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = y[i] - (slope*x[i] + intercept)
	}
	return out
}
