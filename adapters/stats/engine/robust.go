package engine

import (
	"math"

	"gokinetics/domain/core"
	"gokinetics/domain/kinetics"
	"gokinetics/ports"

	"github.com/montanaflynn/stats"
)

const (
	defaultRobustTrials = 100
	// madScale converts a median absolute deviation into the default
	// inlier threshold when the caller does not configure one
	madScale = 2.5
)

// FitRobust runs the iterative resampling fit: sample a random 2-point
// candidate line per trial, count inliers under the residual threshold, and
// refit ordinary least squares over the winning inlier set. Ties on inlier
// count break toward lower residual sum of squares among the inliers.
// Deterministic for a fixed opts.Rand seed.
func (e *FitEngine) FitRobust(x, y []float64, opts ports.RobustOptions) (kinetics.FitResult, error) {
	if opts.Rand == nil {
		return kinetics.FitResult{}, core.NewConfigError("robust.rand", "random source is required")
	}
	if err := checkDegenerate(x, y); err != nil {
		return kinetics.FitResult{}, err
	}

	trials := opts.Trials
	if trials <= 0 {
		trials = defaultRobustTrials
	}

	threshold := opts.ResidualThreshold
	if threshold <= 0 {
		t, err := e.defaultThreshold(x, y)
		if err != nil {
			return kinetics.FitResult{}, err
		}
		threshold = t
	}

	n := len(x)
	bestCount := 0
	bestRSS := math.Inf(1)
	var bestMask []bool

	for trial := 0; trial < trials; trial++ {
		i := opts.Rand.Intn(n)
		j := opts.Rand.Intn(n)
		if i == j || x[i] == x[j] {
			continue
		}

		slope := (y[j] - y[i]) / (x[j] - x[i])
		intercept := y[i] - slope*x[i]

		mask := make([]bool, n)
		count := 0
		rss := 0.0
		for k := 0; k < n; k++ {
			resid := y[k] - (slope*x[k] + intercept)
			if math.Abs(resid) <= threshold {
				mask[k] = true
				count++
				rss += resid * resid
			}
		}

		if count > bestCount || (count == bestCount && rss < bestRSS) {
			bestCount = count
			bestRSS = rss
			bestMask = mask
		}
	}

	if bestCount < 2 {
		return e.fallbackOrdinary(x, y)
	}

	inX := make([]float64, 0, bestCount)
	inY := make([]float64, 0, bestCount)
	for k, in := range bestMask {
		if in {
			inX = append(inX, x[k])
			inY = append(inY, y[k])
		}
	}

	refit, err := e.FitOrdinary(inX, inY)
	if err != nil {
		// Winning inlier set itself degenerate (tight threshold, flat data)
		return e.fallbackOrdinary(x, y)
	}

	refit.Method = kinetics.MethodRobust
	refit.InlierMask = bestMask
	refit.SampleSize = n
	return refit, nil
}

// fallbackOrdinary handles the robust-fit-exhausted case: no viable inlier
// set, so the engine returns the ordinary fit over all points flagged as a
// fallback rather than an error.
func (e *FitEngine) fallbackOrdinary(x, y []float64) (kinetics.FitResult, error) {
	fit, err := e.FitOrdinary(x, y)
	if err != nil {
		return kinetics.FitResult{}, err
	}
	fit.FallbackToOrdinary = true
	return fit, nil
}

// defaultThreshold derives a data-scaled inlier threshold: madScale times the
// median absolute deviation of the ordinary-fit residuals.
func (e *FitEngine) defaultThreshold(x, y []float64) (float64, error) {
	fit, err := e.FitOrdinary(x, y)
	if err != nil {
		return 0, err
	}
	resid := residuals(x, y, fit.Slope, fit.Intercept)
	abs := make([]float64, len(resid))
	for i, r := range resid {
		abs[i] = math.Abs(r)
	}
	mad, err := stats.Median(abs)
	if err != nil {
		return 0, err
	}
	if mad == 0 {
		// Perfectly linear data: any nonzero residual is an outlier
		return math.SmallestNonzeroFloat64, nil
	}
	return madScale * mad, nil
}
