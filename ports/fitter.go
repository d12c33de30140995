package ports

import (
	"math/rand"

	"gokinetics/domain/kinetics"
)

// RobustOptions configures the resampling robust fit.
type RobustOptions struct {
	// Trials is the number of random minimal-subset candidates to evaluate.
	Trials int
	// ResidualThreshold is the maximum vertical residual for a point to
	// count as an inlier. Zero means derive a data-scaled default from the
	// ordinary-fit residuals.
	ResidualThreshold float64
	// Rand is the injected random source. Fixed seed gives deterministic
	// inlier selection; nil is rejected so ambient global randomness can
	// never sneak in.
	Rand *rand.Rand
}

// FitterPort is the regression engine contract: fit a line to an ordered
// collection of >= 2 (x, y) pairs and report goodness-of-fit.
type FitterPort interface {
	// FitOrdinary runs least squares through all points. Returns a
	// degenerate-fit error for < 2 distinct x-values or zero y-variance.
	FitOrdinary(x, y []float64) (kinetics.FitResult, error)

	// FitRobust runs the iterative resampling fit. If no candidate reaches
	// 2 inliers after all trials it falls back to the ordinary fit over all
	// points, marking FallbackToOrdinary on the result.
	FitRobust(x, y []float64, opts RobustOptions) (kinetics.FitResult, error)
}
