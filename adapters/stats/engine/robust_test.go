package engine

import (
	"math/rand"
	"testing"

	"gokinetics/domain/core"
	"gokinetics/domain/kinetics"
	"gokinetics/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// outlierData builds y = 2x + 1 over n points with large spikes at the
// given indices
func outlierData(n int, outlierIdx ...int) (x, y []float64, isOutlier map[int]bool) {
	x, y = linearData(n, 2.0, 1.0)
	isOutlier = make(map[int]bool)
	for _, i := range outlierIdx {
		y[i] += 25.0
		isOutlier[i] = true
	}
	return x, y, isOutlier
}

func TestFitRobust_RecoversSlopeUnderOutliers(t *testing.T) {
	e := NewFitEngine()
	x, y, isOutlier := outlierData(20, 3, 11, 17)

	fit, err := e.FitRobust(x, y, ports.RobustOptions{
		Trials: 200,
		Rand:   rand.New(rand.NewSource(7)),
	})
	require.NoError(t, err)

	assert.Equal(t, kinetics.MethodRobust, fit.Method)
	assert.False(t, fit.FallbackToOrdinary)
	// Inliers are noiseless, so the refit over them is exact
	assert.InDelta(t, 2.0, fit.Slope, 1e-9)
	assert.InDelta(t, 1.0, fit.Intercept, 1e-9)
	assert.InDelta(t, 1.0, fit.RSquared, 1e-9)

	require.Len(t, fit.InlierMask, 20)
	for i, in := range fit.InlierMask {
		if isOutlier[i] {
			assert.False(t, in, "injected outlier at index %d should be excluded", i)
		} else {
			assert.True(t, in, "clean point at index %d should be an inlier", i)
		}
	}
	assert.Equal(t, 17, fit.InlierCount())
}

func TestFitRobust_DeterministicUnderFixedSeed(t *testing.T) {
	e := NewFitEngine()
	x, y, _ := outlierData(25, 2, 9, 14, 20)

	opts := func() ports.RobustOptions {
		return ports.RobustOptions{Trials: 100, Rand: rand.New(rand.NewSource(42))}
	}

	first, err := e.FitRobust(x, y, opts())
	require.NoError(t, err)
	second, err := e.FitRobust(x, y, opts())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFitRobust_ExplicitThreshold(t *testing.T) {
	e := NewFitEngine()
	x, y, isOutlier := outlierData(15, 4, 10)

	fit, err := e.FitRobust(x, y, ports.RobustOptions{
		Trials:            150,
		ResidualThreshold: 0.5,
		Rand:              rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)

	assert.InDelta(t, 2.0, fit.Slope, 1e-9)
	for i, in := range fit.InlierMask {
		assert.Equal(t, !isOutlier[i], in, "mask mismatch at index %d", i)
	}
}

func TestFitRobust_RequiresRandomSource(t *testing.T) {
	e := NewFitEngine()
	x, y := linearData(10, 1, 0)

	_, err := e.FitRobust(x, y, ports.RobustOptions{Trials: 50})
	require.Error(t, err)
	assert.True(t, core.IsInvalidConfig(err))
}

func TestFitRobust_DegenerateInput(t *testing.T) {
	e := NewFitEngine()

	_, err := e.FitRobust([]float64{3, 3, 3}, []float64{1, 2, 3}, ports.RobustOptions{
		Rand: rand.New(rand.NewSource(1)),
	})
	require.Error(t, err)
	assert.True(t, core.IsDegenerateFit(err))
}

func TestFitRobust_DefaultTrialCount(t *testing.T) {
	e := NewFitEngine()
	x, y, _ := outlierData(20, 5)

	// Zero trials means the engine applies its default, not a no-op loop
	fit, err := e.FitRobust(x, y, ports.RobustOptions{
		Rand: rand.New(rand.NewSource(3)),
	})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, fit.Slope, 1e-9)
}
