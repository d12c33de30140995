package testkit

import (
	"math"
	"testing"

	"gokinetics/adapters/rng"
	"gokinetics/domain/kinetics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_CleanTraceFollowsRateLaw(t *testing.T) {
	gen := NewTraceGenerator(rng.NewSeededRNG().SeededStream("gen", 7))

	spec := DefaultTraceSpec("run_298K.csv", 298)
	run, err := gen.Generate(spec)
	require.NoError(t, err)

	assert.Equal(t, spec.Points, len(run.Samples))
	assert.Equal(t, 298.0, run.Metadata.TemperatureK)

	// Without noise the absorbance decays exactly linearly
	c0 := spec.InitialAbsorbance / (spec.Epsilon * spec.PathLengthCm)
	for _, s := range run.Samples {
		want := (c0 - spec.Rate*s.TimeS) * spec.Epsilon * spec.PathLengthCm
		assert.InDelta(t, want, s.Absorbance, 1e-12)
	}
}

func TestGenerate_DelayHoldsInitialAbsorbance(t *testing.T) {
	gen := NewTraceGenerator(rng.NewSeededRNG().SeededStream("gen", 7))

	spec := DefaultTraceSpec("run_298K.csv", 298)
	spec.DelayS = 100
	run, err := gen.Generate(spec)
	require.NoError(t, err)

	for _, s := range run.Samples {
		if s.TimeS < spec.DelayS {
			assert.InDelta(t, spec.InitialAbsorbance, s.Absorbance, 1e-12)
		}
	}
	last := run.Samples[len(run.Samples)-1]
	assert.Less(t, last.Absorbance, spec.InitialAbsorbance)
}

func TestGenerate_ConcentrationNeverGoesNegative(t *testing.T) {
	gen := NewTraceGenerator(rng.NewSeededRNG().SeededStream("gen", 7))

	spec := DefaultTraceSpec("run_298K.csv", 298)
	spec.Rate = 1.0 // absurdly fast, exhausts iodine immediately
	run, err := gen.Generate(spec)
	require.NoError(t, err)

	for _, s := range run.Samples {
		assert.GreaterOrEqual(t, s.Absorbance, 0.0)
	}
}

func TestGenerate_RejectsDegeneratePointCount(t *testing.T) {
	gen := NewTraceGenerator(rng.NewSeededRNG().SeededStream("gen", 7))

	for _, points := range []int{-1, 0, 1} {
		spec := DefaultTraceSpec("run_298K.csv", 298)
		spec.Points = points
		_, err := gen.Generate(spec)
		assert.Error(t, err, "points=%d", points)
	}
}

func TestGenerate_DeterministicForFixedSeed(t *testing.T) {
	spec := DefaultTraceSpec("run_298K.csv", 298)
	spec.NoiseStd = 0.005
	spec.OutlierProb = 0.1

	first, err := NewTraceGenerator(rng.NewSeededRNG().SeededStream("gen", 7)).Generate(spec)
	require.NoError(t, err)
	second, err := NewTraceGenerator(rng.NewSeededRNG().SeededStream("gen", 7)).Generate(spec)
	require.NoError(t, err)

	assert.Equal(t, first.Samples, second.Samples)

	// A different seed must not reproduce the same noise
	third, err := NewTraceGenerator(rng.NewSeededRNG().SeededStream("gen", 8)).Generate(spec)
	require.NoError(t, err)
	assert.NotEqual(t, first.Samples, third.Samples)
}

func TestGenerateArrheniusSet_RatesFollowArrheniusLaw(t *testing.T) {
	gen := NewTraceGenerator(rng.NewSeededRNG().SeededStream("gen", 7))

	const ea = 72000.0
	const a = 9.0e5
	temps := []float64{288, 298, 308}

	runs, err := gen.GenerateArrheniusSet(ea, a, temps, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	for i, run := range runs {
		assert.Equal(t, temps[i], run.Metadata.TemperatureK)

		wantRate := a * math.Exp(-ea/(kinetics.GasConstant*temps[i]))
		dt := run.Samples[1].TimeS - run.Samples[0].TimeS
		dAbs := run.Samples[0].Absorbance - run.Samples[1].Absorbance
		gotRate := dAbs / dt / (900 * 1.0)
		assert.InEpsilon(t, wantRate, gotRate, 1e-9)
	}
}
