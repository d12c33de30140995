package app

import (
	"testing"

	"gokinetics/adapters/rng"
	"gokinetics/adapters/stats/engine"
	"gokinetics/domain/kinetics"
	"gokinetics/internal"
	"gokinetics/internal/config"
	apperrors "gokinetics/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRateService() *RateService {
	return NewRateService(
		engine.NewFitEngine(),
		rng.NewSeededRNG(),
		internal.NewLogger(internal.LogLevelError),
	)
}

// cleanTrace builds a noiseless decay at the given rate (M/s) using the
// experiment's Beer-Lambert constants, with optional absorbance spikes
func cleanTrace(t *testing.T, exp config.ExperimentConfig, rate float64, spikes map[int]float64) kinetics.Run {
	t.Helper()
	const points = 30
	const dt = 20.0

	c0 := 2.0 / (exp.Parameters.ExtinctionCoefficient * exp.Parameters.PathLengthCm)
	samples := make([]kinetics.RawSample, points)
	for i := range samples {
		tm := float64(i) * dt
		conc := c0 - rate*tm
		abs := conc * exp.Parameters.ExtinctionCoefficient * exp.Parameters.PathLengthCm
		abs += spikes[i]
		samples[i] = kinetics.RawSample{TimeS: tm, Absorbance: abs}
	}

	run, err := kinetics.NewRun(kinetics.RunMetadata{TemperatureK: 298, Label: "run_298K.csv"}, samples)
	require.NoError(t, err)
	return run
}

func TestExtractRate_AcceptsOrdinaryFitOnCleanData(t *testing.T) {
	svc := newRateService()
	exp := config.DefaultExperiment()
	run := cleanTrace(t, exp, 2e-6, nil)

	result, err := svc.ExtractRate(run, exp)
	require.NoError(t, err)

	assert.Equal(t, kinetics.MethodOrdinary, result.Fit.Method)
	assert.InDelta(t, 1.0, result.Fit.RSquared, 1e-9)
	assert.InEpsilon(t, 2e-6, result.KObs, 1e-9)
	assert.Empty(t, result.Flags)

	// Cl- has unity salt factor: intrinsic equals observed
	assert.Equal(t, result.KObs, result.KIntrinsic)
	assert.Equal(t, 1.0, result.SaltFactor)
}

func TestExtractRate_RefitsRobustlyBelowThreshold(t *testing.T) {
	svc := newRateService()
	exp := config.DefaultExperiment()
	spikes := map[int]float64{4: 0.4, 13: -0.35, 22: 0.45}
	run := cleanTrace(t, exp, 2e-6, spikes)

	result, err := svc.ExtractRate(run, exp)
	require.NoError(t, err)

	assert.Equal(t, kinetics.MethodRobust, result.Fit.Method)
	assert.True(t, result.Flagged(kinetics.FlagRobustRefit))
	assert.False(t, result.Flagged(kinetics.FlagRobustFallback))

	// Robust refit over the clean points recovers the true rate
	assert.InEpsilon(t, 2e-6, result.KObs, 1e-6)
	require.Len(t, result.Fit.InlierMask, len(run.Samples))
	for i := range spikes {
		assert.False(t, result.Fit.InlierMask[i], "spiked sample %d should be excluded", i)
	}
}

func TestExtractRate_RateIsNonNegativeForRisingSignal(t *testing.T) {
	svc := newRateService()
	exp := config.DefaultExperiment()

	// Negative "rate" makes absorbance grow; k_obs is still the magnitude
	run := cleanTrace(t, exp, -1e-6, nil)

	result, err := svc.ExtractRate(run, exp)
	require.NoError(t, err)
	assert.Greater(t, result.Fit.Slope, 0.0)
	assert.InEpsilon(t, 1e-6, result.KObs, 1e-9)
}

func TestExtractRate_SaltCorrection(t *testing.T) {
	svc := newRateService()
	exp := config.DefaultExperiment()
	exp.Reagents.AcidAnion = "SO4--"
	run := cleanTrace(t, exp, 2e-6, nil)

	result, err := svc.ExtractRate(run, exp)
	require.NoError(t, err)

	assert.Equal(t, 1.4, result.SaltFactor)
	assert.InEpsilon(t, result.KObs/1.4, result.KIntrinsic, 1e-12)
	assert.False(t, result.Flagged(kinetics.FlagUnknownAnion))
}

func TestExtractRate_UnknownAnionFallsBackToUnity(t *testing.T) {
	svc := newRateService()
	exp := config.DefaultExperiment()
	exp.Reagents.AcidAnion = "Br-"
	run := cleanTrace(t, exp, 2e-6, nil)

	result, err := svc.ExtractRate(run, exp)
	require.NoError(t, err)

	assert.Equal(t, 1.0, result.SaltFactor)
	assert.Equal(t, result.KObs, result.KIntrinsic)
	assert.True(t, result.Flagged(kinetics.FlagUnknownAnion))
}

func TestExtractRate_InvalidOpticsConfiguration(t *testing.T) {
	svc := newRateService()
	run := cleanTrace(t, config.DefaultExperiment(), 2e-6, nil)

	exp := config.DefaultExperiment()
	exp.Parameters.ExtinctionCoefficient = 0
	_, err := svc.ExtractRate(run, exp)
	require.Error(t, err)

	exp = config.DefaultExperiment()
	exp.Parameters.PathLengthCm = -1
	_, err = svc.ExtractRate(run, exp)
	require.Error(t, err)
}

func TestExtractRate_InvalidSaltFactorIsFatal(t *testing.T) {
	svc := newRateService()
	exp := config.DefaultExperiment()
	exp.Reagents.SaltFactors = map[string]float64{"Cl-": -1.0}
	run := cleanTrace(t, exp, 2e-6, nil)

	_, err := svc.ExtractRate(run, exp)
	require.Error(t, err)
}

func TestExtractRate_FlatTraceIsDegenerate(t *testing.T) {
	svc := newRateService()
	exp := config.DefaultExperiment()

	samples := make([]kinetics.RawSample, 10)
	for i := range samples {
		samples[i] = kinetics.RawSample{TimeS: float64(i * 10), Absorbance: 1.5}
	}
	run, err := kinetics.NewRun(kinetics.RunMetadata{TemperatureK: 298, Label: "flat.csv"}, samples)
	require.NoError(t, err)

	_, err = svc.ExtractRate(run, exp)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDegenerateFit, apperrors.GetCode(err))
}

func TestExtractRate_LowLinearityFlagSurvivesRobustRefit(t *testing.T) {
	svc := newRateService()
	exp := config.DefaultExperiment()
	// Huge inlier threshold makes the robust fit keep every point, so its
	// R² stays exactly as poor as the ordinary fit's
	exp.Analysis.RobustResidualThreshold = 1e6

	spikes := map[int]float64{2: 0.5, 9: -0.4, 16: 0.35, 24: -0.45}
	run := cleanTrace(t, exp, 2e-6, spikes)

	result, err := svc.ExtractRate(run, exp)
	require.NoError(t, err)

	assert.Equal(t, kinetics.MethodRobust, result.Fit.Method)
	assert.True(t, result.Flagged(kinetics.FlagRobustRefit))
	assert.True(t, result.Flagged(kinetics.FlagLowLinearity))
	assert.Less(t, result.Fit.RSquared, exp.Analysis.RSquaredThreshold)
}

func TestExtractRate_DeterministicForFixedSeed(t *testing.T) {
	svc := newRateService()
	exp := config.DefaultExperiment()
	spikes := map[int]float64{5: 0.4, 18: -0.4}
	run := cleanTrace(t, exp, 2e-6, spikes)

	first, err := svc.ExtractRate(run, exp)
	require.NoError(t, err)
	second, err := svc.ExtractRate(run, exp)
	require.NoError(t, err)

	// Identical up to the computation timestamp
	first.ComputedAt = second.ComputedAt
	assert.Equal(t, first, second)
}
