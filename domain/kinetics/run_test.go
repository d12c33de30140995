package kinetics

import (
	"testing"

	"gokinetics/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMeta() RunMetadata {
	return RunMetadata{TemperatureK: 298, Label: "run_298K.csv"}
}

func TestNewRun_ValidSequence(t *testing.T) {
	run, err := NewRun(validMeta(), []RawSample{
		{TimeS: 0, Absorbance: 2.0},
		{TimeS: 10, Absorbance: 1.9},
		{TimeS: 20, Absorbance: 1.8},
	})
	require.NoError(t, err)
	assert.False(t, core.ID(run.ID).IsEmpty())
	assert.Equal(t, []float64{0, 10, 20}, run.Times())
	assert.Equal(t, []float64{2.0, 1.9, 1.8}, run.Absorbances())
}

func TestRun_ValidateRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		meta    RunMetadata
		samples []RawSample
		want    error
	}{
		{
			"empty run", validMeta(), nil, core.ErrEmptyRun,
		},
		{
			"duplicate timestamps", validMeta(),
			[]RawSample{{TimeS: 0, Absorbance: 2}, {TimeS: 0, Absorbance: 1.9}},
			core.ErrNonMonotonicTime,
		},
		{
			"out-of-order timestamps", validMeta(),
			[]RawSample{{TimeS: 10, Absorbance: 2}, {TimeS: 5, Absorbance: 1.9}},
			core.ErrNonMonotonicTime,
		},
		{
			"negative timestamp", validMeta(),
			[]RawSample{{TimeS: -1, Absorbance: 2}, {TimeS: 5, Absorbance: 1.9}},
			core.ErrNegativeTime,
		},
		{
			"zero temperature",
			RunMetadata{TemperatureK: 0, Label: "bad.csv"},
			[]RawSample{{TimeS: 0, Absorbance: 2}},
			core.ErrNonPositiveTemperature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRun(tt.meta, tt.samples)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRun_ConcentrationsAppliesBeerLambert(t *testing.T) {
	run, err := NewRun(validMeta(), []RawSample{
		{TimeS: 0, Absorbance: 0.9},
		{TimeS: 10, Absorbance: 0.45},
	})
	require.NoError(t, err)

	conc := run.Concentrations(900, 1.0)
	assert.InDelta(t, 0.001, conc[0], 1e-12)
	assert.InDelta(t, 0.0005, conc[1], 1e-12)

	// Doubling the path length halves the concentration
	halved := run.Concentrations(900, 2.0)
	assert.InDelta(t, conc[0]/2, halved[0], 1e-12)
}

func TestFitResult_InlierCount(t *testing.T) {
	ordinary := FitResult{SampleSize: 5}
	assert.Equal(t, 5, ordinary.InlierCount())

	robust := FitResult{SampleSize: 5, InlierMask: []bool{true, false, true, true, false}}
	assert.Equal(t, 3, robust.InlierCount())
}
