package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"gokinetics/domain/kinetics"
)

// TraceSpec configures one synthetic kinetic trace
type TraceSpec struct {
	Label             string
	TemperatureK      float64
	DurationS         float64
	Points            int
	Rate              float64 // true decay rate, M/s
	NoiseStd          float64 // gaussian absorbance noise
	OutlierProb       float64 // fraction of points spiked (bubbles)
	DelayS            float64 // mixing delay before the decay starts
	InitialAbsorbance float64
	Epsilon           float64
	PathLengthCm      float64
}

// DefaultTraceSpec returns a clean baseline trace specification
func DefaultTraceSpec(label string, tempK float64) TraceSpec {
	return TraceSpec{
		Label:             label,
		TemperatureK:      tempK,
		DurationS:         600,
		Points:            30,
		Rate:              2e-6,
		InitialAbsorbance: 2.0,
		Epsilon:           900,
		PathLengthCm:      1.0,
	}
}

// TraceGenerator produces synthetic absorbance traces with controlled
// defects: gaussian noise, outlier spikes, and a mixing delay. All
// randomness comes through the injected source, so fixed seeds reproduce
// identical traces.
type TraceGenerator struct {
	rng *rand.Rand
}

// NewTraceGenerator creates a generator over the given random source
func NewTraceGenerator(rng *rand.Rand) *TraceGenerator {
	return &TraceGenerator{rng: rng}
}

// Generate builds one synthetic run from the spec
func (g *TraceGenerator) Generate(spec TraceSpec) (kinetics.Run, error) {
	if spec.Points < 2 {
		return kinetics.Run{}, fmt.Errorf("trace %q: at least 2 points required, got %d", spec.Label, spec.Points)
	}
	c0 := spec.InitialAbsorbance / (spec.Epsilon * spec.PathLengthCm)

	samples := make([]kinetics.RawSample, spec.Points)
	step := spec.DurationS / float64(spec.Points-1)
	for i := range samples {
		t := float64(i) * step

		var conc float64
		if t < spec.DelayS {
			// Reaction has not started; absorbance holds at its initial value
			conc = c0
		} else {
			conc = c0 - spec.Rate*(t-spec.DelayS)
			if conc < 0 {
				conc = 0
			}
		}

		abs := conc * spec.Epsilon * spec.PathLengthCm
		if spec.NoiseStd > 0 {
			abs += g.rng.NormFloat64() * spec.NoiseStd
		}
		if spec.OutlierProb > 0 && g.rng.Float64() < spec.OutlierProb {
			spike := 0.2 + 0.3*g.rng.Float64()
			if g.rng.Intn(2) == 0 {
				spike = -spike
			}
			abs += spike
		}

		samples[i] = kinetics.RawSample{TimeS: t, Absorbance: abs}
	}

	return kinetics.NewRun(kinetics.RunMetadata{
		TemperatureK: spec.TemperatureK,
		Label:        spec.Label,
	}, samples)
}

// GenerateArrheniusSet builds one run per temperature with true rates drawn
// from k = A·exp(-Ea/RT), for end-to-end pipeline tests and demo data.
func (g *TraceGenerator) GenerateArrheniusSet(eaJMol, aFactor float64, temperaturesK []float64, noiseStd float64) ([]kinetics.Run, error) {
	runs := make([]kinetics.Run, 0, len(temperaturesK))
	for _, t := range temperaturesK {
		k := aFactor * math.Exp(-eaJMol/(kinetics.GasConstant*t))

		spec := DefaultTraceSpec(syntheticLabel(t), t)
		spec.Rate = k
		spec.NoiseStd = noiseStd
		run, err := g.Generate(spec)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}
