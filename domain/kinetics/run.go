package kinetics

import (
	"gokinetics/domain/core"
)

// NewRun builds a validated Run from an ordered sample sequence
func NewRun(meta RunMetadata, samples []RawSample) (Run, error) {
	run := Run{
		ID:       core.RunID(core.NewID()),
		Metadata: meta,
		Samples:  samples,
	}
	if err := run.Validate(); err != nil {
		return Run{}, err
	}
	return run, nil
}

// Validate enforces the run input contract: at least one sample, non-negative
// timestamps, strictly increasing time. Duplicate or out-of-order timestamps
// are invalid input.
func (r Run) Validate() error {
	if r.Metadata.TemperatureK <= 0 {
		return core.NewRunError(r.Metadata.Label, core.ErrNonPositiveTemperature)
	}
	if len(r.Samples) == 0 {
		return core.NewRunError(r.Metadata.Label, core.ErrEmptyRun)
	}
	for i, s := range r.Samples {
		if s.TimeS < 0 {
			return core.NewRunError(r.Metadata.Label, core.ErrNegativeTime)
		}
		if i > 0 && s.TimeS <= r.Samples[i-1].TimeS {
			return core.NewRunError(r.Metadata.Label, core.ErrNonMonotonicTime)
		}
	}
	return nil
}

// Times returns the time axis of the run in seconds
func (r Run) Times() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.TimeS
	}
	return out
}

// Absorbances returns the absorbance axis of the run
func (r Run) Absorbances() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Absorbance
	}
	return out
}

// Concentrations converts the absorbance axis to concentration via
// Beer-Lambert: c = A / (ε·ℓ). Caller is responsible for validating ε and ℓ.
func (r Run) Concentrations(epsilon, pathLengthCm float64) []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Absorbance / (epsilon * pathLengthCm)
	}
	return out
}
