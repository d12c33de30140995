package kinetics

import (
	"gokinetics/domain/core"
)

// ============================================================================
// STABLE PRIMITIVES (Canonical, never change)
// ============================================================================

// RawSample is a single spectrophotometer reading.
// INVARIANTS:
// - TimeS is non-negative, in seconds
// - Absorbance is dimensionless (AU)
type RawSample struct {
	TimeS      float64 `json:"time_s"`
	Absorbance float64 `json:"absorbance"`
}

// Run is one kinetic trace: an ordered absorbance-vs-time series plus its
// identity. Samples are ordered by time with strictly increasing timestamps;
// Validate enforces this before the core touches the data.
type Run struct {
	ID       core.RunID  `json:"id"`
	Metadata RunMetadata `json:"metadata"`
	Samples  []RawSample `json:"samples"`
}

// RunMetadata identifies a run. Immutable once constructed.
type RunMetadata struct {
	TemperatureK float64 `json:"temperature_k"` // > 0
	Label        string  `json:"label"`         // typically derived from the source filename
}

// FitMethod identifies which regression path produced a FitResult
type FitMethod string

const (
	MethodOrdinary FitMethod = "ordinary"
	MethodRobust   FitMethod = "robust"
)

// FitResult captures one regression outcome. Produced once per fit
// invocation, never mutated afterward.
type FitResult struct {
	Slope     float64   `json:"slope"`
	Intercept float64   `json:"intercept"`
	RSquared  float64   `json:"r_squared"` // 0.0 to 1.0
	PValue    float64   `json:"p_value"`   // two-tailed significance of the slope
	Method    FitMethod `json:"method"`
	// InlierMask marks, per input sample in original order, whether the
	// sample was used in the final fit. Only meaningful when Method is
	// robust; nil for ordinary fits.
	InlierMask []bool `json:"inlier_mask,omitempty"`
	// FallbackToOrdinary is set when a robust fit found no viable inlier
	// set and the engine fell back to ordinary least squares.
	FallbackToOrdinary bool `json:"fallback_to_ordinary,omitempty"`
	SampleSize         int  `json:"sample_size"`
}

// InlierCount returns how many samples survived robust inlier selection.
// For ordinary fits every sample is an inlier.
func (f FitResult) InlierCount() int {
	if f.InlierMask == nil {
		return f.SampleSize
	}
	n := 0
	for _, in := range f.InlierMask {
		if in {
			n++
		}
	}
	return n
}

// QualityFlag represents structured quality warnings attached to results
type QualityFlag string

const (
	FlagRobustRefit     QualityFlag = "ROBUST_REFIT"      // ordinary fit rejected, robust re-fit accepted
	FlagRobustFallback  QualityFlag = "ROBUST_FALLBACK"   // robust fit exhausted, fell back to ordinary
	FlagLowLinearity    QualityFlag = "LOW_LINEARITY"     // accepted fit still below the R² threshold
	FlagUnknownAnion    QualityFlag = "UNKNOWN_ANION"     // anion missing from salt table, unity factor applied
	FlagNonPositiveRate QualityFlag = "NON_POSITIVE_RATE" // k_intrinsic <= 0, excluded from Arrhenius transform
	FlagHighNoise       QualityFlag = "HIGH_NOISE"        // residual noise coefficient above profile threshold
)

// TraceQuality summarizes residual diagnostics for an accepted fit
type TraceQuality struct {
	ResidualStdDev   float64 `json:"residual_std_dev"`
	NoiseCoefficient float64 `json:"noise_coefficient"` // residual std dev relative to signal span
	OutlierCount     int     `json:"outlier_count"`     // IQR-based count over residuals
}

// RunResult is the per-run output of the rate extraction pipeline.
// INVARIANT: KIntrinsic = KObs / SaltFactor, SaltFactor > 0.
type RunResult struct {
	Metadata   RunMetadata    `json:"metadata"`
	KObs       float64        `json:"k_obs"`       // >= 0, M/s
	KIntrinsic float64        `json:"k_intrinsic"` // >= 0, M/s, salt-corrected
	SaltFactor float64        `json:"salt_factor"`
	Anion      string         `json:"anion"`
	Fit        FitResult      `json:"fit"`
	Quality    TraceQuality   `json:"quality"`
	Flags      []QualityFlag  `json:"flags,omitempty"`
	// ComputedAt is a wall-clock provenance stamp. It is the one field
	// excluded from determinism comparisons: identical inputs and seed give
	// identical results up to this timestamp.
	ComputedAt core.Timestamp `json:"computed_at"`
}

// Flagged reports whether the result carries the given quality flag
func (r RunResult) Flagged(flag QualityFlag) bool {
	for _, f := range r.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// ExcludedRun records a run dropped from the Arrhenius transform and why
type ExcludedRun struct {
	Label  string      `json:"label"`
	Reason QualityFlag `json:"reason"`
}

// ArrheniusResult holds the aggregated thermodynamic parameters.
// Derived entirely from RunResult.KIntrinsic and RunMetadata.TemperatureK.
type ArrheniusResult struct {
	ActivationEnergyKJMol float64        `json:"activation_energy_kj_mol"`
	PreExponentialFactor  float64        `json:"pre_exponential_factor"` // > 0
	Fit                   FitResult      `json:"fit"`                    // over (1/T, ln k) axes
	PointCount            int            `json:"point_count"`
	Excluded              []ExcludedRun  `json:"excluded,omitempty"`
	ComputedAt            core.Timestamp `json:"computed_at"` // provenance stamp, see RunResult.ComputedAt
}

// GasConstant is R in J/(mol·K)
const GasConstant = 8.314
