package kinetics

import (
	"gokinetics/domain/core"
)

// SaltTable maps an acid counter-ion identity to its Hofmeister-derived
// rate multiplier. The table is external configuration, not hard-coded
// physics: this package owns the division and the unity fallback only.
type SaltTable map[string]float64

// Validate rejects non-positive factors. A factor <= 0 is a configuration
// error, never silently clamped.
func (t SaltTable) Validate() error {
	for anion, factor := range t {
		if factor <= 0 {
			return core.NewConfigError("salt_factors."+anion, "factor must be > 0")
		}
	}
	return nil
}

// Factor returns the salt factor for the given anion. Unrecognized anions
// get a unity factor; known reports whether the anion was in the table so
// callers can surface the informational flag.
func (t SaltTable) Factor(anion string) (factor float64, known bool) {
	if f, ok := t[anion]; ok {
		return f, true
	}
	return 1.0, false
}

// Normalize rescales an observed rate constant to its ion-independent
// intrinsic value: k_intrinsic = k_obs / salt_factor(anion).
func (t SaltTable) Normalize(kObs float64, anion string) (kIntrinsic, factor float64, known bool) {
	factor, known = t.Factor(anion)
	return kObs / factor, factor, known
}
