package app

import (
	"math"

	"gokinetics/domain/core"
	"gokinetics/domain/kinetics"
	"gokinetics/internal"
	apperrors "gokinetics/internal/errors"
	"gokinetics/ports"
)

// ArrheniusService aggregates per-run intrinsic rate constants into
// activation energy and pre-exponential factor via the linearized Arrhenius
// form ln k = -Ea/R · (1/T) + ln A.
type ArrheniusService struct {
	fitter ports.FitterPort
	logger *internal.Logger
}

// NewArrheniusService creates a new Arrhenius aggregation service
func NewArrheniusService(fitter ports.FitterPort, logger *internal.Logger) *ArrheniusService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ArrheniusService{fitter: fitter, logger: logger}
}

// Aggregate transforms the run set to (1/T, ln k_intrinsic) and regresses it
// with the ordinary engine. Per-run noise was already handled upstream, so
// robust fitting is not applied at this level. Runs with k_intrinsic <= 0 are
// excluded from the transform and reported, not fatal; fewer than 2 valid
// points after exclusion is fatal for this step only.
func (s *ArrheniusService) Aggregate(results []kinetics.RunResult) (kinetics.ArrheniusResult, error) {
	invT := make([]float64, 0, len(results))
	lnK := make([]float64, 0, len(results))
	var excluded []kinetics.ExcludedRun

	for _, r := range results {
		if r.KIntrinsic <= 0 {
			s.logger.Warn("run %s: k_intrinsic=%.3e not positive, excluded from Arrhenius transform",
				r.Metadata.Label, r.KIntrinsic)
			excluded = append(excluded, kinetics.ExcludedRun{
				Label:  r.Metadata.Label,
				Reason: kinetics.FlagNonPositiveRate,
			})
			continue
		}
		if r.Flagged(kinetics.FlagLowLinearity) {
			s.logger.Warn("run %s: low-linearity fit included in Arrhenius aggregation", r.Metadata.Label)
		}
		invT = append(invT, 1/r.Metadata.TemperatureK)
		lnK = append(lnK, math.Log(r.KIntrinsic))
	}

	if len(invT) < 2 {
		return kinetics.ArrheniusResult{}, apperrors.InsufficientData(
			"Arrhenius regression requires at least 2 runs with positive intrinsic rates")
	}

	fit, err := s.fitter.FitOrdinary(invT, lnK)
	if err != nil {
		if core.IsDegenerateFit(err) {
			// All surviving runs share a temperature: still an
			// insufficient-data condition, not a low-quality fit
			return kinetics.ArrheniusResult{}, apperrors.InsufficientData(
				"Arrhenius regression requires at least 2 distinct temperatures")
		}
		return kinetics.ArrheniusResult{}, apperrors.Wrap(err, "Arrhenius regression failed")
	}

	// slope = -Ea/R, intercept = ln A
	ea := -fit.Slope * kinetics.GasConstant / 1000
	a := math.Exp(fit.Intercept)

	s.logger.Info("Arrhenius fit over %d runs: Ea=%.2f kJ/mol, A=%.3e, R²=%.4f",
		len(invT), ea, a, fit.RSquared)

	return kinetics.ArrheniusResult{
		ActivationEnergyKJMol: ea,
		PreExponentialFactor:  a,
		Fit:                   fit,
		PointCount:            len(invT),
		Excluded:              excluded,
		ComputedAt:            core.Now(),
	}, nil
}
