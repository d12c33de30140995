package app

import (
	"math"

	"gokinetics/domain/core"
	"gokinetics/domain/kinetics"
	"gokinetics/internal"
	"gokinetics/internal/config"
	apperrors "gokinetics/internal/errors"
	"gokinetics/ports"

	"github.com/montanaflynn/stats"
)

// noiseFlagThreshold is the residual noise coefficient above which a run is
// flagged HIGH_NOISE in its quality profile
const noiseFlagThreshold = 0.1

// RateService extracts an observed rate constant from a single kinetic trace.
// It converts absorbance to concentration via Beer-Lambert, fits the decay
// slope, and applies the two-state decision rule: accept the ordinary fit
// when its R² clears the configured threshold, otherwise re-fit robustly
// exactly once and accept that result regardless of its R².
type RateService struct {
	fitter ports.FitterPort
	rng    ports.RNGPort
	logger *internal.Logger
}

// NewRateService creates a new rate extraction service
func NewRateService(fitter ports.FitterPort, rng ports.RNGPort, logger *internal.Logger) *RateService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &RateService{fitter: fitter, rng: rng, logger: logger}
}

// ExtractRate processes one run into a RunResult. Low-quality fits are
// flagged, never silently dropped; only degenerate data or invalid
// configuration produce an error.
func (s *RateService) ExtractRate(run kinetics.Run, exp config.ExperimentConfig) (kinetics.RunResult, error) {
	if err := run.Validate(); err != nil {
		return kinetics.RunResult{}, apperrors.Wrapf(err, "invalid run %q", run.Metadata.Label)
	}
	if exp.Parameters.ExtinctionCoefficient <= 0 {
		return kinetics.RunResult{}, core.NewRunError(run.Metadata.Label, core.ErrNonPositiveExtinction)
	}
	if exp.Parameters.PathLengthCm <= 0 {
		return kinetics.RunResult{}, core.NewRunError(run.Metadata.Label, core.ErrNonPositivePathLength)
	}

	times := run.Times()
	conc := run.Concentrations(exp.Parameters.ExtinctionCoefficient, exp.Parameters.PathLengthCm)

	fit, err := s.fitter.FitOrdinary(times, conc)
	if err != nil {
		return kinetics.RunResult{}, apperrors.DegenerateFit(run.Metadata.Label, err)
	}

	var flags []kinetics.QualityFlag
	if fit.RSquared < exp.Analysis.RSquaredThreshold {
		s.logger.Debug("run %s: ordinary R²=%.4f below threshold %.4f, re-fitting robustly",
			run.Metadata.Label, fit.RSquared, exp.Analysis.RSquaredThreshold)

		robust, err := s.fitter.FitRobust(times, conc, ports.RobustOptions{
			Trials:            exp.Analysis.RobustTrials,
			ResidualThreshold: exp.Analysis.RobustResidualThreshold,
			Rand:              s.rng.RunStream(run.Metadata.Label, exp.Analysis.BaseSeed),
		})
		if err != nil {
			return kinetics.RunResult{}, apperrors.DegenerateFit(run.Metadata.Label, err)
		}

		fit = robust
		flags = append(flags, kinetics.FlagRobustRefit)
		if robust.FallbackToOrdinary {
			flags = append(flags, kinetics.FlagRobustFallback)
		}
	}

	// Robust fitting happens at most once; whatever came back is final
	if fit.RSquared < exp.Analysis.RSquaredThreshold {
		flags = append(flags, kinetics.FlagLowLinearity)
	}

	kObs := math.Abs(fit.Slope)

	table := exp.SaltTable()
	if err := table.Validate(); err != nil {
		return kinetics.RunResult{}, err
	}
	kIntrinsic, factor, known := table.Normalize(kObs, exp.Reagents.AcidAnion)
	if !known {
		s.logger.Info("run %s: anion %q not in salt table, applying unity factor",
			run.Metadata.Label, exp.Reagents.AcidAnion)
		flags = append(flags, kinetics.FlagUnknownAnion)
	}

	quality := s.profileResiduals(times, conc, fit)
	s.logger.Trace("run %s: residual std=%.3e noise=%.4f outliers=%d",
		run.Metadata.Label, quality.ResidualStdDev, quality.NoiseCoefficient, quality.OutlierCount)
	if quality.NoiseCoefficient > noiseFlagThreshold {
		flags = append(flags, kinetics.FlagHighNoise)
	}

	return kinetics.RunResult{
		Metadata:   run.Metadata,
		KObs:       kObs,
		KIntrinsic: kIntrinsic,
		SaltFactor: factor,
		Anion:      exp.Reagents.AcidAnion,
		Fit:        fit,
		Quality:    quality,
		Flags:      flags,
		ComputedAt: core.Now(),
	}, nil
}

// profileResiduals summarizes fit residual diagnostics: standard deviation,
// noise relative to the signal span, and an IQR outlier count.
func (s *RateService) profileResiduals(x, y []float64, fit kinetics.FitResult) kinetics.TraceQuality {
	resid := make([]float64, len(x))
	for i := range x {
		resid[i] = y[i] - (fit.Slope*x[i] + fit.Intercept)
	}

	stdDev, err := stats.StandardDeviation(resid)
	if err != nil {
		return kinetics.TraceQuality{}
	}

	minY, _ := stats.Min(y)
	maxY, _ := stats.Max(y)
	span := maxY - minY
	noise := 0.0
	if span > 0 {
		noise = stdDev / span
	}

	outliers := 0
	q, err := stats.Quartile(resid)
	if err == nil {
		iqr := q.Q3 - q.Q1
		lower := q.Q1 - 1.5*iqr
		upper := q.Q3 + 1.5*iqr
		for _, r := range resid {
			if r < lower || r > upper {
				outliers++
			}
		}
	}

	return kinetics.TraceQuality{
		ResidualStdDev:   stdDev,
		NoiseCoefficient: noise,
		OutlierCount:     outliers,
	}
}
