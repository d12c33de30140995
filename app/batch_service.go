package app

import (
	"context"
	"sort"
	"sync"

	"gokinetics/domain/core"
	"gokinetics/domain/kinetics"
	"gokinetics/internal"
	"gokinetics/internal/config"

	"golang.org/x/sync/semaphore"
)

// defaultMaxConcurrentRuns bounds the rate-extraction worker pool
const defaultMaxConcurrentRuns = 4

// RunFailure records a run that could not be processed, with enough context
// for an intelligible report
type RunFailure struct {
	Label     string `json:"label"`
	Component string `json:"component"`
	Err       error  `json:"-"`
	Message   string `json:"message"`
}

// BatchOutcome collects everything a batch produced: per-run results sorted
// by temperature, per-run failures, and the Arrhenius aggregate (nil when
// the aggregation step itself failed).
type BatchOutcome struct {
	BatchID   core.BatchID              `json:"batch_id"`
	Results   []kinetics.RunResult      `json:"results"`
	Failures  []RunFailure              `json:"failures,omitempty"`
	Arrhenius *kinetics.ArrheniusResult `json:"arrhenius,omitempty"`
	// ArrheniusErr is set when aggregation failed (e.g. fewer than 2
	// usable runs); per-run results are still valid in that case.
	ArrheniusErr error `json:"-"`
}

// BatchService processes a set of runs concurrently and aggregates the
// survivors. Each run is an independent computation over immutable inputs,
// so the only shared state is the result slice behind a mutex.
type BatchService struct {
	rates     *RateService
	arrhenius *ArrheniusService
	logger    *internal.Logger
	maxProcs  int64
}

// NewBatchService creates a new batch orchestration service
func NewBatchService(rates *RateService, arrhenius *ArrheniusService, logger *internal.Logger) *BatchService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &BatchService{
		rates:     rates,
		arrhenius: arrhenius,
		logger:    logger,
		maxProcs:  defaultMaxConcurrentRuns,
	}
}

// Process runs rate extraction for every run and then the Arrhenius
// aggregation over whatever succeeded. Per-run failures never abort the
// batch; the aggregator fails only against its own minimum-data contract.
func (s *BatchService) Process(ctx context.Context, runs []kinetics.Run, exp config.ExperimentConfig) (BatchOutcome, error) {
	if err := exp.Validate(); err != nil {
		return BatchOutcome{}, err
	}

	outcome := BatchOutcome{BatchID: core.BatchID(core.NewID())}

	sem := semaphore.NewWeighted(s.maxProcs)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, run := range runs {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Cancelled mid-batch: in-flight workers still hold references
			// to outcome, so they must finish before it can be returned
			wg.Wait()
			return outcome, err
		}
		wg.Add(1)
		go func(run kinetics.Run) {
			defer wg.Done()
			defer sem.Release(1)

			result, err := s.rates.ExtractRate(run, exp)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Error("run %s failed: %v", run.Metadata.Label, err)
				outcome.Failures = append(outcome.Failures, RunFailure{
					Label:     run.Metadata.Label,
					Component: "rate_extractor",
					Err:       err,
					Message:   err.Error(),
				})
				return
			}
			s.logger.Info("run %s: T=%.0fK k_obs=%.3e k_int=%.3e R²=%.4f method=%s",
				run.Metadata.Label, run.Metadata.TemperatureK,
				result.KObs, result.KIntrinsic, result.Fit.RSquared, result.Fit.Method)
			outcome.Results = append(outcome.Results, result)
		}(run)
	}
	wg.Wait()

	sort.Slice(outcome.Results, func(i, j int) bool {
		return outcome.Results[i].Metadata.TemperatureK < outcome.Results[j].Metadata.TemperatureK
	})
	sort.Slice(outcome.Failures, func(i, j int) bool {
		return outcome.Failures[i].Label < outcome.Failures[j].Label
	})

	agg, err := s.arrhenius.Aggregate(outcome.Results)
	if err != nil {
		s.logger.Warn("Arrhenius aggregation failed: %v", err)
		outcome.ArrheniusErr = err
		return outcome, nil
	}
	outcome.Arrhenius = &agg
	return outcome, nil
}
