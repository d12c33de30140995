package memory

import (
	"context"
	"sync"

	"gokinetics/domain/core"
	"gokinetics/domain/kinetics"
	"gokinetics/ports"
)

// ResultRepository is an in-memory ResultRepository for the CLI and tests
type ResultRepository struct {
	mu        sync.RWMutex
	runs      map[core.BatchID][]kinetics.RunResult
	arrhenius map[core.BatchID]kinetics.ArrheniusResult
}

// NewResultRepository creates a new in-memory result repository
func NewResultRepository() *ResultRepository {
	return &ResultRepository{
		runs:      make(map[core.BatchID][]kinetics.RunResult),
		arrhenius: make(map[core.BatchID]kinetics.ArrheniusResult),
	}
}

var _ ports.ResultRepository = (*ResultRepository)(nil)

func (r *ResultRepository) SaveRunResult(ctx context.Context, batchID core.BatchID, result kinetics.RunResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[batchID] = append(r.runs[batchID], result)
	return nil
}

func (r *ResultRepository) ListRunResults(ctx context.Context, batchID core.BatchID) ([]kinetics.RunResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]kinetics.RunResult, len(r.runs[batchID]))
	copy(out, r.runs[batchID])
	return out, nil
}

func (r *ResultRepository) GetRunResult(ctx context.Context, batchID core.BatchID, label string) (*kinetics.RunResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, result := range r.runs[batchID] {
		if result.Metadata.Label == label {
			found := result
			return &found, nil
		}
	}
	return nil, core.ErrRunResultNotFound
}

func (r *ResultRepository) SaveArrheniusResult(ctx context.Context, batchID core.BatchID, result kinetics.ArrheniusResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.arrhenius[batchID] = result
	return nil
}

func (r *ResultRepository) GetArrheniusResult(ctx context.Context, batchID core.BatchID) (*kinetics.ArrheniusResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result, ok := r.arrhenius[batchID]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &result, nil
}
