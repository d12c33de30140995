package ports

import (
	"context"

	"gokinetics/domain/core"
	"gokinetics/domain/kinetics"
)

// ResultRepository persists per-run and aggregated results.
// Implementations: adapters/postgres for the API server, adapters/memory
// for the CLI and tests.
type ResultRepository interface {
	SaveRunResult(ctx context.Context, batchID core.BatchID, result kinetics.RunResult) error
	ListRunResults(ctx context.Context, batchID core.BatchID) ([]kinetics.RunResult, error)
	GetRunResult(ctx context.Context, batchID core.BatchID, label string) (*kinetics.RunResult, error)

	SaveArrheniusResult(ctx context.Context, batchID core.BatchID, result kinetics.ArrheniusResult) error
	GetArrheniusResult(ctx context.Context, batchID core.BatchID) (*kinetics.ArrheniusResult, error)
}
