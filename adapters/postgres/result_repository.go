package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"gokinetics/domain/core"
	"gokinetics/domain/kinetics"
	"gokinetics/ports"

	"github.com/jmoiron/sqlx"
)

// resultRepository implements ports.ResultRepository on Postgres
type resultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new Postgres result repository
func NewResultRepository(db *sqlx.DB) ports.ResultRepository {
	return &resultRepository{db: db}
}

// Migrate creates the result tables when they do not exist
func Migrate(db *sqlx.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS run_results (
		batch_id TEXT NOT NULL,
		label TEXT NOT NULL,
		temperature_k DOUBLE PRECISION NOT NULL,
		k_obs DOUBLE PRECISION NOT NULL,
		k_intrinsic DOUBLE PRECISION NOT NULL,
		salt_factor DOUBLE PRECISION NOT NULL,
		anion TEXT NOT NULL,
		fit JSONB NOT NULL,
		quality JSONB NOT NULL,
		flags JSONB,
		computed_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (batch_id, label)
	);
	CREATE TABLE IF NOT EXISTS arrhenius_results (
		batch_id TEXT PRIMARY KEY,
		activation_energy_kj_mol DOUBLE PRECISION NOT NULL,
		pre_exponential_factor DOUBLE PRECISION NOT NULL,
		point_count INTEGER NOT NULL,
		fit JSONB NOT NULL,
		excluded JSONB,
		computed_at TIMESTAMPTZ NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate result tables: %w", err)
	}
	return nil
}

func (r *resultRepository) SaveRunResult(ctx context.Context, batchID core.BatchID, result kinetics.RunResult) error {
	fitJSON, err := json.Marshal(result.Fit)
	if err != nil {
		return fmt.Errorf("failed to marshal fit: %w", err)
	}
	qualityJSON, err := json.Marshal(result.Quality)
	if err != nil {
		return fmt.Errorf("failed to marshal quality: %w", err)
	}
	flagsJSON, err := json.Marshal(result.Flags)
	if err != nil {
		return fmt.Errorf("failed to marshal flags: %w", err)
	}

	query := `INSERT INTO run_results (
		batch_id, label, temperature_k, k_obs, k_intrinsic, salt_factor, anion,
		fit, quality, flags, computed_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (batch_id, label) DO UPDATE SET
		k_obs = EXCLUDED.k_obs, k_intrinsic = EXCLUDED.k_intrinsic,
		salt_factor = EXCLUDED.salt_factor, anion = EXCLUDED.anion,
		fit = EXCLUDED.fit, quality = EXCLUDED.quality,
		flags = EXCLUDED.flags, computed_at = EXCLUDED.computed_at`

	_, err = r.db.ExecContext(ctx, query,
		batchID.String(), result.Metadata.Label, result.Metadata.TemperatureK,
		result.KObs, result.KIntrinsic, result.SaltFactor, result.Anion,
		fitJSON, qualityJSON, flagsJSON, result.ComputedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to save run result: %w", err)
	}
	return nil
}

func (r *resultRepository) ListRunResults(ctx context.Context, batchID core.BatchID) ([]kinetics.RunResult, error) {
	query := `SELECT label, temperature_k, k_obs, k_intrinsic, salt_factor, anion,
		fit, quality, COALESCE(flags, 'null'::jsonb), computed_at
	FROM run_results WHERE batch_id = $1 ORDER BY temperature_k`

	rows, err := r.db.QueryContext(ctx, query, batchID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list run results: %w", err)
	}
	defer rows.Close()

	var results []kinetics.RunResult
	for rows.Next() {
		result, err := scanRunResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	return results, rows.Err()
}

func (r *resultRepository) GetRunResult(ctx context.Context, batchID core.BatchID, label string) (*kinetics.RunResult, error) {
	query := `SELECT label, temperature_k, k_obs, k_intrinsic, salt_factor, anion,
		fit, quality, COALESCE(flags, 'null'::jsonb), computed_at
	FROM run_results WHERE batch_id = $1 AND label = $2`

	rows, err := r.db.QueryContext(ctx, query, batchID.String(), label)
	if err != nil {
		return nil, fmt.Errorf("failed to get run result: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, core.ErrRunResultNotFound
	}
	return scanRunResult(rows)
}

func (r *resultRepository) SaveArrheniusResult(ctx context.Context, batchID core.BatchID, result kinetics.ArrheniusResult) error {
	fitJSON, err := json.Marshal(result.Fit)
	if err != nil {
		return fmt.Errorf("failed to marshal fit: %w", err)
	}
	excludedJSON, err := json.Marshal(result.Excluded)
	if err != nil {
		return fmt.Errorf("failed to marshal exclusions: %w", err)
	}

	query := `INSERT INTO arrhenius_results (
		batch_id, activation_energy_kj_mol, pre_exponential_factor, point_count,
		fit, excluded, computed_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (batch_id) DO UPDATE SET
		activation_energy_kj_mol = EXCLUDED.activation_energy_kj_mol,
		pre_exponential_factor = EXCLUDED.pre_exponential_factor,
		point_count = EXCLUDED.point_count, fit = EXCLUDED.fit,
		excluded = EXCLUDED.excluded, computed_at = EXCLUDED.computed_at`

	_, err = r.db.ExecContext(ctx, query,
		batchID.String(), result.ActivationEnergyKJMol, result.PreExponentialFactor,
		result.PointCount, fitJSON, excludedJSON, result.ComputedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to save Arrhenius result: %w", err)
	}
	return nil
}

func (r *resultRepository) GetArrheniusResult(ctx context.Context, batchID core.BatchID) (*kinetics.ArrheniusResult, error) {
	query := `SELECT activation_energy_kj_mol, pre_exponential_factor, point_count,
		fit, COALESCE(excluded, 'null'::jsonb), computed_at
	FROM arrhenius_results WHERE batch_id = $1`

	var result kinetics.ArrheniusResult
	var fitJSON, excludedJSON []byte
	var computedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, batchID.String()).Scan(
		&result.ActivationEnergyKJMol, &result.PreExponentialFactor, &result.PointCount,
		&fitJSON, &excludedJSON, &computedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get Arrhenius result: %w", err)
	}

	if err := json.Unmarshal(fitJSON, &result.Fit); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fit: %w", err)
	}
	if err := json.Unmarshal(excludedJSON, &result.Excluded); err != nil {
		return nil, fmt.Errorf("failed to unmarshal exclusions: %w", err)
	}
	if computedAt.Valid {
		result.ComputedAt = core.NewTimestamp(computedAt.Time)
	}
	return &result, nil
}

func scanRunResult(rows *sql.Rows) (*kinetics.RunResult, error) {
	var result kinetics.RunResult
	var fitJSON, qualityJSON, flagsJSON []byte
	var computedAt sql.NullTime

	err := rows.Scan(
		&result.Metadata.Label, &result.Metadata.TemperatureK,
		&result.KObs, &result.KIntrinsic, &result.SaltFactor, &result.Anion,
		&fitJSON, &qualityJSON, &flagsJSON, &computedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan run result: %w", err)
	}

	if err := json.Unmarshal(fitJSON, &result.Fit); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fit: %w", err)
	}
	if err := json.Unmarshal(qualityJSON, &result.Quality); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quality: %w", err)
	}
	if err := json.Unmarshal(flagsJSON, &result.Flags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flags: %w", err)
	}
	if computedAt.Valid {
		result.ComputedAt = core.NewTimestamp(computedAt.Time)
	}
	return &result, nil
}
