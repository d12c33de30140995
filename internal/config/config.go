package config

import (
	"os"
	"strconv"

	"gokinetics/domain/kinetics"
	"gokinetics/internal/errors"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Experiment ExperimentConfig
	Server     ServerConfig
	Database   DatabaseConfig
	Paths      PathConfig
}

// ExperimentConfig holds the chemistry and analysis parameters. It is an
// immutable snapshot: every core operation receives it by value, so runs
// with different configurations can be processed concurrently.
type ExperimentConfig struct {
	Reagents   ReagentConfig  `mapstructure:"reagents"`
	Parameters ParamConfig    `mapstructure:"parameters"`
	Analysis   AnalysisConfig `mapstructure:"analysis"`
}

// ReagentConfig holds stock molarities and the acid counter-ion identity
type ReagentConfig struct {
	AcetoneStockMolarity float64            `mapstructure:"acetone_stock_molarity"`
	AcidStockMolarity    float64            `mapstructure:"acid_stock_molarity"`
	IodineStockMolarity  float64            `mapstructure:"iodine_stock_molarity"`
	AcidAnion            string             `mapstructure:"acid_anion"`
	SaltFactors          map[string]float64 `mapstructure:"salt_factors"`
}

// ParamConfig holds instrument parameters
type ParamConfig struct {
	PathLengthCm          float64 `mapstructure:"path_length_cm"`
	ExtinctionCoefficient float64 `mapstructure:"extinction_coefficient"`
	WavelengthNm          float64 `mapstructure:"wavelength_nm"`
}

// AnalysisConfig holds fit acceptance and robust-regression settings
type AnalysisConfig struct {
	RSquaredThreshold       float64 `mapstructure:"r_squared_threshold"`
	RobustTrials            int     `mapstructure:"robust_trials"`
	RobustResidualThreshold float64 `mapstructure:"robust_residual_threshold"`
	BaseSeed                int64   `mapstructure:"base_seed"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds optional Postgres settings for the API server
type DatabaseConfig struct {
	URL string
}

// PathConfig holds file system paths
type PathConfig struct {
	DataDir   string
	OutputDir string
}

// DefaultExperiment returns the experiment configuration used when no YAML
// file is provided. Values match the reference iodination setup.
func DefaultExperiment() ExperimentConfig {
	return ExperimentConfig{
		Reagents: ReagentConfig{
			AcetoneStockMolarity: 4.0,
			AcidStockMolarity:    1.0,
			IodineStockMolarity:  0.005,
			AcidAnion:            "Cl-",
			SaltFactors: map[string]float64{
				"Cl-":   1.0,
				"SO4--": 1.4,
				"ClO4-": 0.9,
			},
		},
		Parameters: ParamConfig{
			PathLengthCm:          1.0,
			ExtinctionCoefficient: 900,
			WavelengthNm:          565,
		},
		Analysis: AnalysisConfig{
			RSquaredThreshold:       0.98,
			RobustTrials:            100,
			RobustResidualThreshold: 0, // 0 means derive from residual MAD
			BaseSeed:                42,
		},
	}
}

// Load reads configuration from environment variables plus an optional
// experiment YAML (path from EXPERIMENT_CONFIG, default config.yaml when
// present) and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Experiment: DefaultExperiment(),
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Paths: PathConfig{
			DataDir:   getEnvOrDefault("DATA_DIR", "data/raw"),
			OutputDir: getEnvOrDefault("OUTPUT_DIR", "output"),
		},
	}

	path := getEnvOrDefault("EXPERIMENT_CONFIG", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		exp, err := LoadExperimentFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load experiment configuration")
		}
		cfg.Experiment = *exp
	}

	if seedStr := os.Getenv("BASE_SEED"); seedStr != "" {
		seed, err := strconv.ParseInt(seedStr, 10, 64)
		if err != nil {
			return nil, errors.ConfigInvalid("BASE_SEED must be an integer")
		}
		cfg.Experiment.Analysis.BaseSeed = seed
	}

	if err := cfg.Experiment.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return cfg, nil
}

// LoadExperimentFile reads an experiment YAML via viper. Missing keys fall
// back to the reference defaults so a partial file stays usable.
func LoadExperimentFile(path string) (*ExperimentConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	defaults := DefaultExperiment()
	v.SetDefault("experiment.reagents.acetone_stock_molarity", defaults.Reagents.AcetoneStockMolarity)
	v.SetDefault("experiment.reagents.acid_stock_molarity", defaults.Reagents.AcidStockMolarity)
	v.SetDefault("experiment.reagents.iodine_stock_molarity", defaults.Reagents.IodineStockMolarity)
	v.SetDefault("experiment.reagents.acid_anion", defaults.Reagents.AcidAnion)
	v.SetDefault("experiment.reagents.salt_factors", defaults.Reagents.SaltFactors)
	v.SetDefault("experiment.parameters.path_length_cm", defaults.Parameters.PathLengthCm)
	v.SetDefault("experiment.parameters.extinction_coefficient", defaults.Parameters.ExtinctionCoefficient)
	v.SetDefault("experiment.parameters.wavelength_nm", defaults.Parameters.WavelengthNm)
	v.SetDefault("experiment.analysis.r_squared_threshold", defaults.Analysis.RSquaredThreshold)
	v.SetDefault("experiment.analysis.robust_trials", defaults.Analysis.RobustTrials)
	v.SetDefault("experiment.analysis.robust_residual_threshold", defaults.Analysis.RobustResidualThreshold)
	v.SetDefault("experiment.analysis.base_seed", defaults.Analysis.BaseSeed)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read experiment config %s", path)
	}

	var exp ExperimentConfig
	if err := v.UnmarshalKey("experiment", &exp); err != nil {
		return nil, errors.Wrap(err, "failed to parse experiment config")
	}
	return &exp, nil
}

// Validate rejects physically impossible parameters. Invalid values are
// surfaced immediately, never silently defaulted.
func (e ExperimentConfig) Validate() error {
	if e.Parameters.ExtinctionCoefficient <= 0 {
		return errors.ConfigInvalid("extinction_coefficient must be > 0")
	}
	if e.Parameters.PathLengthCm <= 0 {
		return errors.ConfigInvalid("path_length_cm must be > 0")
	}
	if e.Analysis.RSquaredThreshold <= 0 || e.Analysis.RSquaredThreshold > 1 {
		return errors.ConfigInvalid("r_squared_threshold must be in (0, 1]")
	}
	if e.Analysis.RobustTrials <= 0 {
		return errors.ConfigInvalid("robust_trials must be > 0")
	}
	if err := kinetics.SaltTable(e.Reagents.SaltFactors).Validate(); err != nil {
		return errors.Wrap(err, "invalid salt factor table")
	}
	return nil
}

// SaltTable returns the configured anion factor table as the domain type
func (e ExperimentConfig) SaltTable() kinetics.SaltTable {
	return kinetics.SaltTable(e.Reagents.SaltFactors)
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
