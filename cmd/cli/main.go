package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gokinetics/adapters/ingest"
	"gokinetics/adapters/rng"
	"gokinetics/adapters/stats/engine"
	"gokinetics/app"
	"gokinetics/internal"
	"gokinetics/internal/config"
	"gokinetics/internal/report"
	"gokinetics/internal/testkit"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "gokinetics",
		Short: "Kinetic analysis of absorbance traces: rates, salt correction, Arrhenius parameters",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newDatagenCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var dataDir string
	var outPath string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Process every trace in a directory and write the analysis report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dataDir == "" {
				dataDir = cfg.Paths.DataDir
			}
			if outPath == "" {
				outPath = filepath.Join(cfg.Paths.OutputDir, "final_report.md")
			}

			logger := internal.DefaultLogger
			fitter := engine.NewFitEngine()
			source := rng.NewSeededRNG()
			batch := app.NewBatchService(
				app.NewRateService(fitter, source, logger),
				app.NewArrheniusService(fitter, logger),
				logger,
			)
			reader := ingest.NewTraceReader(logger)

			ctx := context.Background()
			runs, skipped, err := reader.ScanDirectory(ctx, dataDir)
			if err != nil {
				return err
			}
			for _, name := range skipped {
				fmt.Printf("  [Skipping] %s\n", name)
			}
			if len(runs) == 0 {
				return fmt.Errorf("no readable traces in %s (filenames must contain the temperature, e.g. run_298K.csv)", dataDir)
			}

			outcome, err := batch.Process(ctx, runs, cfg.Experiment)
			if err != nil {
				return err
			}

			for _, r := range outcome.Results {
				fmt.Printf("  [Processed] %s: T=%gK, k_obs=%.2e, k_int=%.2e, R²=%.4f (%s)\n",
					r.Metadata.Label, r.Metadata.TemperatureK, r.KObs, r.KIntrinsic,
					r.Fit.RSquared, r.Fit.Method)
			}
			for _, f := range outcome.Failures {
				fmt.Printf("  [Error] %s: %s\n", f.Label, f.Message)
			}
			if outcome.Arrhenius != nil {
				a := outcome.Arrhenius
				fmt.Printf("\nE_a: %.2f kJ/mol\nA: %.2e\nArrhenius R²: %.4f\n",
					a.ActivationEnergyKJMol, a.PreExponentialFactor, a.Fit.RSquared)
			} else if outcome.ArrheniusErr != nil {
				fmt.Printf("\nArrhenius analysis unavailable: %v\n", outcome.ArrheniusErr)
			}

			factor, _ := cfg.Experiment.SaltTable().Factor(cfg.Experiment.Reagents.AcidAnion)
			md := report.NewGenerator().Markdown(outcome, cfg.Experiment.Reagents.AcidAnion, factor)
			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(outPath, []byte(md), 0o644); err != nil {
				return err
			}
			fmt.Printf("\nReport written to %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data", "", "directory of trace files (default from DATA_DIR)")
	cmd.Flags().StringVar(&outPath, "out", "", "report output path (default OUTPUT_DIR/final_report.md)")
	return cmd
}

func newDatagenCmd() *cobra.Command {
	var outDir string
	var seed int64
	var ea float64
	var aFactor float64
	var noise float64

	cmd := &cobra.Command{
		Use:   "datagen",
		Short: "Generate synthetic Arrhenius trace files for demos and stress tests",
		RunE: func(cmd *cobra.Command, args []string) error {
			kit := testkit.NewTestKit(seed)
			runs, err := kit.Generator.GenerateArrheniusSet(
				ea, aFactor, []float64{288, 298, 308, 318, 328}, noise)
			if err != nil {
				return err
			}
			for _, run := range runs {
				path, err := testkit.WriteRunCSV(run, outDir)
				if err != nil {
					return err
				}
				fmt.Printf("Generated %s (T=%gK)\n", path, run.Metadata.TemperatureK)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "data/raw", "output directory for generated traces")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	cmd.Flags().Float64Var(&ea, "ea", 75000, "activation energy in J/mol")
	cmd.Flags().Float64Var(&aFactor, "a", 2.8e6, "pre-exponential factor")
	cmd.Flags().Float64Var(&noise, "noise", 0.005, "gaussian absorbance noise std dev")
	return cmd
}
