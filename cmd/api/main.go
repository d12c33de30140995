package main

import (
	"log"
	"net/http"

	"gokinetics/adapters/api"
	"gokinetics/adapters/memory"
	"gokinetics/adapters/postgres"
	"gokinetics/adapters/rng"
	"gokinetics/adapters/stats/engine"
	"gokinetics/app"
	"gokinetics/internal"
	"gokinetics/internal/config"
	"gokinetics/ports"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.DefaultLogger

	// Postgres when configured, in-memory otherwise
	var repo ports.ResultRepository
	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := postgres.Migrate(db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		repo = postgres.NewResultRepository(db)
		logger.Info("using Postgres result repository")
	} else {
		repo = memory.NewResultRepository()
		logger.Info("DATABASE_URL not set, using in-memory result repository")
	}

	fitter := engine.NewFitEngine()
	source := rng.NewSeededRNG()
	rates := app.NewRateService(fitter, source, logger)
	arrhenius := app.NewArrheniusService(fitter, logger)
	batch := app.NewBatchService(rates, arrhenius, logger)

	server := api.NewServer(batch, repo, cfg.Experiment, logger)
	logger.Info("API listening on :%s", cfg.Server.Port)
	if err := http.ListenAndServe(":"+cfg.Server.Port, server.Handler()); err != nil {
		log.Fatalf("API server failed: %v", err)
	}
}
