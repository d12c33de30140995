package main

import (
	"log"

	"gokinetics/adapters/ingest"
	"gokinetics/adapters/rng"
	"gokinetics/adapters/stats/engine"
	"gokinetics/app"
	"gokinetics/internal"
	"gokinetics/internal/config"
	"gokinetics/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present; real env vars win
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(cfg.Server.GinMode)

	logger := internal.DefaultLogger

	fitter := engine.NewFitEngine()
	source := rng.NewSeededRNG()
	rates := app.NewRateService(fitter, source, logger)
	arrhenius := app.NewArrheniusService(fitter, logger)
	batch := app.NewBatchService(rates, arrhenius, logger)
	reader := ingest.NewTraceReader(logger)

	server := ui.NewServer(reader, batch, cfg.Experiment, logger)
	if err := server.Run(cfg.Server.Port); err != nil {
		log.Fatalf("Dashboard server failed: %v", err)
	}
}
