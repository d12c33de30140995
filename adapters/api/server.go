package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"gokinetics/app"
	"gokinetics/domain/core"
	"gokinetics/domain/kinetics"
	"gokinetics/internal"
	"gokinetics/internal/config"
	apperrors "gokinetics/internal/errors"
	"gokinetics/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server exposes the analysis pipeline as a JSON API
type Server struct {
	batch  *app.BatchService
	repo   ports.ResultRepository
	exp    config.ExperimentConfig
	logger *internal.Logger
	router chi.Router
}

// NewServer creates a new API server
func NewServer(batch *app.BatchService, repo ports.ResultRepository, exp config.ExperimentConfig, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{batch: batch, repo: repo, exp: exp, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/batches/{batchID}/runs", s.handleListRuns)
		r.Get("/batches/{batchID}/arrhenius", s.handleArrhenius)
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler for the server
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalyze runs the full pipeline over the posted runs and persists
// the outcome
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.InvalidInput("malformed analyze request"))
		return
	}
	if len(req.Runs) == 0 {
		writeError(w, http.StatusBadRequest, apperrors.InvalidInput("analyze request contains no runs"))
		return
	}

	runs := make([]kinetics.Run, 0, len(req.Runs))
	failures := make([]FailurePayload, 0)
	for _, p := range req.Runs {
		run, err := kinetics.NewRun(kinetics.RunMetadata{
			TemperatureK: p.TemperatureK,
			Label:        p.Label,
		}, p.Samples)
		if err != nil {
			failures = append(failures, FailurePayload{
				Label: p.Label, Component: "ingest", Message: err.Error(),
			})
			continue
		}
		runs = append(runs, run)
	}

	outcome, err := s.batch.Process(r.Context(), runs, s.exp)
	if err != nil {
		status := http.StatusInternalServerError
		if core.IsInvalidConfig(err) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err)
		return
	}

	for _, result := range outcome.Results {
		if err := s.repo.SaveRunResult(r.Context(), outcome.BatchID, result); err != nil {
			s.logger.Error("failed to persist run result %s: %v", result.Metadata.Label, err)
		}
	}
	if outcome.Arrhenius != nil {
		if err := s.repo.SaveArrheniusResult(r.Context(), outcome.BatchID, *outcome.Arrhenius); err != nil {
			s.logger.Error("failed to persist Arrhenius result: %v", err)
		}
	}

	resp := AnalyzeResponse{
		BatchID:   outcome.BatchID.String(),
		Results:   outcome.Results,
		Arrhenius: outcome.Arrhenius,
		Failures:  failures,
	}
	for _, f := range outcome.Failures {
		resp.Failures = append(resp.Failures, FailurePayload{
			Label: f.Label, Component: f.Component, Message: f.Message,
		})
	}
	if outcome.ArrheniusErr != nil {
		resp.Warning = outcome.ArrheniusErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	batchID := core.BatchID(chi.URLParam(r, "batchID"))
	results, err := s.repo.ListRunResults(r.Context(), batchID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleArrhenius(w http.ResponseWriter, r *http.Request) {
	batchID := core.BatchID(chi.URLParam(r, "batchID"))
	result, err := s.repo.GetArrheniusResult(r.Context(), batchID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, http.StatusNotFound, apperrors.NotFound("arrhenius result"))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{
		Code:    apperrors.GetCode(err),
		Message: err.Error(),
	})
}
