package api

import (
	"gokinetics/domain/kinetics"
)

// AnalyzeRequest is the JSON body for POST /api/v1/analyze. Each run carries
// its temperature pre-resolved; the API does not parse filenames.
type AnalyzeRequest struct {
	Runs []RunPayload `json:"runs"`
}

// RunPayload is one trace in an analyze request
type RunPayload struct {
	Label        string               `json:"label"`
	TemperatureK float64              `json:"temperature_k"`
	Samples      []kinetics.RawSample `json:"samples"`
}

// AnalyzeResponse returns the batch identity plus everything the batch
// produced; failures are reported inline, never dropped
type AnalyzeResponse struct {
	BatchID   string                    `json:"batch_id"`
	Results   []kinetics.RunResult      `json:"results"`
	Failures  []FailurePayload          `json:"failures,omitempty"`
	Arrhenius *kinetics.ArrheniusResult `json:"arrhenius,omitempty"`
	Warning   string                    `json:"warning,omitempty"`
}

// FailurePayload describes a run that could not be processed
type FailurePayload struct {
	Label     string `json:"label"`
	Component string `json:"component"`
	Message   string `json:"message"`
}

// ErrorResponse is the uniform error envelope
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
