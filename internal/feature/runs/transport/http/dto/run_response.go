// Package dto holds the JSON shapes of the runs API.
package dto

import "encoding/json"

// RunResponse is one run as served by GET /runs.
type RunResponse struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	DryRun     bool            `json:"dry_run"`
	StartedAt  string          `json:"started_at"`
	FinishedAt string          `json:"finished_at"`
	Success    bool            `json:"success"`
	Summary    json.RawMessage `json:"summary,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
