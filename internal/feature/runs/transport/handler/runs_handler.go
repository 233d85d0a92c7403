// Package handler serves run summaries over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ngx_pipeline/internal/feature/runs/domain/entity"
	"ngx_pipeline/internal/feature/runs/transport/http/dto"
)

// RunsLister lists the latest runs.
// Following Go convention: interfaces are defined by the consumer.
type RunsLister interface {
	List(ctx context.Context, kind entity.Kind, limit int) ([]entity.Run, error)
}

// RunsHandler handles the runs endpoints.
type RunsHandler struct {
	uc RunsLister
}

// NewRunsHandler returns a handler backed by uc.
func NewRunsHandler(uc RunsLister) *RunsHandler {
	return &RunsHandler{uc: uc}
}

// List returns the latest runs as JSON.
//
// GET /runs?kind=ingest&limit=20
func (h *RunsHandler) List(c *gin.Context) {
	kind := entity.Kind(c.Query("kind"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	runs, err := h.uc.List(c.Request.Context(), kind, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	out := make([]dto.RunResponse, 0, len(runs))
	for _, r := range runs {
		resp := dto.RunResponse{
			ID:         r.ID,
			Kind:       string(r.Kind),
			DryRun:     r.DryRun,
			StartedAt:  r.StartedAt.UTC().Format(time.RFC3339),
			FinishedAt: r.FinishedAt.UTC().Format(time.RFC3339),
			Success:    r.Succeeded(),
			Error:      r.Error,
		}
		if r.Summary != "" && json.Valid([]byte(r.Summary)) {
			resp.Summary = json.RawMessage(r.Summary)
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, out)
}
