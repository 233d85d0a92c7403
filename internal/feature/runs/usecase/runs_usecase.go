// Package usecase records and lists command runs.
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ngx_pipeline/internal/feature/runs/domain/entity"
)

const (
	// DefaultListLimit is the number of runs returned when none is requested.
	DefaultListLimit = 20
	// MaxListLimit caps a single listing.
	MaxListLimit = 200
)

// RunRepository persists runs.
// Following Go convention: interfaces are defined by the consumer.
type RunRepository interface {
	Create(ctx context.Context, run entity.Run) error
	ListLatest(ctx context.Context, kind entity.Kind, limit int) ([]entity.Run, error)
}

// RunsUsecase writes one summary per command and serves the latest ones.
type RunsUsecase struct {
	repo RunRepository
	now  func() time.Time
}

// NewRunsUsecase returns the use case.
func NewRunsUsecase(repo RunRepository) *RunsUsecase {
	return &RunsUsecase{repo: repo, now: time.Now}
}

// Record stores a finished run. summary is encoded as JSON; runErr, if any,
// becomes the run's error message. id may be empty.
func (u *RunsUsecase) Record(ctx context.Context, id string, kind entity.Kind, dryRun bool, started time.Time, summary any, runErr error) (entity.Run, error) {
	if id == "" {
		id = uuid.NewString()
	}
	run := entity.Run{
		ID:         id,
		Kind:       kind,
		DryRun:     dryRun,
		StartedAt:  started,
		FinishedAt: u.now(),
	}
	if summary != nil {
		b, err := json.Marshal(summary)
		if err != nil {
			return run, fmt.Errorf("encode run summary: %w", err)
		}
		run.Summary = string(b)
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if err := u.repo.Create(ctx, run); err != nil {
		return run, fmt.Errorf("record %s run: %w", kind, err)
	}
	slog.Info("run recorded", "run_id", run.ID, "kind", kind, "dry_run", dryRun,
		"duration", run.FinishedAt.Sub(started), "error", run.Error)
	return run, nil
}

// List returns the latest runs of kind, newest first.
func (u *RunsUsecase) List(ctx context.Context, kind entity.Kind, limit int) ([]entity.Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return u.repo.ListLatest(ctx, kind, limit)
}
