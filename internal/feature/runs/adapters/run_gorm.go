// Package adapters stores run summaries with gorm.
package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"

	"ngx_pipeline/internal/feature/runs/domain/entity"
	"ngx_pipeline/internal/feature/runs/usecase"
)

// RunModel is the ingest_runs table.
type RunModel struct {
	ID         string    `gorm:"primaryKey;size:36"`
	Kind       string    `gorm:"size:32;not null;index:idx_run_kind_started,priority:1"`
	DryRun     bool      `gorm:"not null;default:false"`
	StartedAt  time.Time `gorm:"not null;index:idx_run_kind_started,priority:2"`
	FinishedAt time.Time `gorm:"not null"`
	Summary    string    `gorm:"type:text"`
	Error      string    `gorm:"type:text"`
}

func (RunModel) TableName() string {
	return "ingest_runs"
}

type runGorm struct {
	db *gorm.DB
}

var _ usecase.RunRepository = (*runGorm)(nil)

// NewRunRepository returns the gorm-backed run repository.
func NewRunRepository(db *gorm.DB) *runGorm {
	return &runGorm{db: db}
}

// AutoMigrate creates the ingest_runs table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&RunModel{})
}

// Create inserts a run.
func (r *runGorm) Create(ctx context.Context, run entity.Run) error {
	m := RunModel{
		ID:         run.ID,
		Kind:       string(run.Kind),
		DryRun:     run.DryRun,
		StartedAt:  run.StartedAt.UTC(),
		FinishedAt: run.FinishedAt.UTC(),
		Summary:    run.Summary,
		Error:      run.Error,
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

// ListLatest returns up to limit runs, newest first. An empty kind matches all.
func (r *runGorm) ListLatest(ctx context.Context, kind entity.Kind, limit int) ([]entity.Run, error) {
	q := r.db.WithContext(ctx).Model(&RunModel{})
	if kind != "" {
		q = q.Where("kind = ?", string(kind))
	}
	var rows []RunModel
	if err := q.Order("started_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Run, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.Run{
			ID:         m.ID,
			Kind:       entity.Kind(m.Kind),
			DryRun:     m.DryRun,
			StartedAt:  m.StartedAt,
			FinishedAt: m.FinishedAt,
			Summary:    m.Summary,
			Error:      m.Error,
		})
	}
	return out, nil
}
