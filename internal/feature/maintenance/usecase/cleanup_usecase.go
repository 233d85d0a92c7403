package usecase

import (
	"context"
	"log/slog"

	"ngx_pipeline/internal/feature/maintenance/domain/entity"
)

// DefaultCleanupSource is the tag of the retired daily feed.
const DefaultCleanupSource = "ngx-daily"

// SourceCleaner counts and deletes stocks by source tag.
type SourceCleaner interface {
	CountBySource(ctx context.Context, source string) (stocks, histories int64, err error)
	DeleteBySource(ctx context.Context, source string) (stocks, histories int64, err error)
}

// CleanupUsecase removes every stock carrying a source tag with its history.
type CleanupUsecase struct {
	store SourceCleaner
}

// NewCleanupUsecase returns the cleanup.
func NewCleanupUsecase(store SourceCleaner) *CleanupUsecase {
	return &CleanupUsecase{store: store}
}

// Run deletes, or in dry-run only counts, the rows tagged with source.
func (cu *CleanupUsecase) Run(ctx context.Context, source string, dryRun bool) (entity.CleanupSummary, error) {
	if source == "" {
		source = DefaultCleanupSource
	}
	sum := entity.CleanupSummary{Source: source, DryRun: dryRun}

	var err error
	if dryRun {
		sum.Stocks, sum.Histories, err = cu.store.CountBySource(ctx, source)
	} else {
		sum.Stocks, sum.Histories, err = cu.store.DeleteBySource(ctx, source)
	}
	if err != nil {
		return sum, err
	}
	slog.Info("source cleanup finished", "source", source, "stocks", sum.Stocks, "histories", sum.Histories, "dry_run", dryRun)
	return sum, nil
}
