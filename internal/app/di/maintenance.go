package di

import (
	"gorm.io/gorm"

	"ngx_pipeline/internal/app/config"
	maintenanceadapters "ngx_pipeline/internal/feature/maintenance/adapters"
	maintenanceusecase "ngx_pipeline/internal/feature/maintenance/usecase"
	stockadapters "ngx_pipeline/internal/feature/stocks/adapters"
	"ngx_pipeline/internal/platform/externalapi/ngx"
	platformhttp "ngx_pipeline/internal/platform/http"
	"ngx_pipeline/internal/shared/ratelimiter"
)

// NewMergeUsecase creates the duplicate-stock merger writing audits to AuditDir.
func NewMergeUsecase(cfg config.Config, db *gorm.DB) *maintenanceusecase.MergeUsecase {
	return maintenanceusecase.NewMergeUsecase(
		stockadapters.NewMergeRepository(db),
		stockadapters.NewStockRepository(db),
		maintenanceadapters.NewAuditFileWriter(cfg.AuditDir),
		cfg.Market,
	)
}

// NewPercentChangeUsecase creates the percent-change backfill.
func NewPercentChangeUsecase(cfg config.Config, db *gorm.DB) *maintenanceusecase.PercentChangeUsecase {
	return maintenanceusecase.NewPercentChangeUsecase(
		stockadapters.NewStockRepository(db),
		stockadapters.NewHistoryRepository(db),
		ratelimiter.FixedDelay{Delay: cfg.PercentChangeDelay},
		cfg.Market,
	)
}

// NewSectorUsecase creates the sector backfill fed by the NGX equities API.
// origin must be uncached.
func NewSectorUsecase(cfg config.Config, db *gorm.DB, origin platformhttp.PageFetcher) *maintenanceusecase.SectorUsecase {
	return maintenanceusecase.NewSectorUsecase(
		ngx.NewSectorFeed(cfg.Feed, origin),
		stockadapters.NewStockRepository(db),
		stockadapters.NewHistoryRepository(db),
		cfg.Market,
		cfg.SectorBatch,
	)
}

// NewCleanupUsecase creates the source-tag cleanup.
func NewCleanupUsecase(db *gorm.DB) *maintenanceusecase.CleanupUsecase {
	return maintenanceusecase.NewCleanupUsecase(stockadapters.NewStockRepository(db))
}

// NewDiagnoseUsecase creates the symbol-matching diagnosis. origin must be uncached.
func NewDiagnoseUsecase(cfg config.Config, db *gorm.DB, origin platformhttp.PageFetcher) *maintenanceusecase.DiagnoseUsecase {
	return maintenanceusecase.NewDiagnoseUsecase(
		ngx.NewSectorFeed(cfg.Feed, origin),
		stockadapters.NewStockRepository(db),
		cfg.Market,
	)
}
