package di

import (
	"gorm.io/gorm"

	runadapters "ngx_pipeline/internal/feature/runs/adapters"
	runhandler "ngx_pipeline/internal/feature/runs/transport/handler"
	runusecase "ngx_pipeline/internal/feature/runs/usecase"
)

// NewRunsUsecase creates the run-report recorder.
func NewRunsUsecase(db *gorm.DB) *runusecase.RunsUsecase {
	return runusecase.NewRunsUsecase(runadapters.NewRunRepository(db))
}

// NewRunsHandler creates the GET /runs handler.
func NewRunsHandler(db *gorm.DB) *runhandler.RunsHandler {
	return runhandler.NewRunsHandler(NewRunsUsecase(db))
}
