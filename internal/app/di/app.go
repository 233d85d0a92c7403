package di

import (
	"context"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"ngx_pipeline/internal/app/config"
	runusecase "ngx_pipeline/internal/feature/runs/usecase"
	"ngx_pipeline/internal/platform/db"
	platformhttp "ngx_pipeline/internal/platform/http"
	"ngx_pipeline/internal/platform/logger"
	platformredis "ngx_pipeline/internal/platform/redis"
)

// App holds the shared infrastructure of one command process.
type App struct {
	Config config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	// Origin is the uncached fetcher; scrapers add their own page cache.
	Origin platformhttp.PageFetcher
	Runs   *runusecase.RunsUsecase
}

// Bootstrap loads .env, installs the logger, validates the config and opens
// the database and the optional Redis cache. Close releases them.
func Bootstrap(ctx context.Context) (*App, error) {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		slog.Debug(".env not found; using system environment variables")
	}
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// DB初期化（マイグレーション込み）
	gdb, err := db.OpenDB(cfg.DB)
	if err != nil {
		return nil, err
	}

	// Redis は任意。繋がらなければキャッシュなしで続行
	rdb, err := platformredis.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		slog.Warn("Redis unavailable. Running without page cache.", "error", err)
		rdb = nil
	}

	return &App{
		Config: cfg,
		DB:     gdb,
		Redis:  rdb,
		Origin: NewOriginFetcher(cfg),
		Runs:   NewRunsUsecase(gdb),
	}, nil
}

// Close releases the database and Redis connections.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			slog.Error("failed to close Redis client", "error", err)
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}
}
