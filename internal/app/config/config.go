// Package config assembles and validates the pipeline configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	ingestusecase "ngx_pipeline/internal/feature/ingest/usecase"
	maintenanceusecase "ngx_pipeline/internal/feature/maintenance/usecase"
	"ngx_pipeline/internal/feature/scraping/adapters/apt"
	"ngx_pipeline/internal/feature/scraping/adapters/gti"
	stockentity "ngx_pipeline/internal/feature/stocks/domain/entity"
	symboladapters "ngx_pipeline/internal/feature/symbols/adapters"
	"ngx_pipeline/internal/platform/db"
	"ngx_pipeline/internal/platform/externalapi/ngx"
	platformhttp "ngx_pipeline/internal/platform/http"
	platformredis "ngx_pipeline/internal/platform/redis"
)

// Config is everything a command needs. Each sub-config is loaded by its
// own package; the fields here are the pipeline knobs.
type Config struct {
	Market   string `validate:"required"`
	LogLevel string `validate:"omitempty,oneof=debug info warn warning error"`

	ActiveSymbolsFile string `validate:"required"`
	RenameMapFile     string
	AuditDir          string `validate:"required"`

	// DayDelay paces scrape runs, BackfillDayDelay backfill runs.
	DayDelay         time.Duration `validate:"gte=0"`
	BackfillDayDelay time.Duration `validate:"gte=0"`
	// PercentChangeDelay is the pause between stocks of the percent-change backfill.
	PercentChangeDelay time.Duration `validate:"gte=0"`
	Concurrency        int           `validate:"gte=1,lte=200"`
	SectorBatch        int           `validate:"gte=1,lte=10000"`

	// IngestSchedule: 設定されていれば cmd/ingest を常駐させて定期実行する
	IngestSchedule string `validate:"omitempty,cron"`
	ServerAddr     string `validate:"required"`

	DB      db.Config
	Redis   platformredis.Config
	Fetcher platformhttp.FetcherConfig
	APT     apt.Config
	GTI     gti.Config
	Feed    ngx.Config
}

// Load reads the environment and validates the result.
func Load() (Config, error) {
	cfg := Config{
		Market:             stockentity.Market,
		LogLevel:           os.Getenv("LOG_LEVEL"),
		ActiveSymbolsFile:  envOr("ACTIVE_SYMBOLS_FILE", symboladapters.DefaultActiveSymbolsFile),
		RenameMapFile:      os.Getenv("RENAME_MAP_FILE"),
		AuditDir:           envOr("AUDIT_DIR", "."),
		DayDelay:           envMillis("DAY_DELAY_MS", time.Second),
		BackfillDayDelay:   envMillis("BACKFILL_DAY_DELAY_MS", 500*time.Millisecond),
		PercentChangeDelay: envMillis("PERCENT_CHANGE_DELAY_MS", 100*time.Millisecond),
		Concurrency:        envInt("INGEST_CONCURRENCY", ingestusecase.DefaultConcurrency),
		SectorBatch:        envInt("SECTOR_BATCH_SIZE", maintenanceusecase.DefaultSectorBatch),
		IngestSchedule:     os.Getenv("INGEST_SCHEDULE"),
		ServerAddr:         envOr("SERVER_ADDR", ":8080"),
		DB:                 db.LoadConfigFromEnv(),
		Redis:              platformredis.LoadConfig(),
		Fetcher:            platformhttp.LoadFetcherConfig(),
		APT:                apt.LoadConfig(),
		GTI:                gti.LoadConfig(),
		Feed:               ngx.LoadConfig(),
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cfg against its struct tags plus the cross-field rules.
func Validate(cfg Config) error {
	v := validator.New()
	if err := v.RegisterValidation("cron", validCron); err != nil {
		return err
	}
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.DB.Driver != db.DriverSQLite && cfg.DB.Driver != db.DriverPostgres {
		return fmt.Errorf("invalid config: DB_DRIVER must be %q or %q, got %q", db.DriverSQLite, db.DriverPostgres, cfg.DB.Driver)
	}
	if cfg.DB.Driver == db.DriverPostgres && cfg.DB.Host == "" && cfg.DB.InstanceName == "" {
		return fmt.Errorf("invalid config: postgres needs DB_HOST or INSTANCE_CONNECTION_NAME")
	}
	return nil
}

func validCron(fl validator.FieldLevel) bool {
	_, err := cron.ParseStandard(fl.Field().String())
	return err == nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envMillis(key string, def time.Duration) time.Duration {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return time.Duration(v) * time.Millisecond
	}
	return def
}
