package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"ngx_pipeline/internal/app/config"
	ingestusecase "ngx_pipeline/internal/feature/ingest/usecase"
	"ngx_pipeline/internal/feature/scraping/adapters/apt"
	"ngx_pipeline/internal/feature/scraping/adapters/gti"
	stockadapters "ngx_pipeline/internal/feature/stocks/adapters"
	symboladapters "ngx_pipeline/internal/feature/symbols/adapters"
	symboldomain "ngx_pipeline/internal/feature/symbols/domain"
	symbolusecase "ngx_pipeline/internal/feature/symbols/usecase"
	platformhttp "ngx_pipeline/internal/platform/http"
	"ngx_pipeline/internal/shared/ratelimiter"
)

// NewScrapers creates the APT and GTI scrapers. Each source has its own page
// cache namespace that keeps only pages with price rows.
func NewScrapers(cfg config.Config, rdb *redis.Client, origin platformhttp.PageFetcher) []ingestusecase.Scraper {
	return []ingestusecase.Scraper{
		apt.NewScraper(cfg.APT, NewPageFetcher(cfg, rdb, origin, "pages:apt", aptHasRows)),
		gti.NewScraper(cfg.GTI, NewPageFetcher(cfg, rdb, origin, "pages:gti", gtiHasRows)),
	}
}

// NewResolverFactory loads the active-symbol file and the rename map once and
// returns a factory that builds a fresh Compact resolver for every run.
func NewResolverFactory(cfg config.Config, db *gorm.DB) (ingestusecase.ResolverFactory, error) {
	norm := symboldomain.Compact
	active, err := symboladapters.LoadActiveSymbols(cfg.ActiveSymbolsFile, norm)
	if err != nil {
		return nil, err
	}
	renames, err := symboladapters.LoadRenameMap(cfg.RenameMapFile, norm)
	if err != nil {
		return nil, err
	}
	stocks := stockadapters.NewStockRepository(db)
	return func() ingestusecase.IdentityResolver {
		return symbolusecase.NewResolver(stocks, cfg.Market, norm, renames, active)
	}, nil
}

// NewIngestUsecase creates the ingest pipeline. Scrape runs pace days with
// DayDelay, backfill runs with BackfillDayDelay.
func NewIngestUsecase(cfg config.Config, db *gorm.DB, rdb *redis.Client, origin platformhttp.PageFetcher, mode ingestusecase.Mode) (*ingestusecase.IngestUsecase, error) {
	newResolver, err := NewResolverFactory(cfg, db)
	if err != nil {
		return nil, err
	}
	delay := cfg.BackfillDayDelay
	if mode == ingestusecase.ModeScrape {
		delay = cfg.DayDelay
	}
	return ingestusecase.NewIngestUsecase(
		NewScrapers(cfg, rdb, origin),
		newResolver,
		stockadapters.NewHistoryRepository(db),
		stockadapters.NewStockRepository(db),
		ratelimiter.FixedDelay{Delay: delay},
		nil,
		cfg.Concurrency,
	), nil
}
