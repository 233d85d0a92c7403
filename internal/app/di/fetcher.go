// Package di provides dependency injection factories for creating application components.
package di

import (
	"github.com/redis/go-redis/v9"

	"ngx_pipeline/internal/app/config"
	"ngx_pipeline/internal/feature/scraping/adapters/apt"
	"ngx_pipeline/internal/feature/scraping/adapters/gti"
	"ngx_pipeline/internal/platform/cache"
	platformhttp "ngx_pipeline/internal/platform/http"
)

// NewOriginFetcher creates the uncached HTTP fetcher. The NGX reference feed
// uses it directly so sector data is always current.
func NewOriginFetcher(cfg config.Config) platformhttp.PageFetcher {
	httpClient := platformhttp.NewHTTPClient(cfg.Fetcher.Timeout)
	return platformhttp.NewHTTPFetcher(cfg.Fetcher, httpClient)
}

// NewPageFetcher wraps origin in the Redis page cache under namespace. Only
// bodies accepted by keep are stored. A nil rdb disables caching.
func NewPageFetcher(cfg config.Config, rdb *redis.Client, origin platformhttp.PageFetcher, namespace string, keep cache.BodyCheck) platformhttp.PageFetcher {
	return cache.NewCachingPageFetcher(rdb, cfg.Redis.PageTTL, origin, namespace).WithBodyCheck(keep)
}

// aptHasRows accepts APT pages that parse to at least one row. An empty
// table is a holiday or a list that is not published yet.
func aptHasRows(body []byte) bool {
	records, err := apt.Parse(body)
	return err == nil && len(records) > 0
}

// gtiHasRows accepts GTI posts with a price table that yields rows.
func gtiHasRows(body []byte) bool {
	records, err := gti.Parse(body)
	return err == nil && len(records) > 0
}
