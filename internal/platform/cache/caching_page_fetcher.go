// Package cache provides caching decorators for outbound page fetches.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	platformhttp "ngx_pipeline/internal/platform/http"
)

// notFoundMarker is stored in place of a body for URLs that answered 404/410.
const notFoundMarker = "\x00not-found"

// BodyCheck reports whether a fetched body is worth caching.
type BodyCheck func(body []byte) bool

// CachingPageFetcher decorates a PageFetcher with Redis caching.
// Price lists for past days never change, so bodies are kept for ttl.
// Missing GTI candidates are remembered until the next publish time, which
// lets reruns skip the URL patterns that are known to 404.
type CachingPageFetcher struct {
	inner     platformhttp.PageFetcher
	rdb       *redis.Client
	ttl       time.Duration
	missTTL   func() time.Duration
	namespace string
	// keep が false を返したボディはキャッシュしない（表のないページ、公開前のページ）
	keep BodyCheck
}

var _ platformhttp.PageFetcher = (*CachingPageFetcher)(nil)

// NewCachingPageFetcher wraps inner. If ttl is 0 it defaults to 7 days; an
// empty namespace becomes "pages". A nil rdb turns the decorator into a pass-through.
func NewCachingPageFetcher(rdb *redis.Client, ttl time.Duration, inner platformhttp.PageFetcher, namespace string) *CachingPageFetcher {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	if namespace == "" {
		namespace = "pages"
	}
	return &CachingPageFetcher{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		missTTL:   TimeUntilNextPublish,
		namespace: namespace,
	}
}

// WithBodyCheck makes the decorator store only bodies accepted by keep.
// Rejected bodies are returned to the caller but fetched again next time.
func (c *CachingPageFetcher) WithBodyCheck(keep BodyCheck) *CachingPageFetcher {
	c.keep = keep
	return c
}

// Fetch checks the cache first, then falls back to the inner fetcher.
func (c *CachingPageFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if c.rdb == nil {
		return c.inner.Fetch(ctx, url)
	}

	key := c.cacheKey(url)

	// 1) cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		if string(b) == notFoundMarker {
			slog.Debug("page cache: known missing", "url", url)
			return nil, &platformhttp.StatusError{URL: url, Code: http.StatusNotFound}
		}
		return b, nil
	}

	// 2) origin
	body, err := c.inner.Fetch(ctx, url)
	if err != nil {
		if platformhttp.IsNotFound(err) {
			_ = c.rdb.Set(ctx, key, notFoundMarker, c.missTTL()).Err()
		}
		return nil, err
	}

	// 3) store, best effort
	if c.keep != nil && !c.keep(body) {
		slog.Debug("page cache: body rejected, not stored", "url", url)
		return body, nil
	}
	if len(body) > 0 {
		_ = c.rdb.Set(ctx, key, body, c.ttl).Err()
	}
	return body, nil
}

func (c *CachingPageFetcher) cacheKey(url string) string {
	return Key(c.namespace, url)
}

// Key returns the Redis key of url under namespace.
func Key(namespace, url string) string {
	return fmt.Sprintf("%s:%s", namespace, safe(url))
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
