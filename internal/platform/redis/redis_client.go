// Package redis opens the optional Redis connection behind the page cache.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config selects the Redis server. URL wins over Host/Port.
type Config struct {
	URL      string
	Host     string
	Port     string
	Password string
	DB       int
	// PageTTL is how long fetched price-list bodies stay cached.
	PageTTL time.Duration
}

// Enabled reports whether any server was configured.
func (c Config) Enabled() bool {
	return c.URL != "" || c.Host != ""
}

// LoadConfig reads REDIS_URL, REDIS_HOST, REDIS_PORT, REDIS_PASSWORD,
// REDIS_DB and PAGE_CACHE_TTL_HOURS.
func LoadConfig() Config {
	cfg := Config{
		URL:      os.Getenv("REDIS_URL"),
		Host:     os.Getenv("REDIS_HOST"),
		Port:     os.Getenv("REDIS_PORT"),
		Password: os.Getenv("REDIS_PASSWORD"),
		PageTTL:  7 * 24 * time.Hour,
	}
	if cfg.Port == "" {
		cfg.Port = "6379"
	}
	if v, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil && v >= 0 {
		cfg.DB = v
	}
	if v, err := strconv.Atoi(os.Getenv("PAGE_CACHE_TTL_HOURS")); err == nil && v > 0 {
		cfg.PageTTL = time.Duration(v) * time.Hour
	}
	return cfg
}

// Options converts cfg into client options.
func Options(cfg Config) (*redis.Options, error) {
	if cfg.URL != "" {
		opt, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		return opt, nil
	}
	return &redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	}, nil
}

// NewRedisClient は接続して Ping します。
// Redis 未設定なら nil クライアントと nil エラーを返し、呼び出し側はキャッシュなしで動きます。
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	if !cfg.Enabled() {
		slog.Info("redis not configured, page cache disabled")
		return nil, nil
	}
	opt, err := Options(cfg)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// connection check
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", opt.Addr, "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", opt.Addr)
	return rdb, nil
}
