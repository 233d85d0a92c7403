package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"ngx_pipeline/internal/shared/ratelimiter"
	"ngx_pipeline/internal/shared/retry"
)

// DefaultUserAgent is sent with every scrape request; both sources reject the Go default.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// PageFetcher downloads a page body.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Code, e.URL)
}

// IsNotFound reports whether err is a 404/410 response.
func IsNotFound(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusNotFound || se.Code == http.StatusGone
	}
	return false
}

// FetcherConfig holds the outbound request settings.
type FetcherConfig struct {
	UserAgent     string
	Timeout       time.Duration
	Retry         retry.Policy
	RatePerMinute int // 0 disables throttling
	// RetryNotFound retries 404/410 like any other non-2xx status.
	// Disable it to give up on a missing page after the first answer.
	RetryNotFound bool
}

// LoadFetcherConfig reads SCRAPER_* variables, falling back to the defaults.
func LoadFetcherConfig() FetcherConfig {
	cfg := FetcherConfig{
		UserAgent:     DefaultUserAgent,
		Timeout:       10 * time.Second,
		Retry:         retry.DefaultPolicy,
		RetryNotFound: os.Getenv("SCRAPER_RETRY_NOT_FOUND") != "false",
	}
	if v := os.Getenv("SCRAPER_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v, err := strconv.Atoi(os.Getenv("SCRAPER_TIMEOUT_MS")); err == nil && v > 0 {
		cfg.Timeout = time.Duration(v) * time.Millisecond
	}
	if v, err := strconv.Atoi(os.Getenv("SCRAPER_MAX_ATTEMPTS")); err == nil && v > 0 {
		cfg.Retry.MaxAttempts = v
	}
	if v, err := strconv.Atoi(os.Getenv("SCRAPER_RETRY_BASE_MS")); err == nil && v >= 0 {
		cfg.Retry.BaseDelay = time.Duration(v) * time.Millisecond
	}
	if v, err := strconv.Atoi(os.Getenv("SCRAPER_RATE_PER_MINUTE")); err == nil && v > 0 {
		cfg.RatePerMinute = v
	}
	return cfg
}

// HTTPFetcher performs GET requests with a User-Agent, wrapped in retry.Do.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	policy    retry.Policy
	limiter   ratelimiter.Limiter
	// retryNotFound: 404/410 を他の非2xxと同様にリトライするか
	retryNotFound bool
}

var _ PageFetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher builds a fetcher; a nil client gets NewHTTPClient(cfg.Timeout).
func NewHTTPFetcher(cfg FetcherConfig, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = NewHTTPClient(cfg.Timeout)
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &HTTPFetcher{
		client:    client,
		userAgent: ua,
		policy:    cfg.Retry,
		limiter:   ratelimiter.NewRateLimiter(cfg.RatePerMinute, time.Minute),

		retryNotFound: cfg.RetryNotFound,
	}
}

// Fetch returns the body of url. Every failure, including a non-2xx
// *StatusError, is retried per the configured policy; with RetryNotFound
// off, 404 and 410 are returned after the first attempt.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := retry.Do(ctx, f.policy, "GET "+url, func(ctx context.Context) error {
		if err := f.limiter.Wait(ctx); err != nil {
			return retry.Permanent(err)
		}
		b, err := f.get(ctx, url)
		if err != nil {
			if IsNotFound(err) && !f.retryNotFound {
				return retry.Permanent(err)
			}
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (f *HTTPFetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Permanent(err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/json;q=0.9,*/*;q=0.8")

	res, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &StatusError{URL: url, Code: res.StatusCode}
	}
	return io.ReadAll(res.Body)
}
