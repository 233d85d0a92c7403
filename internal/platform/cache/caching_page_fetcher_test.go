package cache

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"

	platformhttp "ngx_pipeline/internal/platform/http"
)

// mockPageFetcher is a function-field PageFetcher for tests.
type mockPageFetcher struct {
	fetchFn func(ctx context.Context, url string) ([]byte, error)
	calls   int
}

func (m *mockPageFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	m.calls++
	if m.fetchFn != nil {
		return m.fetchFn(ctx, url)
	}
	return nil, nil
}

const testURL = "https://research.gti.com.ng/ngx-price-list-for-monday-04-march-2024/"

var testKey = "pages:" + safe(testURL)

func TestNewCachingPageFetcher_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		ttl               time.Duration
		namespace         string
		expectedTTL       time.Duration
		expectedNamespace string
	}{
		{"zero values use defaults", 0, "", 7 * 24 * time.Hour, "pages"},
		{"negative ttl uses default", -time.Minute, "", 7 * 24 * time.Hour, "pages"},
		{"custom values preserved", time.Hour, "custom", time.Hour, "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := NewCachingPageFetcher(nil, tt.ttl, &mockPageFetcher{}, tt.namespace)
			if f.ttl != tt.expectedTTL {
				t.Errorf("expected TTL %v, got %v", tt.expectedTTL, f.ttl)
			}
			if f.namespace != tt.expectedNamespace {
				t.Errorf("expected namespace %q, got %q", tt.expectedNamespace, f.namespace)
			}
		})
	}
}

func TestCachingPageFetcher_NilRedis(t *testing.T) {
	t.Parallel()

	inner := &mockPageFetcher{fetchFn: func(ctx context.Context, url string) ([]byte, error) {
		return []byte("body"), nil
	}}
	f := NewCachingPageFetcher(nil, time.Hour, inner, "")

	body, err := f.Fetch(context.Background(), testURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "body" || inner.calls != 1 {
		t.Errorf("expected pass-through, got body=%q calls=%d", body, inner.calls)
	}
}

func TestCachingPageFetcher_CacheHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet(testKey).SetVal("<table></table>")

	inner := &mockPageFetcher{}
	f := NewCachingPageFetcher(rdb, time.Hour, inner, "pages")

	body, err := f.Fetch(context.Background(), testURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "<table></table>" {
		t.Errorf("unexpected body %q", body)
	}
	if inner.calls != 0 {
		t.Error("inner fetcher should not be called on cache hit")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

func TestCachingPageFetcher_CacheMissStoresBody(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	body := []byte("<html>list</html>")
	mock.ExpectGet(testKey).RedisNil()
	mock.ExpectSet(testKey, body, time.Hour).SetVal("OK")

	inner := &mockPageFetcher{fetchFn: func(ctx context.Context, url string) ([]byte, error) {
		return body, nil
	}}
	f := NewCachingPageFetcher(rdb, time.Hour, inner, "pages")

	got, err := f.Fetch(context.Background(), testURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != string(body) {
		t.Errorf("unexpected body %q", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

func TestCachingPageFetcher_NotFoundIsRemembered(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet(testKey).RedisNil()
	mock.ExpectSet(testKey, notFoundMarker, 3*time.Hour).SetVal("OK")

	inner := &mockPageFetcher{fetchFn: func(ctx context.Context, url string) ([]byte, error) {
		return nil, &platformhttp.StatusError{URL: url, Code: http.StatusNotFound}
	}}
	f := NewCachingPageFetcher(rdb, time.Hour, inner, "pages")
	f.missTTL = func() time.Duration { return 3 * time.Hour }

	_, err := f.Fetch(context.Background(), testURL)
	if !platformhttp.IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

func TestCachingPageFetcher_KnownMissingSkipsOrigin(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet(testKey).SetVal(notFoundMarker)

	inner := &mockPageFetcher{}
	f := NewCachingPageFetcher(rdb, time.Hour, inner, "pages")

	_, err := f.Fetch(context.Background(), testURL)
	if !platformhttp.IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
	if inner.calls != 0 {
		t.Error("inner fetcher should not be called for a cached miss")
	}
}

func TestCachingPageFetcher_OtherErrorsNotCached(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedErr := errors.New("connection reset")
	mock.ExpectGet(testKey).RedisNil()

	inner := &mockPageFetcher{fetchFn: func(ctx context.Context, url string) ([]byte, error) {
		return nil, expectedErr
	}}
	f := NewCachingPageFetcher(rdb, time.Hour, inner, "pages")

	_, err := f.Fetch(context.Background(), testURL)
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected %v, got %v", expectedErr, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

func TestCachingPageFetcher_RejectedBodyNotCached(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	// two misses, no SET in between
	mock.ExpectGet(testKey).RedisNil()
	mock.ExpectGet(testKey).RedisNil()

	inner := &mockPageFetcher{fetchFn: func(ctx context.Context, url string) ([]byte, error) {
		return []byte("<html><p>coming soon</p></html>"), nil
	}}
	f := NewCachingPageFetcher(rdb, time.Hour, inner, "pages").
		WithBodyCheck(func(body []byte) bool { return strings.Contains(string(body), "<table") })

	for i := 0; i < 2; i++ {
		body, err := f.Fetch(context.Background(), testURL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(body) != "<html><p>coming soon</p></html>" {
			t.Errorf("unexpected body %q", body)
		}
	}
	if inner.calls != 2 {
		t.Errorf("expected the page to be fetched from origin twice, got %d", inner.calls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

func TestCachingPageFetcher_AcceptedBodyCached(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	body := []byte("<table><tr><td>ZENITHBANK</td></tr></table>")
	mock.ExpectGet(testKey).RedisNil()
	mock.ExpectSet(testKey, body, time.Hour).SetVal("OK")

	inner := &mockPageFetcher{fetchFn: func(ctx context.Context, url string) ([]byte, error) {
		return body, nil
	}}
	f := NewCachingPageFetcher(rdb, time.Hour, inner, "pages").
		WithBodyCheck(func(body []byte) bool { return strings.Contains(string(body), "<table") })

	if _, err := f.Fetch(context.Background(), testURL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

func TestSafe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"ZENITHBANK", "ZENITHBANK"},
		{"a b", "a_b"},
		{"https://x", "https___x"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := safe(tt.input); got != tt.expected {
			t.Errorf("safe(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
