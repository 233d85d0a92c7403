package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Limiter は、外向きリクエストの頻度を制限するインターフェースです。
type Limiter interface {
	Wait(ctx context.Context) error
}

// RateLimiter は interval あたり最大 limit 回の呼び出しを許可します。
// 上限を超えた呼び出しはウィンドウがリセットされるか ctx がキャンセルされるまで待機します。
type RateLimiter struct {
	mu        sync.Mutex
	limit     int
	interval  time.Duration
	count     int
	lastReset time.Time
	now       func() time.Time
}

// NewRateLimiter は新しい RateLimiter を生成します。limit <= 0 なら制限しません。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		lastReset: time.Now(),
		now:       time.Now,
	}
}

// Wait blocks while the current window is exhausted.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl.limit <= 0 {
		return ctx.Err()
	}

	rl.mu.Lock()
	now := rl.now()
	// interval を過ぎたらカウントリセット
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}
	rl.count++
	var sleep time.Duration
	if rl.count > rl.limit {
		sleep = rl.interval - now.Sub(rl.lastReset)
		rl.count = 1
		rl.lastReset = now.Add(sleep)
	}
	rl.mu.Unlock()

	if sleep <= 0 {
		return nil
	}
	slog.Info("rate limit reached, sleeping", "limit", rl.limit, "sleep", sleep)
	return Sleep(ctx, sleep)
}

// FixedDelay pauses for the same duration on every call. It paces the date
// loop between business days.
type FixedDelay struct {
	Delay time.Duration
}

// Wait sleeps for d.Delay or until ctx is done.
func (d FixedDelay) Wait(ctx context.Context) error {
	return Sleep(ctx, d.Delay)
}

// Sleep is a context-aware time.Sleep.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var (
	_ Limiter = (*RateLimiter)(nil)
	_ Limiter = FixedDelay{}
)
