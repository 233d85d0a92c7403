// Package retry wraps outbound calls with bounded retries and exponential backoff.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Policy configures Do.
type Policy struct {
	MaxAttempts int           // total attempts, including the first one
	BaseDelay   time.Duration // wait before the second attempt
	Multiplier  float64       // growth factor applied after every failed attempt
}

// DefaultPolicy matches the scrapers' historical settings: 3 attempts, 2s base delay, doubling.
var DefaultPolicy = Policy{MaxAttempts: 3, BaseDelay: 2 * time.Second, Multiplier: 2}

// permanentError marks an error that must not be retried.
type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent wraps err so that Do returns it without further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was wrapped with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Backoff returns the wait before attempt+1, where attempt is 1-based:
// BaseDelay * Multiplier^(attempt-1).
func (p Policy) Backoff(attempt int) time.Duration {
	d := float64(p.BaseDelay)
	m := p.Multiplier
	if m <= 0 {
		m = 2
	}
	for i := 1; i < attempt; i++ {
		d *= m
	}
	return time.Duration(d)
}

// Do runs op until it succeeds, returns a permanent error, or MaxAttempts is
// reached. The last error is returned unchanged. Waiting between attempts
// honours ctx cancellation.
func Do(ctx context.Context, p Policy, label string, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op(ctx)
		if err == nil {
			return nil
		}
		slog.Warn("attempt failed", "op", label, "attempt", attempt, "max_attempts", attempts, "error", err)

		if IsPermanent(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		wait := p.Backoff(attempt)
		slog.Debug("waiting before retry", "op", label, "wait", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return err
}
