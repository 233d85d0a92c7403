// Package scheduler runs jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Every runs job on schedule until ctx is done. A tick that fires while the
// previous run is still going is skipped. Every returns once ctx is done
// and the running job has finished.
func Every(ctx context.Context, schedule string, job func(ctx context.Context)) error {
	logger := slogLogger{}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger)))
	if _, err := c.AddFunc(schedule, func() { job(ctx) }); err != nil {
		return fmt.Errorf("schedule %q: %w", schedule, err)
	}

	slog.Info("scheduler started", "schedule", schedule)
	c.Start()
	<-ctx.Done()
	// 実行中のジョブが終わるまで待つ
	<-c.Stop().Done()
	slog.Info("scheduler stopped", "schedule", schedule)
	return nil
}

// slogLogger routes cron's own messages to slog.
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

var _ cron.Logger = slogLogger{}
