// Command ingest scrapes the NGX daily price lists into stock history.
//
//	ingest [SYMBOL...] [--mode=scrape|backfill] [--source=apt|gti|all]
//	       [--from=YYYY-MM-DD] [--to=YYYY-MM-DD] [--min=N] [--max=N] [--all] [--dry-run]
//
// Without --mode the run is a backfill. With INGEST_SCHEDULE set the command
// stays up and runs a scrape of the current day on that cron schedule.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ngx_pipeline/internal/app/cli"
	"ngx_pipeline/internal/app/di"
	ingestusecase "ngx_pipeline/internal/feature/ingest/usecase"
	"ngx_pipeline/internal/feature/runs/domain/entity"
	"ngx_pipeline/internal/platform/scheduler"
)

func main() {
	os.Exit(cli.Run("ingest", run))
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := di.Bootstrap(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	args, err := cli.Parse(os.Args[1:])
	if err != nil {
		return err
	}
	opts := args.IngestOptions()

	if app.Config.IngestSchedule == "" {
		return ingestOnce(ctx, app, opts)
	}
	return schedule(ctx, app, opts)
}

func ingestOnce(ctx context.Context, app *di.App, opts ingestusecase.Options) error {
	started := time.Now()
	uc, err := di.NewIngestUsecase(app.Config, app.DB, app.Redis, app.Origin, opts.Mode)
	if err != nil {
		return err
	}

	report, runErr := uc.Execute(ctx, opts)

	var id string
	if report != nil {
		id = report.RunID
	}
	if _, err := app.Runs.Record(context.WithoutCancel(ctx), id, entity.KindIngest, opts.DryRun, started, report, runErr); err != nil {
		slog.Error("failed to record run", "error", err)
	}
	return runErr
}

// schedule runs a scrape of the current day on every tick until ctx is done.
func schedule(ctx context.Context, app *di.App, opts ingestusecase.Options) error {
	// 定期実行は常に当日の scrape
	daily := opts
	daily.Mode = ingestusecase.ModeScrape
	daily.Symbols, daily.MinHistory, daily.MaxHistory, daily.AllStocks = nil, 0, 0, false

	return scheduler.Every(ctx, app.Config.IngestSchedule, func(ctx context.Context) {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		run := daily
		run.From, run.To = today, today
		if err := ingestOnce(ctx, app, run); err != nil {
			slog.Error("scheduled ingest failed", "error", err)
		}
	})
}
