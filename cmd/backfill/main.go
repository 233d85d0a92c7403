// Command backfill repairs derived columns of the stored history.
//
//	backfill percent-change [--dry-run]
//	backfill sectors [--dry-run]
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ngx_pipeline/internal/app/cli"
	"ngx_pipeline/internal/app/di"
	"ngx_pipeline/internal/feature/runs/domain/entity"
)

func main() {
	os.Exit(cli.Run("backfill", run))
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args, err := cli.Parse(os.Args[1:])
	if err != nil {
		return err
	}
	if len(args.Positional) != 1 {
		return fmt.Errorf("usage: backfill percent-change|sectors [--dry-run]")
	}

	app, err := di.Bootstrap(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	started := time.Now()
	var (
		kind    entity.Kind
		summary any
		runErr  error
	)
	switch task := args.Positional[0]; task {
	case string(entity.KindPercentChange):
		kind = entity.KindPercentChange
		summary, runErr = di.NewPercentChangeUsecase(app.Config, app.DB).Run(ctx, args.DryRun)
	case string(entity.KindSectors):
		kind = entity.KindSectors
		summary, runErr = di.NewSectorUsecase(app.Config, app.DB, app.Origin).Run(ctx, args.DryRun)
	default:
		return fmt.Errorf("unknown backfill task %q", task)
	}

	if _, err := app.Runs.Record(context.WithoutCancel(ctx), "", kind, args.DryRun, started, summary, runErr); err != nil {
		slog.Error("failed to record run", "error", err)
	}
	return runErr
}
