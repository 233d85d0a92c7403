// Command cleanup deletes every stock carrying a source tag, with its history.
//
//	cleanup [--source-tag=ngx-daily] [--dry-run]
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
	maintenanceusecase "ngx_pipeline/internal/feature/maintenance/usecase"
	"ngx_pipeline/internal/feature/runs/domain/entity"
)

func main() {
	os.Exit(cli.Run("cleanup", run))
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args, err := cli.Parse(os.Args[1:])
	if err != nil {
		return err
	}
	source := args.SourceTag
	if source == "" {
		source = maintenanceusecase.DefaultCleanupSource
	}

	app, err := di.Bootstrap(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	started := time.Now()
	summary, runErr := di.NewCleanupUsecase(app.DB).Run(ctx, source, args.DryRun)

	if _, err := app.Runs.Record(context.WithoutCancel(ctx), "", entity.KindCleanup, args.DryRun, started, summary, runErr); err != nil {
		slog.Error("failed to record run", "error", err)
	}
	return runErr
}
