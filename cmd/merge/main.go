// Command merge folds duplicate NGX stocks (same symbol once the suffix tags
// are stripped) into the stock with the most history.
//
//	merge [--dry-run] [--scope=group|loser]
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
	os.Exit(cli.Run("merge", run))
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

	started := time.Now()
	uc := di.NewMergeUsecase(app.Config, app.DB)
	_, summary, runErr := uc.Merge(ctx, maintenanceusecase.MergeOptions{
		DryRun: args.DryRun,
		Scope:  args.Scope,
		Tags:   maintenanceusecase.DefaultMergeTags,
	})

	if _, err := app.Runs.Record(context.WithoutCancel(ctx), "", entity.KindMerge, args.DryRun, started, summary, runErr); err != nil {
		slog.Error("failed to record run", "error", err)
	}
	return runErr
}
