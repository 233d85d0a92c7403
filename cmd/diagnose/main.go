// Command diagnose compares the NGX reference feed with the stored stocks
// and logs which symbols match exactly, after normalization, or not at all.
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
	"ngx_pipeline/internal/feature/runs/domain/entity"
)

func main() {
	os.Exit(cli.Run("diagnose", run))
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := di.Bootstrap(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	started := time.Now()
	diagnosis, runErr := di.NewDiagnoseUsecase(app.Config, app.DB, app.Origin).Run(ctx)

	summary := map[string]int{
		"db_symbols":         diagnosis.DBSymbols,
		"feed_symbols":       diagnosis.FeedSymbols,
		"exact_matches":      diagnosis.ExactMatches,
		"normalized_matches": diagnosis.NormalizedMatches,
		"no_matches":         len(diagnosis.NoMatches),
		"sector_mismatches":  len(diagnosis.SectorMismatches),
		"db_only":            len(diagnosis.DBOnly),
	}
	if _, err := app.Runs.Record(context.WithoutCancel(ctx), "", entity.KindDiagnose, false, started, summary, runErr); err != nil {
		slog.Error("failed to record run", "error", err)
	}
	return runErr
}
