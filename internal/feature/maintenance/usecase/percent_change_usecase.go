package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"ngx_pipeline/internal/feature/maintenance/domain/entity"
	stockentity "ngx_pipeline/internal/feature/stocks/domain/entity"
	"ngx_pipeline/internal/shared/ratelimiter"
)

// StockLister lists the stocks of a market.
type StockLister interface {
	ListByMarket(ctx context.Context, market string) ([]stockentity.Stock, error)
}

// HistoryWalker reads a stock's history in date order and patches rows.
type HistoryWalker interface {
	ListByStockAsc(ctx context.Context, stockID string) ([]stockentity.History, error)
	UpdatePercentChange(ctx context.Context, id string, pc float64) error
}

// PercentChangeUsecase recomputes day-over-day percent change.
type PercentChangeUsecase struct {
	stocks    StockLister
	histories HistoryWalker
	pacer     ratelimiter.Limiter
	market    string
	// recompute lists the sources whose stored percent change is always
	// replaced; other sources are only filled when empty.
	recompute map[string]bool
}

// NewPercentChangeUsecase returns the backfill. pacer runs between stocks.
func NewPercentChangeUsecase(stocks StockLister, histories HistoryWalker, pacer ratelimiter.Limiter, market string) *PercentChangeUsecase {
	if pacer == nil {
		pacer = ratelimiter.FixedDelay{}
	}
	return &PercentChangeUsecase{
		stocks:    stocks,
		histories: histories,
		pacer:     pacer,
		market:    market,
		recompute: map[string]bool{stockentity.SourceAPT: true},
	}
}

// PercentChange computes (cur-prev)/prev*100. ok is false when prev <= 0.
func PercentChange(prev, cur float64) (pc float64, ok bool) {
	if prev <= 0 {
		return 0, false
	}
	return (cur - prev) / prev * 100, true
}

// Run walks every stock. A failing stock is counted and skipped.
func (pu *PercentChangeUsecase) Run(ctx context.Context, dryRun bool) (entity.PercentChangeSummary, error) {
	var sum entity.PercentChangeSummary

	stocks, err := pu.stocks.ListByMarket(ctx, pu.market)
	if err != nil {
		return sum, fmt.Errorf("list stocks: %w", err)
	}
	slog.Info("percent change backfill started", "stocks", len(stocks), "dry_run", dryRun)

	for _, s := range stocks {
		if err := pu.stock(ctx, s, dryRun, &sum); err != nil {
			slog.Error("failed to backfill percent change", "symbol", s.Symbol, "stock_id", s.ID, "error", err)
			sum.Errors++
		}
		sum.Stocks++
		if err := pu.pacer.Wait(ctx); err != nil {
			return sum, err
		}
	}

	slog.Info("percent change backfill finished", "stocks", sum.Stocks, "updated", sum.Updated,
		"skipped", sum.Skipped, "errors", sum.Errors, "dry_run", dryRun)
	return sum, nil
}

func (pu *PercentChangeUsecase) stock(ctx context.Context, s stockentity.Stock, dryRun bool, sum *entity.PercentChangeSummary) error {
	rows, err := pu.histories.ListByStockAsc(ctx, s.ID)
	if err != nil {
		return err
	}
	if len(rows) < 2 {
		slog.Debug("not enough history for percent change", "symbol", s.Symbol, "rows", len(rows))
		return nil
	}

	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1], rows[i]
		pc, ok := PercentChange(prev.Price, cur.Price)
		if !ok {
			slog.Debug("skip row with invalid previous price", "symbol", s.Symbol, "date", cur.Date, "prev_price", prev.Price)
			sum.Skipped++
			continue
		}
		if !pu.recompute[cur.Source] && cur.PercentChange != nil {
			sum.Skipped++
			continue
		}
		if !dryRun {
			if err := pu.histories.UpdatePercentChange(ctx, cur.ID, pc); err != nil {
				return fmt.Errorf("update %s: %w", cur.ID, err)
			}
		}
		sum.Updated++
	}
	return nil
}
