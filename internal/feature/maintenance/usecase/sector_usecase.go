package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"ngx_pipeline/internal/feature/maintenance/domain/entity"
	stockentity "ngx_pipeline/internal/feature/stocks/domain/entity"
	symboldomain "ngx_pipeline/internal/feature/symbols/domain"
)

// DefaultSectorBatch is the page size of the history pass.
const DefaultSectorBatch = 200

// SectorFeed returns the exchange's symbol to sector reference list.
type SectorFeed interface {
	FetchSectors(ctx context.Context) ([]entity.SectorEntry, error)
}

// StockSectorStore lists stocks and patches their sector.
type StockSectorStore interface {
	ListByMarket(ctx context.Context, market string) ([]stockentity.Stock, error)
	UpdateSector(ctx context.Context, id, sector string) error
}

// HistorySectorStore pages history rows with an unknown sector.
type HistorySectorStore interface {
	ListUnknownSector(ctx context.Context, sources []string, afterID string, limit int) ([]stockentity.History, error)
	UpdateSector(ctx context.Context, id, sector string) error
}

// SectorUsecase fills missing sectors, first on stocks from the reference
// feed, then on history rows from their stock.
type SectorUsecase struct {
	feed      SectorFeed
	stocks    StockSectorStore
	histories HistorySectorStore
	market    string
	norm      symboldomain.Normalizer
	sources   []string
	batch     int
}

// NewSectorUsecase returns the backfill. Feed symbols are matched with the
// hyphen-preserving normalizer.
func NewSectorUsecase(feed SectorFeed, stocks StockSectorStore, histories HistorySectorStore, market string, batch int) *SectorUsecase {
	if batch <= 0 {
		batch = DefaultSectorBatch
	}
	return &SectorUsecase{
		feed:      feed,
		stocks:    stocks,
		histories: histories,
		market:    market,
		norm:      symboldomain.Standard,
		sources:   []string{stockentity.SourceGTI, stockentity.SourceAPT},
		batch:     batch,
	}
}

// IsUnknownSector reports whether sector carries no information.
func IsUnknownSector(sector string) bool {
	s := strings.TrimSpace(sector)
	return s == "" || s == stockentity.UnknownSector
}

// Run executes both stages. A feed failure aborts before any write.
func (su *SectorUsecase) Run(ctx context.Context, dryRun bool) (entity.SectorSummary, error) {
	var sum entity.SectorSummary

	sectors, err := su.updateStocks(ctx, dryRun, &sum)
	if err != nil {
		return sum, err
	}
	if err := su.updateHistory(ctx, sectors, dryRun, &sum); err != nil {
		return sum, err
	}

	slog.Info("sector backfill finished", "stocks_matched", sum.StocksMatched, "stocks_updated", sum.StocksUpdated,
		"history_processed", sum.HistoryProcessed, "history_updated", sum.HistoryUpdated,
		"history_skipped", sum.HistorySkipped, "history_failed", sum.HistoryFailed, "dry_run", dryRun)
	return sum, nil
}

// updateStocks patches stock sectors and returns the resulting id -> sector map.
func (su *SectorUsecase) updateStocks(ctx context.Context, dryRun bool, sum *entity.SectorSummary) (map[string]string, error) {
	entries, err := su.feed.FetchSectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch sector feed: %w", err)
	}
	sum.FeedEntries = len(entries)

	stocks, err := su.stocks.ListByMarket(ctx, su.market)
	if err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}
	sectors := make(map[string]string, len(stocks))
	byNorm := make(map[string]stockentity.Stock, len(stocks))
	for _, s := range stocks {
		sectors[s.ID] = s.Sector
		byNorm[su.norm.Normalize(s.Symbol)] = s
	}

	for _, e := range entries {
		sector := strings.TrimSpace(e.Sector)
		if e.Symbol == "" || IsUnknownSector(sector) {
			continue
		}
		n := su.norm.Normalize(e.Symbol)
		s, ok := byNorm[n]
		if !ok {
			slog.Info("no stock for feed symbol", "symbol", n)
			continue
		}
		sum.StocksMatched++
		if !IsUnknownSector(sectors[s.ID]) {
			continue
		}
		if !dryRun {
			if err := su.stocks.UpdateSector(ctx, s.ID, sector); err != nil {
				return nil, fmt.Errorf("update sector of %s: %w", s.Symbol, err)
			}
		}
		sectors[s.ID] = sector
		sum.StocksUpdated++
	}
	slog.Info("stock sectors updated", "feed_entries", len(entries), "matched", sum.StocksMatched,
		"updated", sum.StocksUpdated, "dry_run", dryRun)
	return sectors, nil
}

// updateHistory copies stock sectors onto history rows, one page at a time.
// Pages are keyed by id so rows updated in place never shift the next page.
func (su *SectorUsecase) updateHistory(ctx context.Context, sectors map[string]string, dryRun bool, sum *entity.SectorSummary) error {
	after := ""
	for page := 1; ; page++ {
		rows, err := su.histories.ListUnknownSector(ctx, su.sources, after, su.batch)
		if err != nil {
			return fmt.Errorf("list history page %d: %w", page, err)
		}
		if len(rows) == 0 {
			return nil
		}
		slog.Debug("processing history page", "page", page, "rows", len(rows))

		for _, h := range rows {
			sum.HistoryProcessed++
			sector := sectors[h.StockID]
			if IsUnknownSector(sector) {
				sum.HistorySkipped++
				continue
			}
			if !dryRun {
				if err := su.histories.UpdateSector(ctx, h.ID, sector); err != nil {
					slog.Error("failed to update history sector", "history_id", h.ID, "error", err)
					sum.HistoryFailed++
					continue
				}
			}
			sum.HistoryUpdated++
		}
		after = rows[len(rows)-1].ID
		if len(rows) < su.batch {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}
