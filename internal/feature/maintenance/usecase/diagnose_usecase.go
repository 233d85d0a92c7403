package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"ngx_pipeline/internal/feature/maintenance/domain/entity"
	stockentity "ngx_pipeline/internal/feature/stocks/domain/entity"
	symboldomain "ngx_pipeline/internal/feature/symbols/domain"
)

// DiagnoseUsecase reports how feed symbols line up with stored stocks.
type DiagnoseUsecase struct {
	feed   SectorFeed
	stocks StockLister
	market string
	norm   symboldomain.Normalizer
}

// NewDiagnoseUsecase returns the diagnosis using the hyphen-preserving normalizer.
func NewDiagnoseUsecase(feed SectorFeed, stocks StockLister, market string) *DiagnoseUsecase {
	return &DiagnoseUsecase{feed: feed, stocks: stocks, market: market, norm: symboldomain.Standard}
}

// Run fetches the feed and classifies every symbol.
func (du *DiagnoseUsecase) Run(ctx context.Context) (entity.Diagnosis, error) {
	var d entity.Diagnosis

	stocks, err := du.stocks.ListByMarket(ctx, du.market)
	if err != nil {
		return d, fmt.Errorf("list stocks: %w", err)
	}
	entries, err := du.feed.FetchSectors(ctx)
	if err != nil {
		return d, fmt.Errorf("fetch sector feed: %w", err)
	}

	type ref struct{ symbol, sector string }
	bySymbol := make(map[string]ref, len(stocks))
	byNorm := make(map[string]ref, len(stocks))
	for _, s := range stocks {
		r := ref{s.Symbol, s.Sector}
		bySymbol[s.Symbol] = r
		byNorm[du.norm.Normalize(s.Symbol)] = r
	}
	d.DBSymbols = len(stocks)

	feedNorm := map[string]bool{}
	for _, e := range entries {
		if e.Symbol == "" || strings.TrimSpace(e.Sector) == "" {
			continue
		}
		d.FeedSymbols++
		sector := strings.TrimSpace(e.Sector)
		n := du.norm.Normalize(e.Symbol)
		feedNorm[n] = true

		match, ok := bySymbol[e.Symbol]
		if ok {
			d.ExactMatches++
		} else if match, ok = byNorm[n]; ok {
			d.NormalizedMatches++
			slog.Info("normalized match", "feed_symbol", e.Symbol, "db_symbol", match.symbol)
		} else {
			d.NoMatches = append(d.NoMatches, e.Symbol)
			slog.Info("no match", "feed_symbol", e.Symbol, "normalized", n, "sector", sector)
			continue
		}
		if match.sector != sector && sector != stockentity.UnknownSector {
			d.SectorMismatches = append(d.SectorMismatches, entity.SectorMismatch{
				Symbol: match.symbol, DBSector: match.sector, FeedSector: sector,
			})
			slog.Warn("sector mismatch", "symbol", match.symbol, "db_sector", match.sector, "feed_sector", sector)
		}
	}

	for _, s := range stocks {
		if !feedNorm[du.norm.Normalize(s.Symbol)] {
			d.DBOnly = append(d.DBOnly, s.Symbol)
		}
	}
	sort.Strings(d.DBOnly)

	slog.Info("symbol matching summary", "db_symbols", d.DBSymbols, "feed_symbols", d.FeedSymbols,
		"exact", d.ExactMatches, "normalized", d.NormalizedMatches, "none", len(d.NoMatches),
		"sector_mismatches", len(d.SectorMismatches), "db_only", len(d.DBOnly))
	return d, nil
}
