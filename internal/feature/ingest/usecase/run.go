package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	scrapeentity "ngx_pipeline/internal/feature/scraping/domain/entity"
	stockdomain "ngx_pipeline/internal/feature/stocks/domain"
	stockentity "ngx_pipeline/internal/feature/stocks/domain/entity"
	symboldomain "ngx_pipeline/internal/feature/symbols/domain"
)

// HistoryStore persists history rows.
type HistoryStore interface {
	Dates(ctx context.Context, stockID string) ([]time.Time, error)
	Create(ctx context.Context, h stockentity.History) error
}

// StockStore creates stocks and refreshes their latest quote.
type StockStore interface {
	Upsert(ctx context.Context, s stockentity.Stock) (*stockentity.Stock, error)
	UpdateQuote(ctx context.Context, id string, q stockentity.Quote) error
}

// IdentityResolver maps raw symbols to stocks. One resolver belongs to one run.
type IdentityResolver interface {
	Resolve(ctx context.Context, raw string) (symboldomain.StockIdentity, bool, error)
	Register(id symboldomain.StockIdentity)
	Identities(ctx context.Context) ([]symboldomain.StockIdentity, error)
}

// FailedDate records a source that could not be scraped for a day.
type FailedDate struct {
	Date   string `json:"date"`
	Source string `json:"source"`
	Error  string `json:"error"`
}

// Run owns every piece of mutable state of one pipeline invocation: the
// resolver cache, the per-stock date sets and the counters. Nothing is shared
// between runs.
type Run struct {
	ID     string
	Mode   Mode
	DryRun bool

	resolver  IdentityResolver
	histories HistoryStore
	stocks    StockStore

	mu       sync.Mutex
	targets  map[string]bool // stock id -> targeted; nil means every stock
	dates    map[string]map[string]struct{}
	counters Counters
	failed   []FailedDate

	createMu sync.Mutex
}

// NewRun starts a run with empty caches.
func NewRun(mode Mode, dryRun bool, resolver IdentityResolver, histories HistoryStore, stocks StockStore) *Run {
	if mode == "" {
		mode = ModeBackfill
	}
	return &Run{
		ID:        uuid.NewString(),
		Mode:      mode,
		DryRun:    dryRun,
		resolver:  resolver,
		histories: histories,
		stocks:    stocks,
		dates:     map[string]map[string]struct{}{},
	}
}

// SetTargets restricts inserts to the given stocks.
func (r *Run) SetTargets(ids []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets = make(map[string]bool, len(ids))
	for _, id := range ids {
		r.targets[id] = true
	}
}

// Counters returns a snapshot of the counters.
func (r *Run) Counters() Counters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters
}

// FailedDates returns the recorded failures in date order.
func (r *Run) FailedDates() []FailedDate {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]FailedDate(nil), r.failed...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (r *Run) recordFailure(day time.Time, source string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, FailedDate{Date: day.Format(time.DateOnly), Source: source, Error: err.Error()})
}

func (r *Run) dayDone() {
	r.mu.Lock()
	r.counters.DaysProcessed++
	r.mu.Unlock()
}

func (r *Run) count(o Outcome) Outcome {
	r.mu.Lock()
	r.counters.add(o)
	r.mu.Unlock()
	return o
}

// Upsert applies one scraped record for date. It never returns an error:
// every failure is an Outcome and is logged.
func (r *Run) Upsert(ctx context.Context, date time.Time, rec scrapeentity.RawRecord, source string) Outcome {
	ds := date.Format(time.DateOnly)

	if rec.ClosePrice <= 0 {
		slog.Debug("skip invalid record", "symbol", rec.Symbol, "date", ds, "close", rec.ClosePrice)
		return r.count(SkippedInvalid)
	}

	id, ok, err := r.resolver.Resolve(ctx, rec.Symbol)
	if err != nil {
		slog.Error("failed to resolve symbol", "symbol", rec.Symbol, "date", ds, "error", err)
		return r.count(Failed)
	}
	if !ok {
		if r.Mode != ModeScrape {
			slog.Debug("skip unmatched symbol", "symbol", rec.Symbol, "date", ds)
			return r.count(SkippedUnmatched)
		}
		id, err = r.createStock(ctx, rec, source)
		if err != nil {
			slog.Error("failed to create stock", "symbol", rec.Symbol, "date", ds, "error", err)
			return r.count(Failed)
		}
	}

	if !r.targeted(id.ID) {
		return r.count(SkippedUntargeted)
	}

	day := stockentity.TruncateDay(date)
	reserved, err := r.reserve(ctx, id.ID, day)
	if err != nil {
		slog.Error("failed to load history dates", "stock_id", id.ID, "symbol", rec.Symbol, "error", err)
		return r.count(Failed)
	}
	if !reserved {
		slog.Debug("skip existing history", "symbol", rec.Symbol, "stock_id", id.ID, "date", ds)
		return r.count(SkippedDuplicate)
	}

	if r.DryRun {
		slog.Debug("dry run: would add history", "symbol", rec.Symbol, "stock_id", id.ID, "date", ds, "source", source)
		return r.count(Created)
	}

	sector := id.Sector
	if sector == "" {
		sector = stockentity.UnknownSector
	}
	err = r.histories.Create(ctx, stockentity.History{
		StockID:       id.ID,
		Date:          day,
		Price:         rec.ClosePrice,
		Change:        rec.Change,
		PercentChange: rec.PercentChange,
		Volume:        rec.Volume,
		Value:         rec.Value,
		Trades:        rec.Trades,
		Source:        source,
		Sector:        sector,
	})
	if errors.Is(err, stockdomain.ErrDuplicateHistory) {
		return r.count(SkippedDuplicate)
	}
	if err != nil {
		r.release(id.ID, day)
		slog.Error("failed to create history", "symbol", rec.Symbol, "stock_id", id.ID, "date", ds, "error", err)
		return r.count(Failed)
	}

	if r.Mode == ModeScrape {
		r.updateQuote(ctx, id, rec, source)
	}
	return r.count(Created)
}

func (r *Run) targeted(stockID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.targets == nil || r.targets[stockID]
}

// reserve atomically checks that (stockID, day) has no history and marks it
// taken. The stock's dates are loaded from the store on first use.
func (r *Run) reserve(ctx context.Context, stockID string, day time.Time) (bool, error) {
	key := day.Format(time.DateOnly)

	r.mu.Lock()
	set, ok := r.dates[stockID]
	r.mu.Unlock()

	if !ok {
		dates, err := r.histories.Dates(ctx, stockID)
		if err != nil {
			return false, err
		}
		loaded := make(map[string]struct{}, len(dates))
		for _, d := range dates {
			loaded[stockentity.TruncateDay(d).Format(time.DateOnly)] = struct{}{}
		}

		r.mu.Lock()
		if existing, ok := r.dates[stockID]; ok {
			set = existing
		} else {
			r.dates[stockID] = loaded
			set = loaded
		}
		r.mu.Unlock()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := set[key]; taken {
		return false, nil
	}
	set[key] = struct{}{}
	return true, nil
}

func (r *Run) release(stockID string, day time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if set, ok := r.dates[stockID]; ok {
		delete(set, day.Format(time.DateOnly))
	}
}

// createStock makes a stock for an unseen symbol. Creation is serialized so
// that two rows normalizing to the same new symbol produce one stock.
func (r *Run) createStock(ctx context.Context, rec scrapeentity.RawRecord, source string) (symboldomain.StockIdentity, error) {
	r.createMu.Lock()
	defer r.createMu.Unlock()

	if id, ok, err := r.resolver.Resolve(ctx, rec.Symbol); err != nil || ok {
		return id, err
	}

	symbol := strings.TrimSpace(rec.Symbol)
	id := symboldomain.StockIdentity{Symbol: symbol, Sector: stockentity.UnknownSector}

	if r.DryRun {
		id.ID = "dry-run-" + uuid.NewString()
	} else {
		pc := 0.0
		if rec.PercentChange != nil {
			pc = *rec.PercentChange
		}
		s, err := r.stocks.Upsert(ctx, stockentity.Stock{
			Symbol:        symbol,
			Name:          symbol,
			Sector:        stockentity.UnknownSector,
			Market:        stockentity.Market,
			Price:         rec.ClosePrice,
			Change:        rec.Change,
			PercentChange: pc,
			Volume:        rec.Volume,
			Value:         rec.Value,
			Trades:        rec.Trades,
			Source:        source,
		})
		if err != nil {
			return symboldomain.StockIdentity{}, fmt.Errorf("create stock %s: %w", symbol, err)
		}
		id.ID = s.ID
		id.Sector = s.Sector
	}

	r.resolver.Register(id)
	r.mu.Lock()
	r.counters.StocksCreated++
	r.mu.Unlock()
	slog.Info("created stock", "symbol", symbol, "stock_id", id.ID, "source", source, "dry_run", r.DryRun)
	return id, nil
}

func (r *Run) updateQuote(ctx context.Context, id symboldomain.StockIdentity, rec scrapeentity.RawRecord, source string) {
	pc := 0.0
	if rec.PercentChange != nil {
		pc = *rec.PercentChange
	}
	err := r.stocks.UpdateQuote(ctx, id.ID, stockentity.Quote{
		Price:         rec.ClosePrice,
		Change:        rec.Change,
		PercentChange: pc,
		Volume:        rec.Volume,
		Value:         rec.Value,
		Trades:        rec.Trades,
		Source:        source,
	})
	if err != nil {
		slog.Warn("failed to update latest quote", "stock_id", id.ID, "symbol", rec.Symbol, "error", err)
		return
	}
	r.mu.Lock()
	r.counters.QuotesUpdated++
	r.mu.Unlock()
}
