package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	scrapeentity "ngx_pipeline/internal/feature/scraping/domain/entity"
	stockdomain "ngx_pipeline/internal/feature/stocks/domain"
	stockentity "ngx_pipeline/internal/feature/stocks/domain/entity"
	symboldomain "ngx_pipeline/internal/feature/symbols/domain"
	symbolusecase "ngx_pipeline/internal/feature/symbols/usecase"
)

// memStore is an in-memory HistoryStore, StockStore and StockLister.
type memStore struct {
	mu        sync.Mutex
	stocks    map[string]stockentity.Stock
	histories []stockentity.History
	unique    bool
	quotes    int
	nextID    int

	CreateFunc func(h stockentity.History) error
	datesCalls int
}

func newMemStore(stocks ...stockentity.Stock) *memStore {
	m := &memStore{stocks: map[string]stockentity.Stock{}}
	for _, s := range stocks {
		m.stocks[s.ID] = s
	}
	return m
}

func (m *memStore) Dates(ctx context.Context, stockID string) ([]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.datesCalls++
	var out []time.Time
	for _, h := range m.histories {
		if h.StockID == stockID {
			out = append(out, h.Date)
		}
	}
	return out, nil
}

func (m *memStore) Create(ctx context.Context, h stockentity.History) error {
	if m.CreateFunc != nil {
		if err := m.CreateFunc(h); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unique {
		for _, e := range m.histories {
			if e.StockID == h.StockID && e.Date.Equal(h.Date) {
				return stockdomain.ErrDuplicateHistory
			}
		}
	}
	m.histories = append(m.histories, h)
	return nil
}

func (m *memStore) Upsert(ctx context.Context, s stockentity.Stock) (*stockentity.Stock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.stocks {
		if e.Symbol == s.Symbol && e.Market == s.Market {
			return &e, nil
		}
	}
	m.nextID++
	s.ID = fmt.Sprintf("new-%d", m.nextID)
	m.stocks[s.ID] = s
	return &s, nil
}

func (m *memStore) UpdateQuote(ctx context.Context, id string, q stockentity.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stocks[id]
	if !ok {
		return stockdomain.ErrStockNotFound
	}
	s.Price, s.Change, s.PercentChange = q.Price, q.Change, q.PercentChange
	s.Volume, s.Value, s.Trades, s.Source = q.Volume, q.Value, q.Trades, q.Source
	m.stocks[id] = s
	m.quotes++
	return nil
}

func (m *memStore) ListSummaries(ctx context.Context, market string) ([]stockentity.StockSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []stockentity.StockSummary
	for _, s := range m.stocks {
		var n int64
		for _, h := range m.histories {
			if h.StockID == s.ID {
				n++
			}
		}
		out = append(out, stockentity.StockSummary{ID: s.ID, Symbol: s.Symbol, Sector: s.Sector, HistoryCount: n})
	}
	return out, nil
}

func (m *memStore) historyCount(stockID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, h := range m.histories {
		if h.StockID == stockID {
			n++
		}
	}
	return n
}

func (m *memStore) stockCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stocks)
}

func resolverFor(store *memStore, active ...string) *symbolusecase.Resolver {
	n := symboldomain.Compact
	return symbolusecase.NewResolver(store, stockentity.Market, n,
		symboldomain.DefaultRenameMap().Normalized(n), symboldomain.NewSymbolSet(n, active...))
}

// mockScraper is a function-field Scraper.
type mockScraper struct {
	source     string
	ScrapeFunc func(ctx context.Context, date time.Time) ([]scrapeentity.RawRecord, error)

	mu    sync.Mutex
	dates []time.Time
}

func (m *mockScraper) Source() string { return m.source }

func (m *mockScraper) Scrape(ctx context.Context, date time.Time) ([]scrapeentity.RawRecord, error) {
	m.mu.Lock()
	m.dates = append(m.dates, date)
	m.mu.Unlock()
	if m.ScrapeFunc != nil {
		return m.ScrapeFunc(ctx, date)
	}
	return nil, errors.New("ScrapeFunc is not implemented")
}

// countingPacer records how often the day loop paused.
type countingPacer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.err
}

func ptr(f float64) *float64 { return &f }

func rec(symbol string, price float64) scrapeentity.RawRecord {
	return scrapeentity.RawRecord{Symbol: symbol, ClosePrice: price, Change: 0.5, PercentChange: ptr(1.2), Volume: 1000, Value: 5000, Trades: 12}
}

// failingResolver fails every lookup.
type failingResolver struct{ err error }

func (f *failingResolver) Resolve(ctx context.Context, raw string) (symboldomain.StockIdentity, bool, error) {
	return symboldomain.StockIdentity{}, false, f.err
}

func (f *failingResolver) Register(id symboldomain.StockIdentity) {}

func (f *failingResolver) Identities(ctx context.Context) ([]symboldomain.StockIdentity, error) {
	return nil, f.err
}
