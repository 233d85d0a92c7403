// Package usecase resolves scraped tickers to persisted stocks.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	stockentity "ngx_pipeline/internal/feature/stocks/domain/entity"
	"ngx_pipeline/internal/feature/symbols/domain"
)

// StockLister loads every stock of a market together with its history count.
// Interfaces are defined by the consumer.
type StockLister interface {
	ListSummaries(ctx context.Context, market string) ([]stockentity.StockSummary, error)
}

// Strategy names the lookup step that produced a match.
type Strategy string

const (
	StrategyExact         Strategy = "exact"
	StrategyNormalized    Strategy = "normalized"
	StrategyRename        Strategy = "rename"
	StrategyReverseRename Strategy = "reverse-rename"
)

// Resolver maps raw symbols to stock identities. The cache is filled once,
// lazily, on the first Resolve call, and extended by Register. Safe for
// concurrent use.
type Resolver struct {
	lister  StockLister
	market  string
	norm    domain.Normalizer
	renames domain.RenameMap
	reverse domain.RenameMap
	active  domain.SymbolSet

	mu     sync.RWMutex
	warmed bool
	byRaw  map[string]domain.StockIdentity
	byNorm map[string]domain.StockIdentity
}

// NewResolver builds a resolver. renames must already be normalized with norm.
func NewResolver(lister StockLister, market string, norm domain.Normalizer, renames domain.RenameMap, active domain.SymbolSet) *Resolver {
	if renames == nil {
		renames = domain.RenameMap{}
	}
	if active == nil {
		active = domain.SymbolSet{}
	}
	return &Resolver{
		lister:  lister,
		market:  market,
		norm:    norm,
		renames: renames,
		reverse: renames.Reverse(),
		active:  active,
		byRaw:   map[string]domain.StockIdentity{},
		byNorm:  map[string]domain.StockIdentity{},
	}
}

// Warm loads the cache if it has not been loaded yet.
func (r *Resolver) Warm(ctx context.Context) error {
	r.mu.RLock()
	warmed := r.warmed
	r.mu.RUnlock()
	if warmed {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.warmed {
		return nil
	}

	stocks, err := r.lister.ListSummaries(ctx, r.market)
	if err != nil {
		return fmt.Errorf("warm resolver: %w", err)
	}
	for _, s := range stocks {
		r.addLocked(domain.StockIdentity{
			ID:           s.ID,
			Symbol:       s.Symbol,
			Sector:       s.Sector,
			HistoryCount: s.HistoryCount,
		})
	}
	r.warmed = true
	slog.Info("resolver warmed", "market", r.market, "stocks", len(stocks), "normalized_keys", len(r.byNorm), "normalizer", r.norm.Name())
	return nil
}

// Resolve returns the identity for raw. A miss is (zero, false, nil);
// the error is only set when warm-up fails.
func (r *Resolver) Resolve(ctx context.Context, raw string) (domain.StockIdentity, bool, error) {
	id, _, ok, err := r.ResolveWithStrategy(ctx, raw)
	return id, ok, err
}

// ResolveWithStrategy is Resolve that also reports which lookup matched.
func (r *Resolver) ResolveWithStrategy(ctx context.Context, raw string) (domain.StockIdentity, Strategy, bool, error) {
	if err := r.Warm(ctx); err != nil {
		return domain.StockIdentity{}, "", false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if id, ok := r.byRaw[raw]; ok {
		return id, StrategyExact, true, nil
	}
	n := r.norm.Normalize(raw)
	if n == "" {
		return domain.StockIdentity{}, "", false, nil
	}
	if id, ok := r.lookupLocked(n); ok {
		return id, StrategyNormalized, true, nil
	}
	if renamed, ok := r.renames[n]; ok {
		if id, ok := r.lookupLocked(renamed); ok {
			return id, StrategyRename, true, nil
		}
	}
	if old, ok := r.reverse[n]; ok {
		if id, ok := r.lookupLocked(old); ok {
			return id, StrategyReverseRename, true, nil
		}
	}
	return domain.StockIdentity{}, "", false, nil
}

// Register adds a stock created during the run.
func (r *Resolver) Register(id domain.StockIdentity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addLocked(id)
}

// Identities returns one identity per normalized symbol.
func (r *Resolver) Identities(ctx context.Context) ([]domain.StockIdentity, error) {
	if err := r.Warm(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.StockIdentity, 0, len(r.byNorm))
	for _, id := range r.byNorm {
		out = append(out, id)
	}
	return out, nil
}

func (r *Resolver) lookupLocked(key string) (domain.StockIdentity, bool) {
	if id, ok := r.byNorm[key]; ok {
		return id, true
	}
	id, ok := r.byRaw[key]
	return id, ok
}

// addLocked indexes id by raw and normalized symbol. When two stocks share a
// normalized symbol the one with more history keeps the key.
func (r *Resolver) addLocked(id domain.StockIdentity) {
	id.Normalized = r.norm.Normalize(id.Symbol)
	id.Active = r.active.Contains(id.Normalized)
	r.byRaw[id.Symbol] = id
	if id.Normalized == "" {
		return
	}
	if cur, ok := r.byNorm[id.Normalized]; ok && cur.HistoryCount >= id.HistoryCount && cur.ID != id.ID {
		return
	}
	r.byNorm[id.Normalized] = id
}
