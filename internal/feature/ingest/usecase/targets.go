package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	symboldomain "ngx_pipeline/internal/feature/symbols/domain"
)

// ErrNoTargets is returned when a targeted run selects no stock.
var ErrNoTargets = errors.New("no stocks selected for backfill")

// TargetFilter selects the stocks a backfill run may write to.
type TargetFilter struct {
	Symbols    []string
	MinHistory int64
	MaxHistory int64
}

// SelectTargets resolves the filter to identities. Explicit symbols must
// resolve and be active; misses are logged and skipped. Without symbols every
// active stock whose history count is within [MinHistory, MaxHistory] is
// selected, fewest rows first.
func SelectTargets(ctx context.Context, resolver IdentityResolver, f TargetFilter) ([]symboldomain.StockIdentity, error) {
	var out []symboldomain.StockIdentity

	if len(f.Symbols) > 0 {
		seen := map[string]bool{}
		for _, sym := range f.Symbols {
			id, ok, err := resolver.Resolve(ctx, sym)
			if err != nil {
				return nil, err
			}
			if !ok {
				slog.Error("no stock found for symbol", "symbol", sym)
				continue
			}
			if !id.Active {
				slog.Warn("targeted symbol is not in the active symbol list, skipping", "symbol", sym)
				continue
			}
			if seen[id.ID] {
				continue
			}
			seen[id.ID] = true
			out = append(out, id)
		}
		return out, nil
	}

	all, err := resolver.Identities(ctx)
	if err != nil {
		return nil, err
	}
	for _, id := range all {
		if !id.Active {
			continue
		}
		if id.HistoryCount < f.MinHistory || (f.MaxHistory > 0 && id.HistoryCount > f.MaxHistory) {
			continue
		}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HistoryCount != out[j].HistoryCount {
			return out[i].HistoryCount < out[j].HistoryCount
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out, nil
}
