// Package usecase implements the maintenance passes run against stored
// stocks and their history.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"ngx_pipeline/internal/feature/maintenance/domain/entity"
	stockentity "ngx_pipeline/internal/feature/stocks/domain/entity"
)

// DefaultMergeTags are the suffixes stripped before symbols are compared.
var DefaultMergeTags = []string{" [MRF]", " [BLS]"}

// MergeRepository finds and merges duplicate stocks.
// Following Go convention: interfaces are defined by the consumer.
type MergeRepository interface {
	DuplicateGroups(ctx context.Context, market string, tags []string) ([]stockentity.DuplicateGroup, error)
	MergeInto(ctx context.Context, survivorID string, loserIDs []string) (int64, error)
}

// SummaryLister lists stocks with their history counts.
type SummaryLister interface {
	ListSummaries(ctx context.Context, market string) ([]stockentity.StockSummary, error)
}

// AuditWriter persists the per-group results of a merge run.
type AuditWriter interface {
	Write(results []entity.MergeResult, dryRun bool) (string, error)
}

// MergeOptions configures one merge run.
type MergeOptions struct {
	DryRun bool
	Scope  entity.MergeScope
	Tags   []string
}

// MergeUsecase collapses stocks whose symbols differ only by suffix tags.
type MergeUsecase struct {
	repo   MergeRepository
	stocks SummaryLister
	audit  AuditWriter
	market string
}

// NewMergeUsecase returns a merger for market.
func NewMergeUsecase(repo MergeRepository, stocks SummaryLister, audit AuditWriter, market string) *MergeUsecase {
	return &MergeUsecase{repo: repo, stocks: stocks, audit: audit, market: market}
}

// Merge processes every duplicate group and writes the audit file. A failing
// group is recorded and the run continues; only discovery and audit errors
// are returned.
func (mu *MergeUsecase) Merge(ctx context.Context, opts MergeOptions) ([]entity.MergeResult, entity.MergeSummary, error) {
	var summary entity.MergeSummary
	tags := opts.Tags
	if tags == nil {
		tags = DefaultMergeTags
	}
	scope := opts.Scope
	if scope == "" {
		scope = entity.ScopeGroup
	}

	groups, err := mu.repo.DuplicateGroups(ctx, mu.market, tags)
	if err != nil {
		return nil, summary, fmt.Errorf("find duplicate groups: %w", err)
	}
	slog.Info("duplicate groups found", "groups", len(groups), "dry_run", opts.DryRun, "scope", scope)

	summaries, err := mu.stocks.ListSummaries(ctx, mu.market)
	if err != nil {
		return nil, summary, fmt.Errorf("load history counts: %w", err)
	}
	byID := make(map[string]stockentity.StockSummary, len(summaries))
	for _, s := range summaries {
		byID[s.ID] = s
	}

	results := make([]entity.MergeResult, 0, len(groups))
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return results, summary, err
		}
		members := make([]entity.Member, 0, len(g.StockIDs))
		for _, id := range g.StockIDs {
			s := byID[id]
			members = append(members, entity.Member{ID: id, Symbol: s.Symbol, HistoryCount: s.HistoryCount})
		}
		res := mu.mergeGroup(ctx, g.CleanSymbol, members, opts.DryRun, scope)
		results = append(results, res)

		summary.Groups++
		summary.MovedRecords += res.MovedRecordsCount
		summary.DeletedStocks += len(res.MergedIDs)
		if res.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	if mu.audit != nil {
		path, err := mu.audit.Write(results, opts.DryRun)
		if err != nil {
			return results, summary, fmt.Errorf("write merge audit: %w", err)
		}
		summary.AuditFile = path
	}

	slog.Info("merge finished", "groups", summary.Groups, "succeeded", summary.Succeeded,
		"failed", summary.Failed, "moved_records", summary.MovedRecords,
		"deleted_stocks", summary.DeletedStocks, "audit_file", summary.AuditFile, "dry_run", opts.DryRun)
	return results, summary, nil
}

// RankMembers orders members survivor first: most history, then the shorter
// symbol, then the lower id.
func RankMembers(members []entity.Member) []entity.Member {
	out := append([]entity.Member(nil), members...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.HistoryCount != b.HistoryCount {
			return a.HistoryCount > b.HistoryCount
		}
		if len(a.Symbol) != len(b.Symbol) {
			return len(a.Symbol) < len(b.Symbol)
		}
		return a.ID < b.ID
	})
	return out
}

func (mu *MergeUsecase) mergeGroup(ctx context.Context, symbol string, members []entity.Member, dryRun bool, scope entity.MergeScope) entity.MergeResult {
	res := entity.MergeResult{Symbol: symbol, MergedIDs: []string{}, State: entity.StateDiscovered}
	if len(members) < 2 {
		res.State = entity.StateMerged
		res.Success = true
		return res
	}

	ranked := RankMembers(members)
	survivor, losers := ranked[0], ranked[1:]
	res.KeptID = survivor.ID
	res.KeptSymbol = survivor.Symbol
	res.KeptHistoryCount = survivor.HistoryCount
	res.State = entity.StateRanked
	slog.Info("merging duplicate group", "symbol", symbol, "kept_id", survivor.ID,
		"kept_symbol", survivor.Symbol, "kept_history", survivor.HistoryCount, "losers", len(losers))

	if dryRun {
		for _, l := range losers {
			res.MergedIDs = append(res.MergedIDs, l.ID)
			res.MovedRecordsCount += l.HistoryCount
		}
		res.State = entity.StateMerged
		res.Success = true
		return res
	}

	res.State = entity.StateMerging
	if scope == entity.ScopeGroup {
		ids := make([]string, 0, len(losers))
		for _, l := range losers {
			ids = append(ids, l.ID)
		}
		moved, err := mu.repo.MergeInto(ctx, survivor.ID, ids)
		if err != nil {
			slog.Error("failed to merge group", "symbol", symbol, "kept_id", survivor.ID, "error", err)
			res.State = entity.StateFailed
			res.Error = err.Error()
			return res
		}
		res.MergedIDs = ids
		res.MovedRecordsCount = moved
		res.State = entity.StateMerged
		res.Success = true
		return res
	}

	var errs []string
	for _, l := range losers {
		moved, err := mu.repo.MergeInto(ctx, survivor.ID, []string{l.ID})
		if err != nil {
			slog.Error("failed to merge stock", "symbol", symbol, "loser_id", l.ID, "kept_id", survivor.ID, "error", err)
			errs = append(errs, fmt.Sprintf("%s: %v", l.ID, err))
			continue
		}
		res.MergedIDs = append(res.MergedIDs, l.ID)
		res.MovedRecordsCount += moved
		slog.Info("merged stock", "loser_id", l.ID, "kept_id", survivor.ID, "moved", moved)
	}
	if len(errs) > 0 {
		res.State = entity.StateFailed
		res.Error = strings.Join(errs, "; ")
		return res
	}
	res.State = entity.StateMerged
	res.Success = true
	return res
}
