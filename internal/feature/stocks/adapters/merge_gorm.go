package adapters

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	maintenance "ngx_pipeline/internal/feature/maintenance/usecase"
	"ngx_pipeline/internal/feature/stocks/domain/entity"
)

type mergeGorm struct {
	db *gorm.DB
}

var _ maintenance.MergeRepository = (*mergeGorm)(nil)

// NewMergeRepository returns the repository used by the duplicate-stock merger.
func NewMergeRepository(db *gorm.DB) *mergeGorm {
	return &mergeGorm{db: db}
}

// cleanSymbolExpr wraps symbol in one REPLACE call per tag.
func cleanSymbolExpr(tags []string) (string, []any) {
	expr := "symbol"
	args := make([]any, 0, len(tags))
	for _, tag := range tags {
		expr = "REPLACE(" + expr + ", ?, '')"
		args = append(args, tag)
	}
	return expr, args
}

// CleanSymbol applies the same tag removal as the grouping query.
func CleanSymbol(symbol string, tags []string) string {
	for _, tag := range tags {
		symbol = strings.ReplaceAll(symbol, tag, "")
	}
	return symbol
}

// DuplicateGroups finds stocks whose symbols collide once tags are removed.
// The grouping runs in SQL; members are then attached in Go, ordered by id.
func (r *mergeGorm) DuplicateGroups(ctx context.Context, market string, tags []string) ([]entity.DuplicateGroup, error) {
	expr, args := cleanSymbolExpr(tags)
	args = append(args, market)

	var clean []string
	q := fmt.Sprintf(
		"SELECT %s AS clean_symbol FROM stocks WHERE market = ? GROUP BY 1 HAVING COUNT(*) > 1 ORDER BY 1",
		expr,
	)
	if err := r.db.WithContext(ctx).Raw(q, args...).Scan(&clean).Error; err != nil {
		return nil, fmt.Errorf("query duplicate groups: %w", err)
	}
	if len(clean) == 0 {
		return nil, nil
	}

	var stocks []StockModel
	if err := r.db.WithContext(ctx).
		Where("market = ?", market).
		Order("id ASC").
		Find(&stocks).Error; err != nil {
		return nil, err
	}

	groups := make([]entity.DuplicateGroup, 0, len(clean))
	index := make(map[string]int, len(clean))
	for i, c := range clean {
		index[c] = i
		groups = append(groups, entity.DuplicateGroup{CleanSymbol: c})
	}
	for _, s := range stocks {
		if i, ok := index[CleanSymbol(s.Symbol, tags)]; ok {
			groups[i].StockIDs = append(groups[i].StockIDs, s.ID)
		}
	}
	return groups, nil
}

// MergeInto moves the history of every loser to survivorID and deletes the
// losers, all in one transaction. It returns the number of rows moved.
func (r *mergeGorm) MergeInto(ctx context.Context, survivorID string, loserIDs []string) (int64, error) {
	var moved int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, loser := range loserIDs {
			res := tx.Model(&HistoryModel{}).Where("stock_id = ?", loser).Update("stock_id", survivorID)
			if res.Error != nil {
				return fmt.Errorf("move history of %s: %w", loser, res.Error)
			}
			moved += res.RowsAffected

			if err := tx.Where("id = ?", loser).Delete(&StockModel{}).Error; err != nil {
				return fmt.Errorf("delete stock %s: %w", loser, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return moved, nil
}
