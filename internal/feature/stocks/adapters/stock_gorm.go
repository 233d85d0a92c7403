package adapters

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	ingest "ngx_pipeline/internal/feature/ingest/usecase"
	maintenance "ngx_pipeline/internal/feature/maintenance/usecase"
	"ngx_pipeline/internal/feature/stocks/domain"
	"ngx_pipeline/internal/feature/stocks/domain/entity"
	symbols "ngx_pipeline/internal/feature/symbols/usecase"
)

type stockGorm struct {
	db *gorm.DB
}

var (
	_ ingest.StockStore            = (*stockGorm)(nil)
	_ symbols.StockLister          = (*stockGorm)(nil)
	_ maintenance.SummaryLister    = (*stockGorm)(nil)
	_ maintenance.StockSectorStore = (*stockGorm)(nil)
	_ maintenance.SourceCleaner    = (*stockGorm)(nil)
)

// NewStockRepository returns the gorm-backed stock repository.
func NewStockRepository(db *gorm.DB) *stockGorm {
	return &stockGorm{db: db}
}

// FindBySymbol returns the stock with exactly this (symbol, market).
func (r *stockGorm) FindBySymbol(ctx context.Context, symbol, market string) (*entity.Stock, error) {
	var m StockModel
	if err := r.db.WithContext(ctx).
		Where("symbol = ? AND market = ?", symbol, market).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStockNotFound
		}
		return nil, err
	}
	s := m.toEntity()
	return &s, nil
}

// Upsert は (symbol, market) が未登録なら作成し、保存済みの行を返します。
func (r *stockGorm) Upsert(ctx context.Context, s entity.Stock) (*entity.Stock, error) {
	m := toStockModel(s)
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Sector == "" {
		m.Sector = entity.UnknownSector
	}
	if m.Market == "" {
		m.Market = entity.Market
	}
	if m.Name == "" {
		m.Name = m.Symbol
	}

	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "market"}},
		DoNothing: true,
	}).Create(&m).Error; err != nil {
		return nil, fmt.Errorf("upsert stock %s: %w", m.Symbol, err)
	}
	return r.FindBySymbol(ctx, m.Symbol, m.Market)
}

// UpdateQuote overwrites the latest-price fields of a stock.
func (r *stockGorm) UpdateQuote(ctx context.Context, id string, q entity.Quote) error {
	res := r.db.WithContext(ctx).Model(&StockModel{}).Where("id = ?", id).Updates(map[string]any{
		"price":          q.Price,
		"change":         q.Change,
		"percent_change": q.PercentChange,
		"volume":         q.Volume,
		"value":          q.Value,
		"trades":         q.Trades,
		"source":         q.Source,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStockNotFound
	}
	return nil
}

// UpdateSector sets a stock's sector.
func (r *stockGorm) UpdateSector(ctx context.Context, id, sector string) error {
	res := r.db.WithContext(ctx).Model(&StockModel{}).Where("id = ?", id).Update("sector", sector)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStockNotFound
	}
	return nil
}

// ListByMarket returns all stocks of a market ordered by symbol.
func (r *stockGorm) ListByMarket(ctx context.Context, market string) ([]entity.Stock, error) {
	var rows []StockModel
	if err := r.db.WithContext(ctx).
		Where("market = ?", market).
		Order("symbol ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Stock, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toEntity())
	}
	return out, nil
}

// ListSummaries returns every stock of the market with its history count.
// Counts come from one grouped query over stock_histories.
func (r *stockGorm) ListSummaries(ctx context.Context, market string) ([]entity.StockSummary, error) {
	stocks, err := r.ListByMarket(ctx, market)
	if err != nil {
		return nil, err
	}

	type countRow struct {
		StockID string
		N       int64
	}
	var counts []countRow
	if err := r.db.WithContext(ctx).
		Model(&HistoryModel{}).
		Select("stock_id, COUNT(*) AS n").
		Group("stock_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	byStock := make(map[string]int64, len(counts))
	for _, c := range counts {
		byStock[c.StockID] = c.N
	}

	out := make([]entity.StockSummary, 0, len(stocks))
	for _, s := range stocks {
		out = append(out, entity.StockSummary{
			ID:           s.ID,
			Symbol:       s.Symbol,
			Sector:       s.Sector,
			HistoryCount: byStock[s.ID],
		})
	}
	return out, nil
}

// CountBySource counts stocks tagged with source and their history rows.
func (r *stockGorm) CountBySource(ctx context.Context, source string) (stocks, histories int64, err error) {
	db := r.db.WithContext(ctx)
	if err = db.Model(&StockModel{}).Where("source = ?", source).Count(&stocks).Error; err != nil {
		return 0, 0, err
	}
	sub := db.Model(&StockModel{}).Select("id").Where("source = ?", source)
	if err = db.Model(&HistoryModel{}).Where("stock_id IN (?)", sub).Count(&histories).Error; err != nil {
		return 0, 0, err
	}
	return stocks, histories, nil
}

// DeleteBySource は source タグの銘柄をすべて削除します（履歴が先）。
func (r *stockGorm) DeleteBySource(ctx context.Context, source string) (stocks, histories int64, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub := tx.Model(&StockModel{}).Select("id").Where("source = ?", source)
		res := tx.Where("stock_id IN (?)", sub).Delete(&HistoryModel{})
		if res.Error != nil {
			return res.Error
		}
		histories = res.RowsAffected

		res = tx.Where("source = ?", source).Delete(&StockModel{})
		if res.Error != nil {
			return res.Error
		}
		stocks = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("delete stocks with source %q: %w", source, err)
	}
	return stocks, histories, nil
}
