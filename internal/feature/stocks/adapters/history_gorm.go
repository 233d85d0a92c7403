package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	ingest "ngx_pipeline/internal/feature/ingest/usecase"
	maintenance "ngx_pipeline/internal/feature/maintenance/usecase"
	"ngx_pipeline/internal/feature/stocks/domain"
	"ngx_pipeline/internal/feature/stocks/domain/entity"
)

type historyGorm struct {
	db *gorm.DB
}

var (
	_ ingest.HistoryStore            = (*historyGorm)(nil)
	_ maintenance.HistoryWalker      = (*historyGorm)(nil)
	_ maintenance.HistorySectorStore = (*historyGorm)(nil)
)

// NewHistoryRepository returns the gorm-backed history repository.
func NewHistoryRepository(db *gorm.DB) *historyGorm {
	return &historyGorm{db: db}
}

// Dates returns every history date of a stock.
func (r *historyGorm) Dates(ctx context.Context, stockID string) ([]time.Time, error) {
	var dates []time.Time
	if err := r.db.WithContext(ctx).
		Model(&HistoryModel{}).
		Where("stock_id = ?", stockID).
		Pluck("date", &dates).Error; err != nil {
		return nil, err
	}
	return dates, nil
}

// Create は履歴を1行追加します。
// ストレージ側の重複は domain.ErrDuplicateHistory として返します。
func (r *historyGorm) Create(ctx context.Context, h entity.History) error {
	m := toHistoryModel(h)
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Sector == "" {
		m.Sector = entity.UnknownSector
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateHistory
		}
		return fmt.Errorf("create history %s@%s: %w", m.StockID, m.Date.Format(time.DateOnly), err)
	}
	return nil
}

// CountByStock returns the number of history rows of a stock.
func (r *historyGorm) CountByStock(ctx context.Context, stockID string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&HistoryModel{}).
		Where("stock_id = ?", stockID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// ListByStockAsc returns the history of a stock ordered by date.
func (r *historyGorm) ListByStockAsc(ctx context.Context, stockID string) ([]entity.History, error) {
	var rows []HistoryModel
	if err := r.db.WithContext(ctx).
		Where("stock_id = ?", stockID).
		Order("date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.History, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toEntity())
	}
	return out, nil
}

// UpdatePercentChange sets percent_change on one row.
func (r *historyGorm) UpdatePercentChange(ctx context.Context, id string, pc float64) error {
	return r.db.WithContext(ctx).Model(&HistoryModel{}).Where("id = ?", id).Update("percent_change", pc).Error
}

// ListUnknownSector returns up to limit rows with sector Unknown and one of
// sources, ordered by id and strictly after afterID.
func (r *historyGorm) ListUnknownSector(ctx context.Context, sources []string, afterID string, limit int) ([]entity.History, error) {
	var rows []HistoryModel
	if err := r.db.WithContext(ctx).
		Where("sector = ? AND source IN ? AND id > ?", entity.UnknownSector, sources, afterID).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.History, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toEntity())
	}
	return out, nil
}

// UpdateSector sets sector on one history row.
func (r *historyGorm) UpdateSector(ctx context.Context, id, sector string) error {
	return r.db.WithContext(ctx).Model(&HistoryModel{}).Where("id = ?", id).Update("sector", sector).Error
}
