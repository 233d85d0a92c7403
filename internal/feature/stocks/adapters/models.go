// Package adapters provides the gorm repositories for stocks and their history.
package adapters

import (
	"time"

	"ngx_pipeline/internal/feature/stocks/domain/entity"
)

// StockModel is the stocks table.
type StockModel struct {
	ID            string    `gorm:"primaryKey;size:36"`
	Symbol        string    `gorm:"size:64;not null;uniqueIndex:idx_stock_symbol_market,priority:1"`
	Name          string    `gorm:"size:255;not null"`
	Sector        string    `gorm:"size:128;not null;default:Unknown"`
	Market        string    `gorm:"size:16;not null;uniqueIndex:idx_stock_symbol_market,priority:2"`
	Price         float64   `gorm:"not null;default:0"`
	Change        float64   `gorm:"not null;default:0"`
	PercentChange float64   `gorm:"not null;default:0"`
	Volume        int64     `gorm:"not null;default:0"`
	Value         float64   `gorm:"not null;default:0"`
	Trades        int64     `gorm:"not null;default:0"`
	Source        string    `gorm:"size:64;index"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (StockModel) TableName() string {
	return "stocks"
}

// HistoryModel is the stock_histories table. (stock_id, date) is unique by
// contract; the storage constraint is optional, see EnsureHistoryUniqueIndex.
type HistoryModel struct {
	ID            string    `gorm:"primaryKey;size:36"`
	StockID       string    `gorm:"size:36;not null;index:idx_history_stock_date,priority:1"`
	Date          time.Time `gorm:"not null;index:idx_history_stock_date,priority:2"`
	Price         float64   `gorm:"not null;default:0"`
	Change        float64   `gorm:"not null;default:0"`
	PercentChange *float64
	Volume        int64   `gorm:"not null;default:0"`
	Value         float64 `gorm:"not null;default:0"`
	Trades        int64   `gorm:"not null;default:0"`
	Source        string  `gorm:"size:64;index"`
	Sector        string  `gorm:"size:128;not null;default:Unknown;index"`
}

func (HistoryModel) TableName() string {
	return "stock_histories"
}

func toStockModel(e entity.Stock) StockModel {
	return StockModel{
		ID:            e.ID,
		Symbol:        e.Symbol,
		Name:          e.Name,
		Sector:        e.Sector,
		Market:        e.Market,
		Price:         e.Price,
		Change:        e.Change,
		PercentChange: e.PercentChange,
		Volume:        e.Volume,
		Value:         e.Value,
		Trades:        e.Trades,
		Source:        e.Source,
	}
}

func (m StockModel) toEntity() entity.Stock {
	return entity.Stock{
		ID:            m.ID,
		Symbol:        m.Symbol,
		Name:          m.Name,
		Sector:        m.Sector,
		Market:        m.Market,
		Price:         m.Price,
		Change:        m.Change,
		PercentChange: m.PercentChange,
		Volume:        m.Volume,
		Value:         m.Value,
		Trades:        m.Trades,
		Source:        m.Source,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toHistoryModel(e entity.History) HistoryModel {
	return HistoryModel{
		ID:            e.ID,
		StockID:       e.StockID,
		Date:          entity.TruncateDay(e.Date),
		Price:         e.Price,
		Change:        e.Change,
		PercentChange: e.PercentChange,
		Volume:        e.Volume,
		Value:         e.Value,
		Trades:        e.Trades,
		Source:        e.Source,
		Sector:        e.Sector,
	}
}

func (m HistoryModel) toEntity() entity.History {
	return entity.History{
		ID:            m.ID,
		StockID:       m.StockID,
		Date:          m.Date.UTC(),
		Price:         m.Price,
		Change:        m.Change,
		PercentChange: m.PercentChange,
		Volume:        m.Volume,
		Value:         m.Value,
		Trades:        m.Trades,
		Source:        m.Source,
		Sector:        m.Sector,
	}
}
