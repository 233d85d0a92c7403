package adapters

import (
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the stocks and stock_histories tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&StockModel{}, &HistoryModel{})
}

// EnsureHistoryUniqueIndex adds a storage-level unique constraint on
// (stock_id, date). Creation fails if duplicates already exist; run the
// merger first.
func EnsureHistoryUniqueIndex(db *gorm.DB) error {
	return db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS uq_history_stock_date ON stock_histories (stock_id, date)").Error
}
