package adapters

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"ngx_pipeline/internal/feature/stocks/domain/entity"
)

// setupTestDB prepares an in-memory SQLite database. A single connection
// keeps every statement on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, AutoMigrate(db), "failed to migrate tables")
	return db
}

func seedStock(t *testing.T, db *gorm.DB, symbol, source string) *StockModel {
	t.Helper()

	m := &StockModel{
		ID:     uuid.NewString(),
		Symbol: symbol,
		Name:   symbol,
		Sector: entity.UnknownSector,
		Market: entity.Market,
		Source: source,
	}
	require.NoError(t, db.Create(m).Error, "failed to seed stock")
	return m
}

func seedHistory(t *testing.T, db *gorm.DB, stockID string, date time.Time, price float64, source string) *HistoryModel {
	t.Helper()

	m := &HistoryModel{
		ID:      uuid.NewString(),
		StockID: stockID,
		Date:    entity.TruncateDay(date),
		Price:   price,
		Source:  source,
		Sector:  entity.UnknownSector,
	}
	require.NoError(t, db.Create(m).Error, "failed to seed history")
	return m
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
