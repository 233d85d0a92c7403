package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"ngx_pipeline/internal/feature/maintenance/domain/entity"
	"ngx_pipeline/internal/feature/stocks/adapters"
	stockentity "ngx_pipeline/internal/feature/stocks/domain/entity"
)

// setupTestDB opens a single-connection in-memory SQLite database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, adapters.AutoMigrate(db))
	return db
}

func seedStock(t *testing.T, db *gorm.DB, symbol, sector string) string {
	t.Helper()

	m := adapters.StockModel{
		ID:     uuid.NewString(),
		Symbol: symbol,
		Name:   symbol,
		Sector: sector,
		Market: stockentity.Market,
	}
	require.NoError(t, db.Create(&m).Error)
	return m.ID
}

// seedHistory adds n consecutive days of history starting at from.
func seedHistory(t *testing.T, db *gorm.DB, stockID string, from time.Time, n int, source string) {
	t.Helper()

	for i := 0; i < n; i++ {
		m := adapters.HistoryModel{
			ID:      uuid.NewString(),
			StockID: stockID,
			Date:    stockentity.TruncateDay(from.AddDate(0, 0, i)),
			Price:   float64(10 + i),
			Source:  source,
			Sector:  stockentity.UnknownSector,
		}
		require.NoError(t, db.Create(&m).Error)
	}
}

func countHistory(t *testing.T, db *gorm.DB, stockID string) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&adapters.HistoryModel{}).Where("stock_id = ?", stockID).Count(&n).Error)
	return n
}

func stockExists(t *testing.T, db *gorm.DB, id string) bool {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&adapters.StockModel{}).Where("id = ?", id).Count(&n).Error)
	return n > 0
}

// memAudit records what would have been written.
type memAudit struct {
	results []entity.MergeResult
	dryRun  bool
	err     error
}

func (m *memAudit) Write(results []entity.MergeResult, dryRun bool) (string, error) {
	m.results, m.dryRun = results, dryRun
	if m.err != nil {
		return "", m.err
	}
	return fmt.Sprintf("mem://%d", len(results)), nil
}

// mockFeed is a function-field SectorFeed.
type mockFeed struct {
	FetchSectorsFunc func(ctx context.Context) ([]entity.SectorEntry, error)
}

func (m *mockFeed) FetchSectors(ctx context.Context) ([]entity.SectorEntry, error) {
	if m.FetchSectorsFunc != nil {
		return m.FetchSectorsFunc(ctx)
	}
	return nil, nil
}

func feedOf(entries ...entity.SectorEntry) *mockFeed {
	return &mockFeed{FetchSectorsFunc: func(ctx context.Context) ([]entity.SectorEntry, error) {
		return entries, nil
	}}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
