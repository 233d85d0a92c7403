package usecase_test

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ngx_pipeline/internal/feature/maintenance/usecase"
	"ngx_pipeline/internal/feature/stocks/adapters"
	stockentity "ngx_pipeline/internal/feature/stocks/domain/entity"
)

func TestPercentChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prev, cur float64
		want      float64
		ok        bool
	}{
		{30, 31.5, 5, true},
		{100, 90, -10, true},
		{0, 5, 0, false},
		{-1, 5, 0, false},
	}
	for _, tt := range tests {
		got, ok := usecase.PercentChange(tt.prev, tt.cur)
		assert.Equal(t, tt.ok, ok)
		assert.InDelta(t, tt.want, got, 1e-9)
	}
}

type row struct {
	price  float64
	pc     *float64
	source string
}

func seedRows(t *testing.T, db *gorm.DB, stockID string, rows []row) []string {
	t.Helper()

	ids := make([]string, 0, len(rows))
	for i, r := range rows {
		m := adapters.HistoryModel{
			ID:            uuid.NewString(),
			StockID:       stockID,
			Date:          date(2024, 1, 1).AddDate(0, 0, i),
			Price:         r.price,
			PercentChange: r.pc,
			Source:        r.source,
			Sector:        stockentity.UnknownSector,
		}
		require.NoError(t, db.Create(&m).Error)
		ids = append(ids, m.ID)
	}
	return ids
}

func percentOf(t *testing.T, db *gorm.DB, id string) *float64 {
	t.Helper()

	var m adapters.HistoryModel
	require.NoError(t, db.First(&m, "id = ?", id).Error)
	return m.PercentChange
}

func f(v float64) *float64 { return &v }

func TestPercentChangeUsecase_Run(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	stock := seedStock(t, db, "ZENITHBANK", "Banking")
	ids := seedRows(t, db, stock, []row{
		{price: 20, pc: f(99), source: stockentity.SourceAPT},  // first row, never touched
		{price: 22, pc: f(99), source: stockentity.SourceAPT},  // always recomputed: 10%
		{price: 0, pc: nil, source: stockentity.SourceGTI},     // filled: -100%
		{price: 30, pc: nil, source: stockentity.SourceGTI},    // previous price 0, skipped
		{price: 33, pc: f(7.7), source: stockentity.SourceGTI}, // trusted, kept
		{price: 36.3, pc: nil, source: stockentity.SourceGTI},  // filled: 10%
	})
	lonely := seedStock(t, db, "LONELY", "ICT")
	seedRows(t, db, lonely, []row{{price: 5, source: stockentity.SourceAPT}})

	uc := usecase.NewPercentChangeUsecase(adapters.NewStockRepository(db), adapters.NewHistoryRepository(db), nil, stockentity.Market)
	sum, err := uc.Run(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Stocks)
	assert.Equal(t, int64(3), sum.Updated)
	assert.Equal(t, int64(2), sum.Skipped)
	assert.Equal(t, int64(0), sum.Errors)

	assert.InDelta(t, 99, *percentOf(t, db, ids[0]), 1e-9)
	assert.InDelta(t, 10, *percentOf(t, db, ids[1]), 1e-9)
	assert.InDelta(t, -100, *percentOf(t, db, ids[2]), 1e-9)
	assert.Nil(t, percentOf(t, db, ids[3]))
	assert.InDelta(t, 7.7, *percentOf(t, db, ids[4]), 1e-9)
	assert.InDelta(t, 10, *percentOf(t, db, ids[5]), 1e-9)
}

func TestPercentChangeUsecase_Run_RecomputedRowsMatchFormula(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	stock := seedStock(t, db, "MTNN", "ICT")
	prices := []float64{200, 210, 189, 189, 250.5, 240}
	rows := make([]row, 0, len(prices))
	for _, p := range prices {
		rows = append(rows, row{price: p, pc: f(0), source: stockentity.SourceAPT})
	}
	ids := seedRows(t, db, stock, rows)

	uc := usecase.NewPercentChangeUsecase(adapters.NewStockRepository(db), adapters.NewHistoryRepository(db), nil, stockentity.Market)
	_, err := uc.Run(context.Background(), false)
	require.NoError(t, err)

	for i := 1; i < len(prices); i++ {
		want := (prices[i] - prices[i-1]) / prices[i-1] * 100
		got := percentOf(t, db, ids[i])
		require.NotNil(t, got)
		assert.True(t, math.Abs(want-*got) < 1e-9, "row %d: want %v got %v", i, want, *got)
	}
}

func TestPercentChangeUsecase_Run_DryRun(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	stock := seedStock(t, db, "ZENITHBANK", "Banking")
	ids := seedRows(t, db, stock, []row{
		{price: 20, source: stockentity.SourceGTI},
		{price: 22, source: stockentity.SourceGTI},
	})

	uc := usecase.NewPercentChangeUsecase(adapters.NewStockRepository(db), adapters.NewHistoryRepository(db), nil, stockentity.Market)
	sum, err := uc.Run(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, int64(1), sum.Updated)
	assert.Nil(t, percentOf(t, db, ids[1]))
}

type countingPacer struct{ waits int }

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	return ctx.Err()
}

func TestPercentChangeUsecase_Run_PacesBetweenStocks(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	for _, sym := range []string{"ZENITHBANK", "GTCO", "MTNN"} {
		stock := seedStock(t, db, sym, "Banking")
		seedRows(t, db, stock, []row{{price: 5, source: stockentity.SourceAPT}})
	}

	pacer := &countingPacer{}
	uc := usecase.NewPercentChangeUsecase(adapters.NewStockRepository(db), adapters.NewHistoryRepository(db), pacer, stockentity.Market)
	sum, err := uc.Run(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Stocks)
	assert.Equal(t, 3, pacer.waits)
}
