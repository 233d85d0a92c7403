// Package entity defines the persisted stock and history models.
package entity

import "time"

// Market is the only market this pipeline writes.
const Market = "NGX"

// UnknownSector is stored when a stock's sector has not been resolved yet.
const UnknownSector = "Unknown"

// Source tags written to Stock.Source and History.Source.
const (
	SourceAPT = "apt-securities"
	SourceGTI = "gti-research"
)

// Stock is one listed security. Symbol is the raw ticker as first seen and
// may carry bracketed suffix tags such as "[MRF]".
type Stock struct {
	ID            string
	Symbol        string
	Name          string
	Sector        string
	Market        string
	Price         float64
	Change        float64
	PercentChange float64
	Volume        int64
	Value         float64
	Trades        int64
	Source        string
	UpdatedAt     time.Time
}

// StockSummary is a stock together with its number of history rows.
type StockSummary struct {
	ID           string
	Symbol       string
	Sector       string
	HistoryCount int64
}

// Quote is the latest-price snapshot written onto a Stock by scrape runs.
type Quote struct {
	Price         float64
	Change        float64
	PercentChange float64
	Volume        int64
	Value         float64
	Trades        int64
	Source        string
}
