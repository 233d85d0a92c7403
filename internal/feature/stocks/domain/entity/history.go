package entity

import "time"

// History is one (stock, trading day) price record. Date is always midnight UTC.
type History struct {
	ID            string
	StockID       string
	Date          time.Time
	Price         float64
	Change        float64
	PercentChange *float64
	Volume        int64
	Value         float64
	Trades        int64
	Source        string
	Sector        string
}

// DuplicateGroup is a set of stocks whose symbols collide once suffix tags are removed.
type DuplicateGroup struct {
	CleanSymbol string
	StockIDs    []string
}

// TruncateDay returns midnight UTC of t's calendar day.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
