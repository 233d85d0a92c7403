// Package entity defines the uniform record produced by every price-list scraper.
package entity

// RawRecord is one row of a daily price list before identity resolution.
// PercentChange is nil when the source offers no way to compute it.
type RawRecord struct {
	Symbol        string
	ClosePrice    float64
	Change        float64
	PercentChange *float64
	Volume        int64
	Value         float64
	Trades        int64
}
