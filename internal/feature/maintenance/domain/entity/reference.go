package entity

// SectorEntry is one row of the exchange's equities reference feed.
type SectorEntry struct {
	Symbol string
	Sector string
}

// SectorSummary counts the work done by a sector backfill.
type SectorSummary struct {
	FeedEntries      int   `json:"feed_entries"`
	StocksMatched    int   `json:"stocks_matched"`
	StocksUpdated    int   `json:"stocks_updated"`
	HistoryProcessed int64 `json:"history_processed"`
	HistoryUpdated   int64 `json:"history_updated"`
	HistorySkipped   int64 `json:"history_skipped"`
	HistoryFailed    int64 `json:"history_failed"`
}

// PercentChangeSummary counts the work done by a percent-change backfill.
type PercentChangeSummary struct {
	Stocks  int   `json:"stocks"`
	Updated int64 `json:"updated"`
	Skipped int64 `json:"skipped"`
	Errors  int64 `json:"errors"`
}

// CleanupSummary reports what a source-tag cleanup removed, or would remove.
type CleanupSummary struct {
	Source    string `json:"source"`
	Stocks    int64  `json:"stocks"`
	Histories int64  `json:"histories"`
	DryRun    bool   `json:"dry_run"`
}

// SectorMismatch is a stock whose stored sector differs from the feed.
type SectorMismatch struct {
	Symbol     string `json:"symbol"`
	DBSector   string `json:"db_sector"`
	FeedSector string `json:"feed_sector"`
}

// Diagnosis compares feed symbols with stored stocks.
type Diagnosis struct {
	DBSymbols         int              `json:"db_symbols"`
	FeedSymbols       int              `json:"feed_symbols"`
	ExactMatches      int              `json:"exact_matches"`
	NormalizedMatches int              `json:"normalized_matches"`
	NoMatches         []string         `json:"no_matches"`
	SectorMismatches  []SectorMismatch `json:"sector_mismatches"`
	DBOnly            []string         `json:"db_only"`
}
