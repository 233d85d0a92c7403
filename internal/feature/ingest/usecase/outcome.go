package usecase

// Outcome is the result of upserting one scraped record.
type Outcome int

const (
	Created Outcome = iota
	SkippedInvalid
	SkippedUnmatched
	SkippedUntargeted
	SkippedDuplicate
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case SkippedInvalid:
		return "skipped_invalid"
	case SkippedUnmatched:
		return "skipped_unmatched"
	case SkippedUntargeted:
		return "skipped_untargeted"
	case SkippedDuplicate:
		return "skipped_duplicate"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Mode selects how unmatched symbols are handled.
type Mode string

const (
	// ModeBackfill は既存銘柄の履歴だけを埋める（デフォルト）
	ModeBackfill Mode = "backfill"
	// ModeScrape は未登録銘柄を作成し、最新の株価も更新する
	ModeScrape Mode = "scrape"
)

// Counters summarises one run.
type Counters struct {
	Created           int64 `json:"created"`
	SkippedInvalid    int64 `json:"skipped_invalid"`
	SkippedUnmatched  int64 `json:"skipped_unmatched"`
	SkippedUntargeted int64 `json:"skipped_untargeted"`
	SkippedDuplicate  int64 `json:"skipped_duplicate"`
	Failed            int64 `json:"failed"`
	StocksCreated     int64 `json:"stocks_created"`
	QuotesUpdated     int64 `json:"quotes_updated"`
	DaysProcessed     int64 `json:"days_processed"`
}

func (c *Counters) add(o Outcome) {
	switch o {
	case Created:
		c.Created++
	case SkippedInvalid:
		c.SkippedInvalid++
	case SkippedUnmatched:
		c.SkippedUnmatched++
	case SkippedUntargeted:
		c.SkippedUntargeted++
	case SkippedDuplicate:
		c.SkippedDuplicate++
	case Failed:
		c.Failed++
	}
}
