// Package entity holds the values produced by the maintenance passes.
package entity

// MergeScope selects the transaction boundary of a merge.
type MergeScope string

const (
	// ScopeGroup はグループ内の loser をまとめて1トランザクションで統合する
	ScopeGroup MergeScope = "group"
	// ScopeLoser は loser ごとにコミットする。失敗しても先行分は戻さない
	ScopeLoser MergeScope = "loser"
)

// MergeState is the lifecycle of one duplicate group.
type MergeState string

const (
	StateDiscovered MergeState = "discovered"
	StateRanked     MergeState = "ranked"
	StateMerging    MergeState = "merging"
	StateMerged     MergeState = "merged"
	StateFailed     MergeState = "failed"
)

// Member is one stock of a duplicate group with its history count.
type Member struct {
	ID           string `json:"id"`
	Symbol       string `json:"symbol"`
	HistoryCount int64  `json:"historyCount"`
}

// MergeResult is the audit record of one group.
type MergeResult struct {
	Symbol            string     `json:"symbol"`
	KeptID            string     `json:"keptId"`
	KeptSymbol        string     `json:"keptSymbol,omitempty"`
	KeptHistoryCount  int64      `json:"keptHistoryCount"`
	MergedIDs         []string   `json:"mergedIds"`
	MovedRecordsCount int64      `json:"movedRecordsCount"`
	Success           bool       `json:"success"`
	State             MergeState `json:"state"`
	Error             string     `json:"error,omitempty"`
}

// MergeSummary totals a merge run.
type MergeSummary struct {
	Groups        int    `json:"groups"`
	Succeeded     int    `json:"succeeded"`
	Failed        int    `json:"failed"`
	MovedRecords  int64  `json:"moved_records"`
	DeletedStocks int    `json:"deleted_stocks"`
	AuditFile     string `json:"audit_file,omitempty"`
}
