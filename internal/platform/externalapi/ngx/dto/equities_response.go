// Package dto holds the wire shapes of the NGX equities feed.
package dto

// Equity is one entry of the feed. Only the fields used are decoded.
type Equity struct {
	Symbol string `json:"Symbol"`
	Sector string `json:"Sector"`
}

// EquitiesEnvelope is the wrapped form of the feed. Data is nil when the
// key is absent.
type EquitiesEnvelope struct {
	Data *[]Equity `json:"data"`
}
