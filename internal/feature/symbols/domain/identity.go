package domain

// StockIdentity is a resolved stock as seen by ingestion.
type StockIdentity struct {
	ID           string
	Symbol       string // raw, as stored
	Normalized   string
	Sector       string
	HistoryCount int64
	Active       bool
}

// SymbolSet is a set of normalized tickers.
type SymbolSet map[string]struct{}

// NewSymbolSet normalizes symbols with n and drops empty results.
func NewSymbolSet(n Normalizer, symbols ...string) SymbolSet {
	s := make(SymbolSet, len(symbols))
	for _, sym := range symbols {
		if v := n.Normalize(sym); v != "" {
			s[v] = struct{}{}
		}
	}
	return s
}

// Contains reports whether the normalized ticker is in the set.
func (s SymbolSet) Contains(normalized string) bool {
	_, ok := s[normalized]
	return ok
}

// Len returns the number of tickers.
func (s SymbolSet) Len() int { return len(s) }
