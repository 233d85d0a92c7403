// Package table locates price-list columns and parses cell values. Both
// scrapers share it: APT with fixed offsets, GTI by header text.
package table

import (
	"strconv"
	"strings"
)

// Column identifies a logical price-list column.
type Column string

const (
	Symbol        Column = "symbol"
	PrevClose     Column = "pclose"
	Open          Column = "open"
	High          Column = "high"
	Low           Column = "low"
	Close         Column = "close"
	Change        Column = "change"
	PercentChange Column = "pchange"
	Volume        Column = "volume"
	Value         Column = "value"
	Trades        Column = "trades"
)

// ColumnLocator returns the cell index of col, or -1 if the table lacks it.
type ColumnLocator interface {
	Locate(headers []string, col Column) int
}

// FixedLocator ignores headers and returns preset offsets.
type FixedLocator map[Column]int

// Locate returns the preset offset for col.
func (f FixedLocator) Locate(_ []string, col Column) int {
	if i, ok := f[col]; ok {
		return i
	}
	return -1
}

// HeaderMatcher reports whether an upper-cased header denotes a column.
type HeaderMatcher func(header string) bool

// HeaderLocator finds the first header accepted by the column's matcher.
// Header text is compared upper-cased.
type HeaderLocator map[Column]HeaderMatcher

// Locate scans headers left to right.
func (h HeaderLocator) Locate(headers []string, col Column) int {
	match, ok := h[col]
	if !ok {
		return -1
	}
	for i, hd := range headers {
		if match(strings.ToUpper(strings.TrimSpace(hd))) {
			return i
		}
	}
	return -1
}

// Contains matches headers containing any of subs.
func Contains(subs ...string) HeaderMatcher {
	return func(h string) bool {
		for _, s := range subs {
			if strings.Contains(h, s) {
				return true
			}
		}
		return false
	}
}

// ContainsExcept matches headers containing sub but none of excluded.
func ContainsExcept(sub string, excluded ...string) HeaderMatcher {
	return func(h string) bool {
		if !strings.Contains(h, sub) {
			return false
		}
		for _, e := range excluded {
			if strings.Contains(h, e) {
				return false
			}
		}
		return true
	}
}

// Layout is a resolved column -> index mapping for one table.
type Layout map[Column]int

// Resolve locates every column in cols.
func Resolve(loc ColumnLocator, headers []string, cols ...Column) Layout {
	l := make(Layout, len(cols))
	for _, c := range cols {
		l[c] = loc.Locate(headers, c)
	}
	return l
}

// Has reports whether col was found.
func (l Layout) Has(col Column) bool {
	i, ok := l[col]
	return ok && i >= 0
}

// Index returns the index of col, or -1.
func (l Layout) Index(col Column) int {
	if i, ok := l[col]; ok {
		return i
	}
	return -1
}

// MinCells is the number of cells a row needs to reach every listed column.
func (l Layout) MinCells(cols ...Column) int {
	max := -1
	for _, c := range cols {
		if i := l.Index(c); i > max {
			max = i
		}
	}
	return max + 1
}

// Row is the trimmed text of a row's data cells.
type Row []string

// Text returns the cell for col, or "" when missing.
func (r Row) Text(l Layout, col Column) string {
	i := l.Index(col)
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Float parses the cell for col; missing or unparsable cells yield 0.
func (r Row) Float(l Layout, col Column) float64 {
	return ParseNumber(r.Text(l, col))
}

// Int is Float truncated to an integer.
func (r Row) Int(l Layout, col Column) int64 {
	return int64(ParseNumber(r.Text(l, col)))
}

// ParseNumber strips thousands separators and any character other than
// digits, '.', and '-', then parses. Failure yields 0.
func ParseNumber(text string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, text)
	if cleaned == "" {
		return 0
	}
	if v, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return v
	}
	return parsePrefix(cleaned)
}

// parsePrefix parses the longest numeric prefix, the way lenient float
// parsing treats "1.2.3" as 1.2.
func parsePrefix(s string) float64 {
	for end := len(s) - 1; end > 0; end-- {
		if v, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return v
		}
	}
	return 0
}
