package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want float64
	}{
		{"31.50", 31.5},
		{"1,234,567", 1234567},
		{" -0.45 ", -0.45},
		{"₦12.00", 12},
		{"5.2%", 5.2},
		{"", 0},
		{"N/A", 0},
		{"--", 0},
		{"1.2.3", 1.2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseNumber(tt.in), "input %q", tt.in)
	}
}

func TestFixedLocator(t *testing.T) {
	t.Parallel()

	loc := FixedLocator{Open: 0, Close: 1}
	assert.Equal(t, 1, loc.Locate([]string{"anything"}, Close))
	assert.Equal(t, -1, loc.Locate(nil, Volume))
}

func TestHeaderLocator(t *testing.T) {
	t.Parallel()

	loc := HeaderLocator{
		Symbol:        Contains("COMPANY", "SYMBOL"),
		Close:         ContainsExcept("CLOSE", "PCLOSE"),
		PrevClose:     Contains("PCLOSE"),
		Change:        ContainsExcept("CHANGE", "%"),
		PercentChange: Contains("%CHANGE"),
	}
	headers := []string{"Company", "PClose", "Close", "%Change", "Change"}

	l := Resolve(loc, headers, Symbol, PrevClose, Close, Change, PercentChange, Volume)
	assert.Equal(t, 0, l.Index(Symbol))
	assert.Equal(t, 1, l.Index(PrevClose))
	assert.Equal(t, 2, l.Index(Close))
	assert.Equal(t, 3, l.Index(PercentChange))
	assert.Equal(t, 4, l.Index(Change))
	assert.False(t, l.Has(Volume))
	assert.Equal(t, 5, l.MinCells(Symbol, Change, Volume))
}

func TestRow(t *testing.T) {
	t.Parallel()

	l := Layout{Symbol: 0, Close: 1, Volume: 2, Value: 5}
	r := Row{"MTNN", "250.00", "1,000,000"}

	assert.Equal(t, "MTNN", r.Text(l, Symbol))
	assert.Equal(t, 250.0, r.Float(l, Close))
	assert.Equal(t, int64(1000000), r.Int(l, Volume))
	assert.Equal(t, 0.0, r.Float(l, Value))
	assert.Equal(t, "", r.Text(l, Trades))
}
