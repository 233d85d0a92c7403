// Package gti scrapes the NGX price lists published as GTI Research posts.
package gti

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ngx_pipeline/internal/feature/scraping/domain"
	"ngx_pipeline/internal/feature/scraping/domain/entity"
	"ngx_pipeline/internal/feature/scraping/table"
	stockentity "ngx_pipeline/internal/feature/stocks/domain/entity"
	platformhttp "ngx_pipeline/internal/platform/http"
)

// tableSelectors are tried in order; the first one yielding rows wins.
var tableSelectors = []string{
	`table[id^="tablepress-"]`,
	".tablepress",
	"table.dataTable",
	"table",
}

// Headers maps GTI header text to columns. Header text is upper-cased
// before matching.
var Headers = table.HeaderLocator{
	table.Symbol:        table.Contains("COMPANY", "SYMBOL"),
	table.PrevClose:     table.Contains("PCLOSE"),
	table.Open:          table.Contains("OPEN"),
	table.High:          table.Contains("HIGH"),
	table.Low:           table.Contains("LOW"),
	table.Close:         table.ContainsExcept("CLOSE", "PCLOSE"),
	table.Change:        table.ContainsExcept("CHANGE", "%"),
	table.PercentChange: table.Contains("%CHANGE"),
	table.Volume:        table.Contains("VOLUME"),
	table.Value:         table.Contains("VALUE"),
	table.Trades:        table.Contains("TRADES"),
}

var allColumns = []table.Column{
	table.Symbol, table.PrevClose, table.Open, table.High, table.Low, table.Close,
	table.Change, table.PercentChange, table.Volume, table.Value, table.Trades,
}

// isPriceTable reports whether any header names a price-list column.
func isPriceTable(headers []string) bool {
	for _, h := range headers {
		u := strings.ToUpper(h)
		if strings.Contains(u, "COMPANY") || strings.Contains(u, "SYMBOL") ||
			strings.Contains(u, "CLOSE") || strings.Contains(u, "CHANGE") {
			return true
		}
	}
	return false
}

// Config holds the GTI scraper settings.
type Config struct {
	BaseURL string
}

// LoadConfig reads GTI_BASE_URL.
func LoadConfig() Config {
	cfg := Config{BaseURL: DefaultBaseURL}
	if v := os.Getenv("GTI_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	return cfg
}

// Scraper walks the candidate URLs of a date until one yields rows.
type Scraper struct {
	cfg     Config
	fetcher platformhttp.PageFetcher
}

// NewScraper returns a GTI scraper using fetcher for every GET.
func NewScraper(cfg Config, fetcher platformhttp.PageFetcher) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Scraper{cfg: cfg, fetcher: fetcher}
}

// Source returns the history source tag.
func (s *Scraper) Source() string { return stockentity.SourceGTI }

// Scrape returns the records of the first candidate URL that parses to at
// least one row. When every candidate fails the error wraps
// domain.ErrNoPriceList.
func (s *Scraper) Scrape(ctx context.Context, date time.Time) ([]entity.RawRecord, error) {
	ds := date.Format(time.DateOnly)
	tried := map[string]bool{}
	var lastErr error

	for i, url := range CandidateURLs(s.cfg.BaseURL, date) {
		if tried[url] {
			continue
		}
		tried[url] = true

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		records, err := s.scrapeURL(ctx, url)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			slog.Debug("gti candidate failed", "date", ds, "candidate", i+1, "url", url, "error", err)
			lastErr = err
			continue
		}
		slog.Info("gti price list found", "date", ds, "candidate", i+1, "url", url, "rows", len(records))
		return records, nil
	}

	if lastErr == nil {
		return nil, fmt.Errorf("gti %s: %w", ds, domain.ErrNoPriceList)
	}
	return nil, fmt.Errorf("gti %s: %w (last: %w)", ds, domain.ErrNoPriceList, lastErr)
}

func (s *Scraper) scrapeURL(ctx context.Context, url string) ([]entity.RawRecord, error) {
	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return Parse(body)
}

// Parse extracts records from a GTI post. It returns domain.ErrNoTable when
// no table has price-list headers and domain.ErrNoRows when tables were
// found but none produced a row.
func Parse(body []byte) ([]entity.RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	found := false
	for _, sel := range tableSelectors {
		var out []entity.RawRecord
		doc.Find(sel).Each(func(_ int, t *goquery.Selection) {
			rows := t.Find("tr")
			var headers []string
			rows.First().Find("th").Each(func(_ int, th *goquery.Selection) {
				headers = append(headers, strings.TrimSpace(th.Text()))
			})
			if !isPriceTable(headers) {
				return
			}
			found = true
			out = append(out, parseRows(rows.Slice(1, goquery.ToEnd), table.Resolve(Headers, headers, allColumns...))...)
		})
		if len(out) > 0 {
			return out, nil
		}
	}
	if !found {
		return nil, domain.ErrNoTable
	}
	return nil, domain.ErrNoRows
}

func parseRows(rows *goquery.Selection, l table.Layout) []entity.RawRecord {
	minCells := l.MinCells(table.Symbol, table.Close, table.Volume)
	var out []entity.RawRecord

	rows.Each(func(_ int, tr *goquery.Selection) {
		tds := tr.Find("td")
		if tds.Length() == 0 || tds.Length() < minCells {
			return
		}
		row := make(table.Row, 0, tds.Length())
		tds.Each(func(_ int, td *goquery.Selection) {
			row = append(row, strings.TrimSpace(td.Text()))
		})

		symbol := row.Text(l, table.Symbol)
		if symbol == "" || strings.Contains(strings.ToUpper(symbol), "TOTAL") {
			return
		}

		closePrice := row.Float(l, table.Close)
		pclose := row.Float(l, table.PrevClose)

		// CHANGE も PCLOSE もない表では変化額 0、騰落率は nil のまま（percent-change バックフィルで補完）
		var change float64
		switch {
		case l.Has(table.Change):
			change = row.Float(l, table.Change)
		case l.Has(table.PrevClose):
			change = closePrice - pclose
		}

		var pc *float64
		switch {
		case l.Has(table.PercentChange):
			v := row.Float(l, table.PercentChange)
			pc = &v
		case l.Has(table.PrevClose):
			v := 0.0
			if pclose > 0 {
				v = (closePrice - pclose) / pclose * 100
			}
			pc = &v
		}

		out = append(out, entity.RawRecord{
			Symbol:        symbol,
			ClosePrice:    closePrice,
			Change:        change,
			PercentChange: pc,
			Volume:        row.Int(l, table.Volume),
			Value:         row.Float(l, table.Value),
			Trades:        row.Int(l, table.Trades),
		})
	})
	return out
}
