// Package apt scrapes the APT Securities daily NSE price list.
package apt

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ngx_pipeline/internal/feature/scraping/domain/entity"
	"ngx_pipeline/internal/feature/scraping/table"
	stockentity "ngx_pipeline/internal/feature/stocks/domain/entity"
	platformhttp "ngx_pipeline/internal/platform/http"
)

// DefaultBaseURL is the APT Securities site.
const DefaultBaseURL = "https://www.aptsecurities.com"

// rowSelector matches the body rows of the price table.
const rowSelector = "table.table-bordered tbody tr"

// Columns are fixed offsets into the row's td cells; the ticker is in th.
// The site's change column (4) is ignored in favour of close-open.
var Columns = table.FixedLocator{
	table.Open:   0,
	table.Close:  1,
	table.High:   2,
	table.Low:    3,
	table.Change: 4,
	table.Trades: 5,
	table.Volume: 6,
	table.Value:  7,
}

// minCells is the td count a data row needs.
const minCells = 8

// Config holds the APT scraper settings.
type Config struct {
	BaseURL string
}

// LoadConfig reads APT_BASE_URL.
func LoadConfig() Config {
	cfg := Config{BaseURL: DefaultBaseURL}
	if v := os.Getenv("APT_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	return cfg
}

// Scraper fetches and parses one day's APT price list.
type Scraper struct {
	cfg     Config
	fetcher platformhttp.PageFetcher
}

// NewScraper returns an APT scraper using fetcher for every GET.
func NewScraper(cfg Config, fetcher platformhttp.PageFetcher) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Scraper{cfg: cfg, fetcher: fetcher}
}

// Source returns the history source tag.
func (s *Scraper) Source() string { return stockentity.SourceAPT }

// URL returns the price-list URL for date.
func (s *Scraper) URL(date time.Time) string {
	return fmt.Sprintf("%s/nse-daily-price.php?date=%s", strings.TrimRight(s.cfg.BaseURL, "/"), date.Format(time.DateOnly))
}

// Scrape returns the records for date. An empty list with a nil error means
// the exchange did not trade that day.
func (s *Scraper) Scrape(ctx context.Context, date time.Time) ([]entity.RawRecord, error) {
	url := s.URL(date)
	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("apt %s: %w", date.Format(time.DateOnly), err)
	}

	records, err := Parse(body)
	if err != nil {
		return nil, fmt.Errorf("apt %s: %w", date.Format(time.DateOnly), err)
	}
	if len(records) == 0 {
		slog.Info("no apt data, possibly a holiday", "date", date.Format(time.DateOnly), "url", url)
	}
	return records, nil
}

// Parse extracts records from an APT page.
func Parse(body []byte) ([]entity.RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	layout := table.Resolve(Columns, nil,
		table.Open, table.Close, table.High, table.Low, table.Trades, table.Volume, table.Value)

	var out []entity.RawRecord
	doc.Find(rowSelector).Each(func(_ int, tr *goquery.Selection) {
		symbol := strings.TrimSpace(tr.Find("th").Text())
		if symbol == "" || strings.Contains(strings.ToUpper(symbol), "TOTAL") {
			return
		}
		tds := tr.Find("td")
		if tds.Length() < minCells {
			return
		}
		row := make(table.Row, 0, tds.Length())
		tds.Each(func(_ int, td *goquery.Selection) {
			row = append(row, strings.TrimSpace(td.Text()))
		})

		open := row.Float(layout, table.Open)
		closePrice := row.Float(layout, table.Close)
		change := closePrice - open
		pc := 0.0
		if open > 0 {
			pc = change / open * 100
		}

		out = append(out, entity.RawRecord{
			Symbol:        symbol,
			ClosePrice:    closePrice,
			Change:        change,
			PercentChange: &pc,
			Volume:        row.Int(layout, table.Volume),
			Value:         row.Float(layout, table.Value),
			Trades:        row.Int(layout, table.Trades),
		})
	})
	return out, nil
}
