// Package usecase drives the day-by-day scrape of NGX price lists into
// stock history.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	scrapedomain "ngx_pipeline/internal/feature/scraping/domain"
	scrapeentity "ngx_pipeline/internal/feature/scraping/domain/entity"
	"ngx_pipeline/internal/shared/ratelimiter"
)

const (
	// DefaultConcurrency bounds the concurrent upserts of one day.
	DefaultConcurrency = 20
	// DefaultMinHistory and DefaultMaxHistory bound the implicit backfill targets.
	DefaultMinHistory = 100
	DefaultMaxHistory = 500
)

// Scraper returns the price list a source published for one day.
// Following Go convention: interfaces are defined by the consumer.
type Scraper interface {
	Source() string
	Scrape(ctx context.Context, date time.Time) ([]scrapeentity.RawRecord, error)
}

// ResolverFactory builds a fresh resolver for each run.
type ResolverFactory func() IdentityResolver

// Options selects what one Execute call does.
type Options struct {
	Mode   Mode
	DryRun bool
	// From and To bound the dates; zero values use the span of the windows.
	From time.Time
	To   time.Time
	// Sources restricts the scrapers used; empty means all.
	Sources []string
	// 対象銘柄の絞り込み（backfill のみ）。AllStocks なら絞り込まない
	AllStocks  bool
	Symbols    []string
	MinHistory int64
	MaxHistory int64
}

// Report is the summary of one run.
type Report struct {
	RunID       string       `json:"run_id"`
	Mode        Mode         `json:"mode"`
	DryRun      bool         `json:"dry_run"`
	From        string       `json:"from"`
	To          string       `json:"to"`
	Targets     int          `json:"targets"`
	Counters    Counters     `json:"counters"`
	FailedDates []FailedDate `json:"failed_dates,omitempty"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
}

// IngestUsecase scrapes every business day of a range and upserts the rows.
type IngestUsecase struct {
	scrapers    map[string]Scraper
	newResolver ResolverFactory
	histories   HistoryStore
	stocks      StockStore
	pacer       ratelimiter.Limiter
	windows     []Window
	concurrency int
	now         func() time.Time
}

// NewIngestUsecase wires the use case. pacer runs after every day; windows
// nil means DefaultWindows(today); concurrency <= 0 means DefaultConcurrency.
func NewIngestUsecase(
	scrapers []Scraper,
	newResolver ResolverFactory,
	histories HistoryStore,
	stocks StockStore,
	pacer ratelimiter.Limiter,
	windows []Window,
	concurrency int,
) *IngestUsecase {
	bySource := make(map[string]Scraper, len(scrapers))
	for _, s := range scrapers {
		bySource[s.Source()] = s
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if pacer == nil {
		pacer = ratelimiter.FixedDelay{}
	}
	return &IngestUsecase{
		scrapers:    bySource,
		newResolver: newResolver,
		histories:   histories,
		stocks:      stocks,
		pacer:       pacer,
		windows:     windows,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Execute runs the pipeline over the requested range. Dates are processed in
// order; a failing source is recorded and the run continues. Only context
// cancellation and target selection errors abort the run.
func (iu *IngestUsecase) Execute(ctx context.Context, opts Options) (*Report, error) {
	started := iu.now()

	windows := iu.windows
	if windows == nil {
		windows = DefaultWindows(started)
	}
	windows = filterWindows(windows, opts.Sources)
	if len(windows) == 0 {
		return nil, fmt.Errorf("no source windows for sources %v", opts.Sources)
	}

	from, to := Span(windows)
	if !opts.From.IsZero() {
		from = opts.From
	}
	if !opts.To.IsZero() {
		to = opts.To
	}

	run := NewRun(opts.Mode, opts.DryRun, iu.newResolver(), iu.histories, iu.stocks)
	report := &Report{
		RunID:     run.ID,
		Mode:      run.Mode,
		DryRun:    run.DryRun,
		From:      from.Format(time.DateOnly),
		To:        to.Format(time.DateOnly),
		StartedAt: started,
	}

	if run.Mode == ModeBackfill && !opts.AllStocks {
		lo, hi := opts.MinHistory, opts.MaxHistory
		if lo == 0 && hi == 0 {
			lo, hi = DefaultMinHistory, DefaultMaxHistory
		}
		targets, err := SelectTargets(ctx, run.resolver, TargetFilter{Symbols: opts.Symbols, MinHistory: lo, MaxHistory: hi})
		if err != nil {
			return nil, fmt.Errorf("select targets: %w", err)
		}
		if len(targets) == 0 {
			return nil, ErrNoTargets
		}
		ids := make([]string, 0, len(targets))
		for _, t := range targets {
			ids = append(ids, t.ID)
		}
		run.SetTargets(ids)
		report.Targets = len(ids)
		slog.Info("backfill targets selected", "run_id", run.ID, "targets", len(ids), "min", lo, "max", hi)
	}

	slog.Info("ingest run started", "run_id", run.ID, "mode", run.Mode, "dry_run", run.DryRun,
		"from", report.From, "to", report.To)

	for _, day := range BusinessDays(from, to) {
		if err := ctx.Err(); err != nil {
			return iu.finish(report, run), err
		}
		iu.processDay(ctx, run, day, SourcesFor(day, windows))
		run.dayDone()

		if err := iu.pacer.Wait(ctx); err != nil {
			return iu.finish(report, run), err
		}
	}

	iu.finish(report, run)
	c := report.Counters
	slog.Info("ingest run finished", "run_id", run.ID,
		"created", c.Created, "skipped_duplicate", c.SkippedDuplicate,
		"skipped_invalid", c.SkippedInvalid, "skipped_unmatched", c.SkippedUnmatched,
		"skipped_untargeted", c.SkippedUntargeted, "failed", c.Failed,
		"stocks_created", c.StocksCreated, "failed_dates", len(report.FailedDates))
	return report, nil
}

func (iu *IngestUsecase) finish(report *Report, run *Run) *Report {
	report.Counters = run.Counters()
	report.FailedDates = run.FailedDates()
	report.FinishedAt = iu.now()
	return report
}

// processDay scrapes each source for day and upserts its rows with bounded
// concurrency.
func (iu *IngestUsecase) processDay(ctx context.Context, run *Run, day time.Time, sources []string) {
	ds := day.Format(time.DateOnly)
	for _, source := range sources {
		scraper, ok := iu.scrapers[source]
		if !ok {
			continue
		}

		records, err := scraper.Scrape(ctx, day)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if IsNoData(err) {
				slog.Warn("no price list found", "date", ds, "source", source, "error", err)
			} else {
				slog.Error("failed to scrape price list", "date", ds, "source", source, "error", err)
			}
			run.recordFailure(day, source, err)
			continue
		}
		if len(records) == 0 {
			slog.Info("no trading data, assuming holiday", "date", ds, "source", source)
			continue
		}
		slog.Info("processing price list", "date", ds, "source", source, "records", len(records))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(iu.concurrency)
		for _, rec := range records {
			g.Go(func() error {
				run.Upsert(gctx, day, rec, source)
				return nil
			})
		}
		_ = g.Wait()
	}
}

func filterWindows(windows []Window, sources []string) []Window {
	if len(sources) == 0 {
		return windows
	}
	want := map[string]bool{}
	for _, s := range sources {
		want[s] = true
	}
	var out []Window
	for _, w := range windows {
		if want[w.Source] {
			out = append(out, w)
		}
	}
	return out
}

// IsNoData reports whether err only means a source had nothing for the day.
func IsNoData(err error) bool {
	return errors.Is(err, scrapedomain.ErrNoPriceList) || errors.Is(err, scrapedomain.ErrNoRows)
}
