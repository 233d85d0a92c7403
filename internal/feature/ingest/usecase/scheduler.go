package usecase

import (
	"time"

	stockentity "ngx_pipeline/internal/feature/stocks/domain/entity"
)

// Window is the inclusive date range a source publishes price lists for.
type Window struct {
	Source string
	Start  time.Time
	End    time.Time
}

// Contains reports whether day falls inside the window.
func (w Window) Contains(day time.Time) bool {
	d := stockentity.TruncateDay(day)
	return !d.Before(stockentity.TruncateDay(w.Start)) && !d.After(stockentity.TruncateDay(w.End))
}

// DefaultWindows returns the APT and GTI windows, GTI ending today.
func DefaultWindows(today time.Time) []Window {
	return []Window{
		{
			Source: stockentity.SourceAPT,
			Start:  time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC),
			End:    time.Date(2022, 8, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			Source: stockentity.SourceGTI,
			Start:  time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC),
			End:    stockentity.TruncateDay(today),
		},
	}
}

// BusinessDays lists every Monday-Friday in [from, to] at midnight UTC.
func BusinessDays(from, to time.Time) []time.Time {
	start, end := stockentity.TruncateDay(from), stockentity.TruncateDay(to)
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		days = append(days, d)
	}
	return days
}

// SourcesFor returns, in window order, the sources whose window holds day.
func SourcesFor(day time.Time, windows []Window) []string {
	var out []string
	for _, w := range windows {
		if w.Contains(day) {
			out = append(out, w.Source)
		}
	}
	return out
}

// Span returns the earliest start and latest end across windows.
func Span(windows []Window) (time.Time, time.Time) {
	var from, to time.Time
	for i, w := range windows {
		if i == 0 || w.Start.Before(from) {
			from = w.Start
		}
		if i == 0 || w.End.After(to) {
			to = w.End
		}
	}
	return from, to
}
