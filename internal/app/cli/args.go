// Package cli parses the command-line arguments shared by every command.
package cli

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	ingestusecase "ngx_pipeline/internal/feature/ingest/usecase"
	"ngx_pipeline/internal/feature/maintenance/domain/entity"
	stockentity "ngx_pipeline/internal/feature/stocks/domain/entity"
)

// DefaultIngestMode is the ingest mode when --mode is not given.
const DefaultIngestMode = ingestusecase.ModeBackfill

// Args are the parsed arguments. Zero values mean "not given".
type Args struct {
	// Positional holds the non-flag arguments in order (symbols, or a task name).
	Positional []string
	DryRun     bool
	AllStocks  bool
	Min        int64
	Max        int64
	Mode       ingestusecase.Mode
	Sources    []string
	From       time.Time
	To         time.Time
	Scope      entity.MergeScope
	SourceTag  string
	// Ignored lists the flags that were not recognised or had a bad value.
	Ignored []string
}

// Parse reads argv (without the program name). Flags take the form
// --name or --name=value and may appear anywhere. Unknown flags and known
// flags with a malformed value are logged, collected in Ignored and leave
// the field at its default. Only a --to before --from is an error.
func Parse(argv []string) (Args, error) {
	var a Args
	for _, arg := range argv {
		if !strings.HasPrefix(arg, "--") {
			a.Positional = append(a.Positional, arg)
			continue
		}
		name, value, _ := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		var err error
		switch name {
		case "dry-run":
			a.DryRun = true
		case "all":
			a.AllStocks = true
		case "min":
			a.Min, err = parseCount(name, value)
		case "max":
			a.Max, err = parseCount(name, value)
		case "mode":
			a.Mode, err = parseMode(value)
		case "source":
			a.Sources, err = parseSource(value)
		case "from":
			a.From, err = parseDate(name, value)
		case "to":
			a.To, err = parseDate(name, value)
		case "scope":
			a.Scope, err = parseScope(value)
		case "source-tag":
			if value == "" {
				err = fmt.Errorf("--source-tag needs a value")
			}
			a.SourceTag = value
		default:
			slog.Warn("ignoring unknown flag", "flag", arg)
			a.Ignored = append(a.Ignored, arg)
		}
		if err != nil {
			// 不正な値はデフォルトのまま続行する
			slog.Warn("ignoring malformed flag, using default", "flag", arg, "error", err)
			a.Ignored = append(a.Ignored, arg)
		}
	}
	if !a.From.IsZero() && !a.To.IsZero() && a.To.Before(a.From) {
		return Args{}, fmt.Errorf("--to %s is before --from %s", a.To.Format(time.DateOnly), a.From.Format(time.DateOnly))
	}
	return a, nil
}

// IngestOptions maps the arguments onto an ingest run. Positional
// arguments are explicit symbols. Without --mode the run is a backfill.
func (a Args) IngestOptions() ingestusecase.Options {
	mode := a.Mode
	if mode == "" {
		mode = DefaultIngestMode
	}
	if unused := a.unusedBy(mode); len(unused) > 0 {
		slog.Warn("target filter only applies to backfill mode, ignoring", "mode", mode, "args", unused)
	}
	return ingestusecase.Options{
		Mode:       mode,
		DryRun:     a.DryRun,
		From:       a.From,
		To:         a.To,
		Sources:    a.Sources,
		AllStocks:  a.AllStocks,
		Symbols:    a.Positional,
		MinHistory: a.Min,
		MaxHistory: a.Max,
	}
}

// unusedBy lists the target-filter arguments that mode does not read.
func (a Args) unusedBy(mode ingestusecase.Mode) []string {
	if mode != ingestusecase.ModeScrape {
		return nil
	}
	var unused []string
	unused = append(unused, a.Positional...)
	if a.Min > 0 {
		unused = append(unused, fmt.Sprintf("--min=%d", a.Min))
	}
	if a.Max > 0 {
		unused = append(unused, fmt.Sprintf("--max=%d", a.Max))
	}
	if a.AllStocks {
		unused = append(unused, "--all")
	}
	return unused
}

func parseCount(name, value string) (int64, error) {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("--%s must be a non-negative integer, got %q", name, value)
	}
	return n, nil
}

func parseMode(value string) (ingestusecase.Mode, error) {
	switch m := ingestusecase.Mode(value); m {
	case ingestusecase.ModeScrape, ingestusecase.ModeBackfill:
		return m, nil
	default:
		return "", fmt.Errorf("--mode must be %q or %q, got %q", ingestusecase.ModeScrape, ingestusecase.ModeBackfill, value)
	}
}

func parseSource(value string) ([]string, error) {
	switch strings.ToLower(value) {
	case "apt":
		return []string{stockentity.SourceAPT}, nil
	case "gti":
		return []string{stockentity.SourceGTI}, nil
	case "all", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("--source must be apt, gti or all, got %q", value)
	}
}

func parseDate(name, value string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must be YYYY-MM-DD, got %q", name, value)
	}
	return t, nil
}

func parseScope(value string) (entity.MergeScope, error) {
	switch s := entity.MergeScope(value); s {
	case entity.ScopeGroup, entity.ScopeLoser:
		return s, nil
	default:
		return "", fmt.Errorf("--scope must be %q or %q, got %q", entity.ScopeGroup, entity.ScopeLoser, value)
	}
}
