// Package entity defines the persisted summary of a command run.
package entity

import "time"

// Kind names the command that produced a run.
type Kind string

const (
	KindIngest        Kind = "ingest"
	KindMerge         Kind = "merge"
	KindPercentChange Kind = "percent-change"
	KindSectors       Kind = "sectors"
	KindCleanup       Kind = "cleanup"
	KindDiagnose      Kind = "diagnose"
)

// Run is one finished command invocation. Summary holds the command's JSON
// report as written.
type Run struct {
	ID         string
	Kind       Kind
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time
	Summary    string
	Error      string
}

// Succeeded reports whether the run ended without an error.
func (r Run) Succeeded() bool { return r.Error == "" }
