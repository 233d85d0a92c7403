// Package adapters persists maintenance artifacts.
package adapters

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ngx_pipeline/internal/feature/maintenance/domain/entity"
	"ngx_pipeline/internal/feature/maintenance/usecase"
)

// AuditFileWriter writes merge results as indented JSON files.
type AuditFileWriter struct {
	dir string
	now func() time.Time
}

var _ usecase.AuditWriter = (*AuditFileWriter)(nil)

// NewAuditFileWriter writes into dir; empty means the working directory.
func NewAuditFileWriter(dir string) *AuditFileWriter {
	if dir == "" {
		dir = "."
	}
	return &AuditFileWriter{dir: dir, now: time.Now}
}

// FileName returns merge-stocks-<timestamp>[-dry-run].json for t, with
// ':' and '.' of the UTC timestamp replaced by '-'.
func FileName(t time.Time, dryRun bool) string {
	ts := t.UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	suffix := ""
	if dryRun {
		suffix = "-dry-run"
	}
	return fmt.Sprintf("merge-stocks-%s%s.json", ts, suffix)
}

// Write stores results and returns the file path.
func (w *AuditFileWriter) Write(results []entity.MergeResult, dryRun bool) (string, error) {
	if results == nil {
		results = []entity.MergeResult{}
	}
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode merge audit: %w", err)
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create audit dir: %w", err)
	}
	path := filepath.Join(w.dir, FileName(w.now(), dryRun))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write merge audit: %w", err)
	}
	return path, nil
}
