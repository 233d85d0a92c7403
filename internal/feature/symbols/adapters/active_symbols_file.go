// Package adapters loads symbol reference data from local files.
package adapters

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"ngx_pipeline/internal/feature/symbols/domain"
)

// DefaultActiveSymbolsFile is read when ACTIVE_SYMBOLS_FILE is unset.
const DefaultActiveSymbolsFile = "active_ngx_symbols.txt"

// LoadActiveSymbols reads a newline-delimited ticker list. A missing file is
// not an error: it is logged and an empty set is returned. Blank lines and
// lines starting with '#' are ignored.
func LoadActiveSymbols(path string, n domain.Normalizer) (domain.SymbolSet, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("active symbols file not found, active set is empty", "path", path)
		return domain.SymbolSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open active symbols: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("failed to close active symbols file", "error", err)
		}
	}()

	var symbols []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		symbols = append(symbols, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read active symbols: %w", err)
	}

	set := domain.NewSymbolSet(n, symbols...)
	slog.Info("loaded active symbols", "path", path, "count", set.Len())
	return set, nil
}
