package adapters

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"ngx_pipeline/internal/feature/symbols/domain"
)

// renameFile is the YAML layout of RENAME_MAP_FILE:
//
//	replace_defaults: false
//	renames:
//	  UACPROP: UPDC
type renameFile struct {
	ReplaceDefaults bool              `yaml:"replace_defaults"`
	Renames         map[string]string `yaml:"renames"`
}

// LoadRenameMap returns the default rename map, extended (or replaced) by the
// YAML file at path. An empty path returns the defaults. The result is
// normalized with n.
func LoadRenameMap(path string, n domain.Normalizer) (domain.RenameMap, error) {
	m := domain.DefaultRenameMap()
	if path == "" {
		return m.Normalized(n), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rename map: %w", err)
	}
	var rf renameFile
	if err := yaml.Unmarshal(b, &rf); err != nil {
		return nil, fmt.Errorf("parse rename map %s: %w", path, err)
	}

	if rf.ReplaceDefaults {
		m = domain.RenameMap{}
	}
	for old, cur := range rf.Renames {
		m[old] = cur
	}
	slog.Info("loaded rename map", "path", path, "entries", len(m), "replace_defaults", rf.ReplaceDefaults)
	return m.Normalized(n), nil
}
