package domain

import "sort"

// RenameMap maps an old normalized ticker to its current normalized ticker.
type RenameMap map[string]string

// DefaultRenameMap returns the known NGX ticker changes.
func DefaultRenameMap() RenameMap {
	return RenameMap{
		"FBNH":       "FIRSTHOLDCO",
		"ACCESS":     "ACCESSCORP",
		"BOCGAS":     "IMG",
		"UACPROP":    "UPDC",
		"GUARANTY":   "GTCO",
		"JAPAULOIL":  "JAPAULGOLD",
		"STERLNBANK": "STERLINGNG",
	}
}

// Reverse returns the new->old map. If several old tickers share a new one,
// the alphabetically first old ticker wins.
func (m RenameMap) Reverse() RenameMap {
	olds := make([]string, 0, len(m))
	for old := range m {
		olds = append(olds, old)
	}
	sort.Strings(olds)

	out := make(RenameMap, len(m))
	for _, old := range olds {
		if _, ok := out[m[old]]; !ok {
			out[m[old]] = old
		}
	}
	return out
}

// Normalized returns a copy whose keys and values are passed through n.
// Empty entries are dropped.
func (m RenameMap) Normalized(n Normalizer) RenameMap {
	out := make(RenameMap, len(m))
	for k, v := range m {
		nk, nv := n.Normalize(k), n.Normalize(v)
		if nk == "" || nv == "" || nk == nv {
			continue
		}
		out[nk] = nv
	}
	return out
}
