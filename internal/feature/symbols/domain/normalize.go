// Package domain contains symbol normalization and identity types.
package domain

import (
	"regexp"
	"strings"
	"unicode"
)

var bracketTag = regexp.MustCompile(`\[[^\]]*\]`)

// Normalizer canonicalizes raw ticker strings. It never fails; garbage in
// yields a normalized, possibly empty, string out.
type Normalizer struct {
	StripHyphens bool
}

var (
	// Standard keeps hyphens. Used by the sector backfill and diagnosis.
	Standard = Normalizer{}
	// Compact also removes hyphens. Used by ingestion identity resolution.
	Compact = Normalizer{StripHyphens: true}
)

// Normalize removes [..] tags and whitespace, optionally hyphens, and upper-cases.
func (n Normalizer) Normalize(raw string) string {
	s := bracketTag.ReplaceAllString(raw, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		if n.StripHyphens && r == '-' {
			return -1
		}
		return r
	}, s)
	return strings.ToUpper(strings.TrimSpace(s))
}

// Name returns "compact" or "standard".
func (n Normalizer) Name() string {
	if n.StripHyphens {
		return "compact"
	}
	return "standard"
}
