// Package gazetteer resolves free-text mountain names against a list of known
// Tatra peaks loaded from OpenStreetMap, with a built-in fallback list.
package gazetteer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases and trims s, then strips combining marks after
// canonical decomposition. "Świnica" and "swinica" normalize to the same key.
func Normalize(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
