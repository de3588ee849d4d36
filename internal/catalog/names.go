package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName folds a product name for lookups: diacritics removed,
// lower-cased, whitespace collapsed. "Pâine  Albă" and "paine alba" match.
func NormalizeName(name string) string {
	// đ has no decomposition
	name = strings.NewReplacer("đ", "dj", "Đ", "Dj").Replace(name)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
