// Package textnorm normalizes product and ingredient names so that fuzzy
// matching is stable across languages, spelling variants and feed encodings.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nordicReplacer maps letters that NFD decomposition does not split into a
// base letter plus combining mark. Norwegian and Danish feeds use these.
var nordicReplacer = strings.NewReplacer(
	"æ", "ae", "Æ", "ae",
	"ø", "o", "Ø", "o",
	"å", "a", "Å", "a",
	"ð", "d", "Ð", "d",
	"þ", "th", "Þ", "th",
	"ß", "ss",
)

// Fold lowercases s, removes diacritics and collapses whitespace. The result
// is the canonical form used on both sides of a similarity comparison.
func Fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nordicReplacer.Replace(s)
	s = removeDiacritics(s)
	return strings.Join(strings.Fields(s), " ")
}

// removeDiacritics strips combining marks after NFD decomposition, turning
// é into e, ü into u and so on.
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
