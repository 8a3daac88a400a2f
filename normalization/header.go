package normalization

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer decomposes accented characters and drops the combining
// marks, so "Razón Social" and "RAZON SOCIAL" fold to the same text.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldHeader normalizes a column header for keyword matching: lower case,
// diacritics removed, separators and repeated whitespace collapsed to a
// single space.
func FoldHeader(header string) string {
	folded, _, err := transform.String(foldTransformer, header)
	if err != nil {
		folded = header
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			// Dots, slashes, underscores and friends all act as separators.
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
