package disambiguate

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeReading maps a model-written reading onto the lookup's style:
// lower case, no tone marks, ü written as v.
func NormalizeReading(s string) string {
	s = norm.NFC.String(strings.ToLower(strings.TrimSpace(s)))
	s = strings.ReplaceAll(s, "u:", "v")
	s = strings.Map(func(r rune) rune {
		switch r {
		case 'ü', 'ǖ', 'ǘ', 'ǚ', 'ǜ':
			return 'v'
		}
		return r
	}, s)

	// Chain holds state; build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	// Tone numbers: le4 -> le.
	return strings.TrimRightFunc(out, unicode.IsDigit)
}
