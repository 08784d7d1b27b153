// Package lookup resolves every character of a phrase to its tone-free pinyin readings.
package lookup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mozillazg/go-pinyin"
)

// ErrUnknownGlyph is returned when a character has no reading in the dictionary.
var ErrUnknownGlyph = errors.New("unknown glyph")

// Lookup returns, per character position, every candidate reading in
// dictionary order.
type Lookup interface {
	Readings(phrase string) ([][]string, error)
}

// Pinyin looks readings up in the go-pinyin dictionary with heteronyms
// enabled and the tone-free Normal style.
type Pinyin struct {
	args pinyin.Args
}

func NewPinyin() *Pinyin {
	args := pinyin.NewArgs()
	args.Heteronym = true
	args.Style = pinyin.Normal
	// No substitution for unknown runes: an empty result fails the phrase.
	args.Fallback = func(r rune, a pinyin.Args) []string { return nil }
	return &Pinyin{args: args}
}

// Readings fails fast on the first character that has no reading; no partial
// result is returned.
func (p *Pinyin) Readings(phrase string) ([][]string, error) {
	out := make([][]string, 0, len(phrase))
	pos := 0
	for _, r := range phrase {
		readings := dedupe(pinyin.SinglePinyin(r, p.args))
		if len(readings) == 0 {
			return nil, fmt.Errorf("%w %q at position %d of %q", ErrUnknownGlyph, r, pos, phrase)
		}
		out = append(out, readings)
		pos++
	}
	return out, nil
}

// dedupe keeps the first occurrence of each reading. Stripping tones folds
// e.g. hǎo/hào into the same string.
func dedupe(readings []string) []string {
	seen := make(map[string]struct{}, len(readings))
	out := make([]string, 0, len(readings))
	for _, r := range readings {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
