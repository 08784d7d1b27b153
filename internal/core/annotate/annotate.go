// Package annotate expands a phrase into every full pinyin reading its
// characters allow once each polyphonic character has been disambiguated.
package annotate

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sncix/pinyin-annotation/internal/core/lookup"
)

// Pruner narrows the candidate readings of one character in context.
type Pruner interface {
	Prune(ctx context.Context, hanzi, bracketed string, candidates []string) ([]string, error)
}

type Annotator struct {
	lookup lookup.Lookup
	pruner Pruner
	log    *logrus.Entry
}

func New(l lookup.Lookup, p Pruner, log *logrus.Entry) *Annotator {
	return &Annotator{lookup: l, pruner: p, log: log}
}

// Readings returns the sorted space-joined readings of phrase. Characters are
// pruned left to right; if any of them ends up with no reading the result is
// empty.
func (a *Annotator) Readings(ctx context.Context, phrase string) ([]string, error) {
	if phrase == "" {
		return nil, nil
	}
	candidates, err := a.lookup.Readings(phrase)
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", phrase, err)
	}
	chars := []rune(phrase)
	if len(candidates) != len(chars) {
		return nil, fmt.Errorf("lookup %q: got %d positions for %d characters", phrase, len(candidates), len(chars))
	}

	pruned := make([][]string, 0, len(chars))
	for i, r := range chars {
		readings, err := a.pruner.Prune(ctx, string(r), Bracket(chars, i), candidates[i])
		if err != nil {
			return nil, err
		}
		pruned = append(pruned, readings)
	}

	joined := JoinProduct(pruned)
	sort.Strings(joined)
	return joined, nil
}

// AnnotatePhrase writes one "phrase\treading" line per reading to sink and
// mirrors each line to the log.
func (a *Annotator) AnnotatePhrase(ctx context.Context, phrase string, sink io.Writer) error {
	readings, err := a.Readings(ctx, phrase)
	if err != nil {
		return err
	}
	return a.Emit(phrase, readings, sink)
}

// Emit writes and mirrors readings computed earlier by Readings.
func (a *Annotator) Emit(phrase string, readings []string, sink io.Writer) error {
	for _, r := range readings {
		line := phrase + "\t" + r
		a.log.Info(line)
		if _, err := fmt.Fprintln(sink, line); err != nil {
			return fmt.Errorf("write %q: %w", phrase, err)
		}
	}
	return nil
}

// Bracket returns the phrase with the character at i wrapped in [ ].
func Bracket(chars []rune, i int) string {
	var b strings.Builder
	b.WriteString(string(chars[:i]))
	b.WriteByte('[')
	b.WriteRune(chars[i])
	b.WriteByte(']')
	b.WriteString(string(chars[i+1:]))
	return b.String()
}

// JoinProduct takes one element from every set in every combination and
// joins each combination with single spaces. Order follows the sets, with
// the last set varying fastest. Any empty set empties the product.
func JoinProduct(sets [][]string) []string {
	if len(sets) == 0 {
		return nil
	}
	total := 1
	for _, s := range sets {
		if len(s) == 0 {
			return []string{}
		}
		total *= len(s)
	}

	out := make([]string, 0, total)
	idx := make([]int, len(sets))
	parts := make([]string, len(sets))
	for {
		for i, s := range sets {
			parts[i] = s[idx[i]]
		}
		out = append(out, strings.Join(parts, " "))

		// odometer
		k := len(sets) - 1
		for k >= 0 {
			idx[k]++
			if idx[k] < len(sets[k]) {
				break
			}
			idx[k] = 0
			k--
		}
		if k < 0 {
			return out
		}
	}
}
