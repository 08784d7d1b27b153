package annotate

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sncix/pinyin-annotation/internal/core/lookup"
)

type staticLookup struct {
	readings [][]string
	err      error
	calls    int
}

func (s *staticLookup) Readings(string) ([][]string, error) {
	s.calls++
	return s.readings, s.err
}

type call struct {
	hanzi, bracketed string
	candidates       []string
}

// mapPruner answers per character and records calls in order.
type mapPruner struct {
	answers map[string][]string
	err     error
	calls   []call
}

func (m *mapPruner) Prune(_ context.Context, hanzi, bracketed string, candidates []string) ([]string, error) {
	m.calls = append(m.calls, call{hanzi, bracketed, candidates})
	if m.err != nil {
		return nil, m.err
	}
	if a, ok := m.answers[hanzi]; ok {
		return a, nil
	}
	return candidates, nil
}

func newTestAnnotator(l lookup.Lookup, p Pruner) (*Annotator, *test.Hook) {
	log, hook := test.NewNullLogger()
	return New(l, p, logrus.NewEntry(log)), hook
}

func TestAnnotatePhrase_Example(t *testing.T) {
	t.Parallel()

	l := &staticLookup{readings: [][]string{{"ke"}, {"kou"}, {"ke"}, {"yue", "le", "yao", "lao"}, {"gong"}, {"si"}}}
	p := &mapPruner{answers: map[string][]string{"樂": {"le"}}}
	a, hook := newTestAnnotator(l, p)

	var sink bytes.Buffer
	require.NoError(t, a.AnnotatePhrase(context.Background(), "可口可樂公司", &sink))

	assert.Equal(t, "可口可樂公司\tke kou ke le gong si\n", sink.String())
	assert.Equal(t, 1, l.calls)

	require.Len(t, p.calls, 6)
	wantBracketed := []string{"[可]口可樂公司", "可[口]可樂公司", "可口[可]樂公司", "可口可[樂]公司", "可口可樂[公]司", "可口可樂公[司]"}
	for i, c := range p.calls {
		assert.Equal(t, wantBracketed[i], c.bracketed)
		assert.Equal(t, l.readings[i], c.candidates)
	}

	require.NotEmpty(t, hook.AllEntries())
	assert.Equal(t, "可口可樂公司\tke kou ke le gong si", hook.LastEntry().Message)
}

func TestReadings_CartesianCompleteAndSorted(t *testing.T) {
	t.Parallel()

	l := &staticLookup{readings: [][]string{{"zhong", "chong"}, {"le", "yue", "yao"}}}
	a, _ := newTestAnnotator(l, &mapPruner{})

	got, err := a.Readings(context.Background(), "重樂")
	require.NoError(t, err)

	assert.Len(t, got, 2*3)
	assert.True(t, sort.StringsAreSorted(got))
	assert.Equal(t, []string{
		"chong le", "chong yao", "chong yue",
		"zhong le", "zhong yao", "zhong yue",
	}, got)
}

func TestAnnotatePhrase_EmptyPositionEmitsNothing(t *testing.T) {
	t.Parallel()

	l := &staticLookup{readings: [][]string{{"ke"}, {"yue", "le"}, {"zhong", "chong"}}}
	p := &mapPruner{answers: map[string][]string{"樂": {}}}
	a, _ := newTestAnnotator(l, p)

	var sink bytes.Buffer
	require.NoError(t, a.AnnotatePhrase(context.Background(), "可樂重", &sink))
	assert.Empty(t, sink.String())
	// Every character is still disambiguated.
	assert.Len(t, p.calls, 3)
}

func TestReadings_LookupFailureIsFatal(t *testing.T) {
	t.Parallel()

	l := &staticLookup{err: lookup.ErrUnknownGlyph}
	p := &mapPruner{}
	a, _ := newTestAnnotator(l, p)

	var sink bytes.Buffer
	err := a.AnnotatePhrase(context.Background(), "可x", &sink)
	require.Error(t, err)
	assert.True(t, errors.Is(err, lookup.ErrUnknownGlyph))
	assert.Empty(t, p.calls)
	assert.Empty(t, sink.String())
}

func TestReadings_PrunerErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("schema violation")
	l := &staticLookup{readings: [][]string{{"yue", "le"}, {"si"}}}
	a, _ := newTestAnnotator(l, &mapPruner{err: boom})

	var sink bytes.Buffer
	err := a.AnnotatePhrase(context.Background(), "樂司", &sink)
	assert.True(t, errors.Is(err, boom))
	assert.Empty(t, sink.String())
}

func TestReadings_PositionMismatch(t *testing.T) {
	t.Parallel()

	a, _ := newTestAnnotator(&staticLookup{readings: [][]string{{"ke"}}}, &mapPruner{})
	_, err := a.Readings(context.Background(), "可口")
	assert.Error(t, err)
}

func TestReadings_EmptyPhrase(t *testing.T) {
	t.Parallel()

	l := &staticLookup{}
	a, _ := newTestAnnotator(l, &mapPruner{})
	got, err := a.Readings(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, l.calls)
}

func TestReadings_WithRealLookup(t *testing.T) {
	t.Parallel()

	a, _ := newTestAnnotator(lookup.NewPinyin(), &mapPruner{answers: map[string][]string{"樂": {"le"}}})
	got, err := a.Readings(context.Background(), "可樂")
	require.NoError(t, err)
	for _, r := range got {
		assert.True(t, strings.HasSuffix(r, " le"), r)
	}
}

func TestBracket(t *testing.T) {
	t.Parallel()

	chars := []rune("音樂")
	assert.Equal(t, "[音]樂", Bracket(chars, 0))
	assert.Equal(t, "音[樂]", Bracket(chars, 1))
}

func TestJoinProduct(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a c", "a d", "b c", "b d"}, JoinProduct([][]string{{"a", "b"}, {"c", "d"}}))
	assert.Equal(t, []string{"x"}, JoinProduct([][]string{{"x"}}))
	assert.Empty(t, JoinProduct([][]string{{"a"}, {}}))
	assert.Empty(t, JoinProduct(nil))

	sizes := [][]string{{"1", "2"}, {"1", "2", "3"}, {"1"}, {"1", "2", "3", "4"}}
	assert.Len(t, JoinProduct(sizes), 2*3*1*4)
}
