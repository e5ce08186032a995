package generator

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var resolverChoices = []string{"Glycolysis", "Krebs cycle", "Electron transport chain", "Beta oxidation"}

func TestResolveCorrectAnswer_Index(t *testing.T) {
	log, hook := test.NewNullLogger()
	for i := 0; i < 4; i++ {
		res, err := ResolveCorrectAnswer(log, IndexKey(i), resolverChoices)
		require.NoError(t, err)
		assert.Equal(t, i, res.Index)
		assert.Equal(t, StrategyIndex, res.Strategy)
	}
	assert.Empty(t, hook.AllEntries())
}

func TestResolveCorrectAnswer_IndexOutOfRange(t *testing.T) {
	log, _ := test.NewNullLogger()
	for _, i := range []int{-1, 4, 99} {
		_, err := ResolveCorrectAnswer(log, IndexKey(i), resolverChoices)
		assert.ErrorIs(t, err, ErrAnswerOutOfRange, "index %d", i)
	}
}

func TestResolveCorrectAnswer_Letter(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"A", 0},
		{"b", 1},
		{"C)", 2},
		{"(D)", 3},
		{"  B  ", 1},
		{"C) Electron transport chain", 2},
		{"D. Beta oxidation", 3},
		{"(a) anything at all", 0},
		{"B: Krebs", 1},
		{"d - trailing text", 3},
	}
	log, _ := test.NewNullLogger()
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			res, err := ResolveCorrectAnswer(log, TextKey(tt.value), resolverChoices)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Index)
			assert.Equal(t, StrategyLetter, res.Strategy)
		})
	}
}

func TestResolveCorrectAnswer_ExactChoiceResolvesToOwnIndex(t *testing.T) {
	choices := []string{"Baz", "Apple", "Cat", "Dog"}
	log, _ := test.NewNullLogger()
	for k, c := range choices {
		res, err := ResolveCorrectAnswer(log, TextKey(c), choices)
		require.NoError(t, err)
		assert.Equal(t, k, res.Index, "choice %q", c)
	}
}

func TestResolveCorrectAnswer_ChoiceStartingWithLetter(t *testing.T) {
	choices := []string{"B cells", "T cells", "C-reactive protein", "D-glucose"}
	log, _ := test.NewNullLogger()
	for k, c := range choices {
		res, err := ResolveCorrectAnswer(log, TextKey(c), choices)
		require.NoError(t, err)
		assert.Equal(t, k, res.Index, "choice %q", c)
		assert.Equal(t, StrategyExact, res.Strategy)
	}

	res, err := ResolveCorrectAnswer(log, TextKey("B) T cells"), choices)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Index)
	assert.Equal(t, StrategyLetter, res.Strategy)
}

func TestResolveCorrectAnswer_BareLetterBeatsLetterChoices(t *testing.T) {
	bloodTypes := []string{"O", "AB", "B", "A"}
	tests := []struct {
		value string
		want  int
	}{
		{"A", 0},
		{"B", 1},
		{"(b)", 1},
		{"C)", 2},
		{"D.", 3},
	}
	log, _ := test.NewNullLogger()
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			res, err := ResolveCorrectAnswer(log, TextKey(tt.value), bloodTypes)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Index)
			assert.Equal(t, StrategyLetter, res.Strategy)
		})
	}

	res, err := ResolveCorrectAnswer(log, TextKey("AB"), bloodTypes)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Index)
	assert.Equal(t, StrategyExact, res.Strategy)
}

func TestResolveCorrectAnswer_Exact(t *testing.T) {
	log, _ := test.NewNullLogger()

	res, err := ResolveCorrectAnswer(log, TextKey("Krebs cycle"), resolverChoices)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Index)
	assert.Equal(t, StrategyExact, res.Strategy)

	res, err = ResolveCorrectAnswer(log, TextKey("C) Electron transport chain"), []string{"x", "y", "z", "w"})
	require.NoError(t, err)
	assert.Equal(t, StrategyLetter, res.Strategy)

	res, err = ResolveCorrectAnswer(log, TextKey("electron transport chain"), resolverChoices)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Index)
	assert.Equal(t, StrategyLoose, res.Strategy)
}

func TestResolveCorrectAnswer_Loose(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"case-insensitive equality", "krebs CYCLE", 1},
		{"value inside choice", "transport", 2},
		{"choice inside value", "It is beta oxidation, clearly", 3},
		{"first match wins", "cycle", 1},
	}
	log, _ := test.NewNullLogger()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ResolveCorrectAnswer(log, TextKey(tt.value), resolverChoices)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Index)
			assert.Equal(t, StrategyLoose, res.Strategy)
		})
	}
}

func TestResolveCorrectAnswer_DefaultLogsWarning(t *testing.T) {
	tests := []struct {
		name string
		key  AnswerKey
	}{
		{"unmatched text", TextKey("banana split")},
		{"empty text", TextKey("")},
		{"missing", AnswerKey{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, hook := test.NewNullLogger()

			res, err := ResolveCorrectAnswer(log, tt.key, resolverChoices)
			require.NoError(t, err)
			assert.Equal(t, 0, res.Index)
			assert.Equal(t, StrategyDefault, res.Strategy)

			require.Len(t, hook.Entries, 1)
			entry := hook.LastEntry()
			assert.Equal(t, logrus.WarnLevel, entry.Level)
			assert.Equal(t, "correct answer unresolved, defaulting to index 0", entry.Message)
			assert.Contains(t, entry.Data, "correct_answer")
		})
	}
}

func TestResolveCorrectAnswer_EmptyChoiceNeverMatchesLoosely(t *testing.T) {
	log, _ := test.NewNullLogger()
	choices := []string{"alpha", "", "gamma", "delta"}

	res, err := ResolveCorrectAnswer(log, TextKey("epsilon"), choices)
	require.NoError(t, err)
	assert.Equal(t, StrategyDefault, res.Strategy)
}
