package generator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mcat-prep/backend/internal/models"
	"github.com/sirupsen/logrus"
)

// Strategy names report which matcher produced a resolved index.
const (
	StrategyIndex   = "index"
	StrategyLetter  = "letter"
	StrategyExact   = "exact"
	StrategyLoose   = "loose"
	StrategyDefault = "default"
)

// Resolution is the outcome of mapping a correct_answer value onto a choice.
type Resolution struct {
	Index    int
	Strategy string
}

type matcher struct {
	name  string
	match func(value string, choices []string) (int, bool)
}

// textMatchers run in order against a string correct_answer; first hit wins.
// A bare letter is always a letter answer. Any other value identical to a
// choice beats the letter rule so that choices such as "B cells" resolve to
// themselves.
var textMatchers = []matcher{
	{name: StrategyLetter, match: matchBareLetter},
	{name: StrategyExact, match: matchVerbatim},
	{name: StrategyLetter, match: matchLetter},
	{name: StrategyExact, match: matchExact},
	{name: StrategyLoose, match: matchLoose},
}

// answerLetter matches a standalone A-D, optionally parenthesized. "Baz" is
// not a letter answer; "B", "b)", "(C) text" and "D. text" are.
var answerLetter = regexp.MustCompile(`^\(?([A-Da-d])(?:[^A-Za-z]|$)`)

// ResolveCorrectAnswer maps key onto an index into the cleaned choices.
// Only an explicit integer outside [0,3] is an error; anything that cannot
// be matched falls back to index 0 with a warning.
func ResolveCorrectAnswer(log logrus.FieldLogger, key AnswerKey, choices []string) (Resolution, error) {
	if key.Index != nil {
		idx := *key.Index
		if idx < 0 || idx >= models.ChoicesPerQuestion {
			return Resolution{}, fmt.Errorf("%w: got %d", ErrAnswerOutOfRange, idx)
		}
		return Resolution{Index: idx, Strategy: StrategyIndex}, nil
	}

	if key.Text != nil {
		value := strings.TrimSpace(*key.Text)
		for _, m := range textMatchers {
			if idx, ok := m.match(value, choices); ok {
				return Resolution{Index: idx, Strategy: m.name}, nil
			}
		}
	}

	log.WithFields(logrus.Fields{
		"correct_answer": key.String(),
		"choices":        choices,
	}).Warn("correct answer unresolved, defaulting to index 0")
	return Resolution{Index: 0, Strategy: StrategyDefault}, nil
}

// bareLetter matches a letter with nothing else besides optional
// parentheses or a trailing period: "A", "(b)", "C)", "D.".
var bareLetter = regexp.MustCompile(`^\(?[A-Da-d]\)?\.?$`)

func matchBareLetter(value string, choices []string) (int, bool) {
	if !bareLetter.MatchString(value) {
		return 0, false
	}
	return matchLetter(value, choices)
}

func matchLetter(value string, _ []string) (int, bool) {
	m := answerLetter.FindStringSubmatch(value)
	if m == nil {
		return 0, false
	}
	return int(strings.ToUpper(m[1])[0] - 'A'), true
}

func matchVerbatim(value string, choices []string) (int, bool) {
	if value == "" {
		return 0, false
	}
	for i, c := range choices {
		if c == value {
			return i, true
		}
	}
	return 0, false
}

func matchExact(value string, choices []string) (int, bool) {
	cleaned := CleanChoice(value)
	for i, c := range choices {
		if c == cleaned {
			return i, true
		}
	}
	return 0, false
}

// matchLoose accepts case-insensitive equality or containment in either
// direction. Empty strings on either side never match.
func matchLoose(value string, choices []string) (int, bool) {
	needle := strings.ToLower(CleanChoice(value))
	if needle == "" {
		return 0, false
	}
	for i, c := range choices {
		choice := strings.ToLower(c)
		if choice == "" {
			continue
		}
		if choice == needle || strings.Contains(choice, needle) || strings.Contains(needle, choice) {
			return i, true
		}
	}
	return 0, false
}
