package generator

import (
	"regexp"
	"strings"
)

// choicePrefix matches an answer letter at the start of a choice:
// "A) ", "B.", "(C) ".
var choicePrefix = regexp.MustCompile(`^(?:[A-D][).]|\([A-D]\))\s*`)

// CleanChoice strips a leading answer letter from a choice and trims the
// result. Stacked prefixes ("A) (A) text") are all removed, so cleaning is
// idempotent. Letters later in the string are left alone.
func CleanChoice(choice string) string {
	cleaned := strings.TrimSpace(choice)
	for {
		loc := choicePrefix.FindStringIndex(cleaned)
		if loc == nil {
			return cleaned
		}
		cleaned = strings.TrimSpace(cleaned[loc[1]:])
	}
}

func cleanChoices(choices []string) []string {
	cleaned := make([]string, len(choices))
	for i, c := range choices {
		cleaned[i] = CleanChoice(c)
	}
	return cleaned
}
