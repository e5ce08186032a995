package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// RawQuestion is one question record as the model returned it. Every field
// is optional. A record whose fields had unexpected JSON types is still
// produced; the decode error is kept for the builder to report.
type RawQuestion struct {
	QuestionText    *string
	AnswerChoices   []string
	CorrectAnswer   AnswerKey
	Explanation     *string
	ConceptTags     []string
	Subject         *string
	SubjectSubtopic *string

	decodeErr error
}

type rawQuestionFields struct {
	QuestionText    *string    `json:"question_text"`
	AnswerChoices   choiceList `json:"answer_choices"`
	CorrectAnswer   AnswerKey  `json:"correct_answer"`
	Explanation     *string    `json:"explanation"`
	ConceptTags     []string   `json:"concept_tags"`
	Subject         *string    `json:"subject"`
	SubjectSubtopic *string    `json:"subject_subtopic"`
}

// UnmarshalJSON never fails; see Err.
func (r *RawQuestion) UnmarshalJSON(data []byte) error {
	var f rawQuestionFields
	err := json.Unmarshal(data, &f)
	*r = RawQuestion{
		QuestionText:    f.QuestionText,
		AnswerChoices:   f.AnswerChoices,
		CorrectAnswer:   f.CorrectAnswer,
		Explanation:     f.Explanation,
		ConceptTags:     f.ConceptTags,
		Subject:         f.Subject,
		SubjectSubtopic: f.SubjectSubtopic,
		decodeErr:       err,
	}
	return nil
}

// Err returns the error hit while decoding the record, if any.
func (r RawQuestion) Err() error { return r.decodeErr }

// choiceList accepts any JSON array. Non-string elements keep their JSON text,
// so [1, 2, 3, 4] becomes ["1", "2", "3", "4"].
type choiceList []string

func (c *choiceList) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("answer_choices must be an array: %w", err)
	}
	out := make(choiceList, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		out = append(out, string(bytes.TrimSpace(item)))
	}
	*c = out
	return nil
}

// AnswerKey is the correct_answer value of a record: an integer, a string, or
// something unusable (kept in its raw JSON form for logging).
type AnswerKey struct {
	Index *int
	Text  *string

	raw string
}

// IndexKey returns an AnswerKey holding an integer index.
func IndexKey(i int) AnswerKey {
	return AnswerKey{Index: &i, raw: strconv.Itoa(i)}
}

// TextKey returns an AnswerKey holding a string value.
func TextKey(s string) AnswerKey {
	return AnswerKey{Text: &s, raw: strconv.Quote(s)}
}

func (k *AnswerKey) UnmarshalJSON(data []byte) error {
	raw := string(bytes.TrimSpace(data))
	*k = AnswerKey{}
	if raw == "null" {
		return nil
	}
	k.raw = raw

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		k.Text = &s
		return nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		k.Index = &n
		return nil
	}
	// 1.0 and 2e0 are integers too.
	var f float64
	if err := json.Unmarshal(data, &f); err == nil && f == math.Trunc(f) && math.Abs(f) <= math.MaxInt32 {
		n := int(f)
		k.Index = &n
	}
	return nil
}

// Present reports whether the record carried a non-null correct_answer.
func (k AnswerKey) Present() bool { return k.raw != "" }

func (k AnswerKey) String() string {
	switch {
	case k.Index != nil:
		return strconv.Itoa(*k.Index)
	case k.Text != nil:
		return *k.Text
	case k.raw != "":
		return k.raw
	default:
		return "<missing>"
	}
}

// ── Response parsing ──────────────────────────────────────

// openingFence matches ``` plus an optional language tag such as json.
var openingFence = regexp.MustCompile("^```[A-Za-z0-9_+-]*")

// ParseResponse extracts question records from raw completion text. A JSON
// array yields its elements; any other JSON value yields a single record.
// Record contents are not validated here.
func ParseResponse(text string) ([]RawQuestion, error) {
	cleaned := stripCodeFences(text)

	var payload json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, &MalformedResponseError{Excerpt: excerpt(cleaned), Err: err}
	}
	payload = bytes.TrimSpace(payload)

	if payload[0] == '[' {
		var records []RawQuestion
		if err := json.Unmarshal(payload, &records); err != nil {
			return nil, &MalformedResponseError{Excerpt: excerpt(cleaned), Err: err}
		}
		if records == nil {
			records = []RawQuestion{}
		}
		return records, nil
	}

	var record RawQuestion
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, &MalformedResponseError{Excerpt: excerpt(cleaned), Err: err}
	}
	return []RawQuestion{record}, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if loc := openingFence.FindStringIndex(s); loc != nil {
		s = strings.TrimSpace(s[loc[1]:])
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}
