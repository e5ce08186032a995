package generator

import (
	"fmt"
	"time"

	"github.com/mcat-prep/backend/internal/metrics"
	"github.com/mcat-prep/backend/internal/models"
	"github.com/sirupsen/logrus"
)

// Builder turns parsed records into validated questions.
type Builder struct {
	log     logrus.FieldLogger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewBuilder(log logrus.FieldLogger, m *metrics.Metrics) *Builder {
	return &Builder{log: log, metrics: m, now: time.Now}
}

// withLogger returns a copy of b that logs through log.
func (b *Builder) withLogger(log logrus.FieldLogger) *Builder {
	c := *b
	c.log = log
	return &c
}

// Build converts at most want records into questions numbered 1..N in record
// order. Extra records are dropped and missing ones are not padded. The first
// record that cannot be built aborts the batch with an *InvalidQuestionError.
func (b *Builder) Build(records []RawQuestion, want int) ([]models.Question, error) {
	if want < 0 {
		want = 0
	}
	if len(records) > want {
		b.log.WithFields(logrus.Fields{"received": len(records), "requested": want}).
			Debug("dropping surplus question records")
		records = records[:want]
	}

	questions := make([]models.Question, 0, len(records))
	for i, rec := range records {
		position := i + 1
		q, err := b.buildOne(position, rec)
		if err != nil {
			b.log.WithError(err).WithField("position", position).Error("failed to build question")
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (b *Builder) buildOne(position int, rec RawQuestion) (models.Question, error) {
	if err := rec.Err(); err != nil {
		return models.Question{}, &InvalidQuestionError{Position: position, Reason: "record has malformed fields", Err: err}
	}
	if len(rec.AnswerChoices) == 0 {
		return models.Question{}, &InvalidQuestionError{Position: position, Reason: "has no answer_choices"}
	}

	choices := cleanChoices(rec.AnswerChoices)
	if len(choices) != models.ChoicesPerQuestion {
		return models.Question{}, &InvalidQuestionError{
			Position: position,
			Reason:   fmt.Sprintf("must have exactly %d answer choices, got %d", models.ChoicesPerQuestion, len(choices)),
		}
	}

	log := b.log.WithField("position", position)
	res, err := ResolveCorrectAnswer(log, rec.CorrectAnswer, choices)
	if err != nil {
		return models.Question{}, &InvalidQuestionError{Position: position, Reason: "invalid correct_answer", Err: err}
	}
	if res.Strategy == StrategyDefault {
		b.metrics.IncAnswerFallback()
	}

	tags := rec.ConceptTags
	if tags == nil {
		tags = []string{}
	}

	q := models.Question{
		QuestionID:      position,
		CreatedAt:       b.now(),
		QuestionText:    valueOr(rec.QuestionText, ""),
		AnswerChoices:   choices,
		CorrectAnswer:   res.Index,
		Explanation:     valueOr(rec.Explanation, ""),
		ConceptTags:     tags,
		Subject:         models.Subject(valueOr(rec.Subject, string(models.DefaultSubject))),
		SubjectSubtopic: valueOr(rec.SubjectSubtopic, models.DefaultSubjectSubtopic),
	}

	if err := CheckQuestionSchema(q); err != nil {
		log.WithError(err).WithField("subject", q.Subject).Warn("question diverges from schema")
		b.metrics.IncSchemaDivergence()
	}
	return q, nil
}

func valueOr(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}
