package questions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mcat-prep/backend/internal/logging"
	"github.com/mcat-prep/backend/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrPersistence marks a batch that was generated but could not be stored.
var ErrPersistence = errors.New("failed to save questions")

type QuestionGenerator interface {
	Generate(ctx context.Context, concept string, count int) ([]models.Question, error)
}

type Service struct {
	store     QuestionStore
	generator QuestionGenerator
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewService wires the generator to a store. A nil store disables
// persistence.
func NewService(store QuestionStore, gen QuestionGenerator, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{store: store, generator: gen, log: log, now: time.Now}
}

// ── Generation ──────────────────────────────────────────

// GenerateQuestions runs one generation and persists the result. Stored
// questions come back with their DBID and QueryID set.
func (s *Service) GenerateQuestions(ctx context.Context, query models.UserQuery) ([]models.Question, error) {
	log := logging.FromContext(ctx, s.log).WithFields(logrus.Fields{
		"concept":       query.Concept,
		"num_questions": query.NumQuestions,
	})

	questions, err := s.generator.Generate(ctx, query.Concept, query.NumQuestions)
	if err != nil {
		return nil, err
	}
	if len(questions) < query.NumQuestions {
		log.WithField("generated", len(questions)).Warn("model returned fewer questions than requested")
	}

	if s.store == nil || len(questions) == 0 {
		return questions, nil
	}

	queryID, err := s.store.SaveQueryAndQuestions(ctx, query, questions)
	if err != nil {
		log.WithError(err).Error("failed to persist generated questions")
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	log.WithFields(logrus.Fields{
		"query_id":  queryID,
		"generated": len(questions),
	}).Info("questions generated and saved")

	return questions, nil
}

// ── History ─────────────────────────────────────────────

func (s *Service) GetQueryQuestions(ctx context.Context, queryID string) ([]models.Question, error) {
	if s.store == nil {
		return nil, ErrQueryNotFound
	}
	if _, err := s.store.GetQuery(ctx, queryID); err != nil {
		return nil, err
	}
	return s.store.GetQuestionsByQueryID(ctx, queryID)
}

func (s *Service) ListQueries(ctx context.Context, limit int) (*models.QueryListResponse, error) {
	if s.store == nil {
		return &models.QueryListResponse{Queries: []models.StoredQuery{}}, nil
	}
	queries, err := s.store.ListQueries(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &models.QueryListResponse{Queries: queries, Total: len(queries)}, nil
}

// ── Feedback ────────────────────────────────────────────

// SubmitFeedback acknowledges a rating. Feedback is logged, not stored.
func (s *Service) SubmitFeedback(ctx context.Context, sub models.FeedbackSubmission) models.QuestionFeedback {
	logging.FromContext(ctx, s.log).WithFields(logrus.Fields{
		"question_id": sub.QuestionID,
		"rating":      sub.Rating,
	}).Info("feedback received")

	return models.QuestionFeedback{
		QuestionID: sub.QuestionID,
		Rating:     sub.Rating,
		Comment:    sub.Comment,
		CreatedAt:  s.now(),
	}
}
