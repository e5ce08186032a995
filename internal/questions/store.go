package questions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mcat-prep/backend/internal/models"
)

var ErrQueryNotFound = errors.New("query not found")

// QuestionStore persists generation requests together with the questions
// produced for them.
type QuestionStore interface {
	SaveQueryAndQuestions(ctx context.Context, query models.UserQuery, questions []models.Question) (string, error)
	GetQuery(ctx context.Context, id string) (*models.StoredQuery, error)
	GetQuestionsByQueryID(ctx context.Context, id string) ([]models.Question, error)
	ListQueries(ctx context.Context, limit int) ([]models.StoredQuery, error)
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// ── Writes ──────────────────────────────────────────────

// SaveQueryAndQuestions stores the query and its questions in one
// transaction. On success the DBID and QueryID of every passed question are
// filled in.
func (s *Store) SaveQueryAndQuestions(ctx context.Context, query models.UserQuery, questions []models.Question) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	queryID := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO user_queries (id, concept, num_questions, created_at)
		 VALUES ($1, $2, $3, $4)`,
		queryID, query.Concept, query.NumQuestions, s.now(),
	)
	if err != nil {
		return "", fmt.Errorf("insert query: %w", err)
	}

	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = uuid.NewString()
		tags := q.ConceptTags
		if tags == nil {
			tags = []string{}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO questions
			 (id, query_id, question_id, created_at, question_text, answer_choices,
			  correct_answer, explanation, concept_tags, subject, subject_subtopic)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			ids[i], queryID, q.QuestionID, q.CreatedAt, q.QuestionText,
			pq.Array(q.AnswerChoices), q.CorrectAnswer, q.Explanation,
			pq.Array(tags), string(q.Subject), q.SubjectSubtopic,
		)
		if err != nil {
			return "", fmt.Errorf("insert question %d: %w", q.QuestionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	for i := range questions {
		id := ids[i]
		qid := queryID
		questions[i].DBID = &id
		questions[i].QueryID = &qid
	}
	return queryID, nil
}

// ── Reads ───────────────────────────────────────────────

func (s *Store) GetQuery(ctx context.Context, id string) (*models.StoredQuery, error) {
	var q models.StoredQuery
	err := s.db.QueryRowContext(ctx,
		`SELECT uq.id, uq.concept, uq.num_questions, COUNT(q.id), uq.created_at
		 FROM user_queries uq
		 LEFT JOIN questions q ON q.query_id = uq.id
		 WHERE uq.id = $1
		 GROUP BY uq.id`,
		id,
	).Scan(&q.ID, &q.Concept, &q.NumQuestions, &q.QuestionCount, &q.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrQueryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get query: %w", err)
	}
	return &q, nil
}

func (s *Store) GetQuestionsByQueryID(ctx context.Context, id string) ([]models.Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query_id, question_id, created_at, question_text, answer_choices,
		        correct_answer, explanation, concept_tags, subject, subject_subtopic
		 FROM questions WHERE query_id = $1
		 ORDER BY question_id`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("get questions: %w", err)
	}
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		var (
			q       models.Question
			dbID    string
			queryID string
			subject string
		)
		if err := rows.Scan(&dbID, &queryID, &q.QuestionID, &q.CreatedAt, &q.QuestionText,
			pq.Array(&q.AnswerChoices), &q.CorrectAnswer, &q.Explanation,
			pq.Array(&q.ConceptTags), &subject, &q.SubjectSubtopic); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Subject = models.Subject(subject)
		q.DBID = &dbID
		q.QueryID = &queryID
		if q.ConceptTags == nil {
			q.ConceptTags = []string{}
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ListQueries returns the most recent queries first.
func (s *Store) ListQueries(ctx context.Context, limit int) ([]models.StoredQuery, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT uq.id, uq.concept, uq.num_questions, COUNT(q.id), uq.created_at
		 FROM user_queries uq
		 LEFT JOIN questions q ON q.query_id = uq.id
		 GROUP BY uq.id
		 ORDER BY uq.created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}
	defer rows.Close()

	queries := []models.StoredQuery{}
	for rows.Next() {
		var q models.StoredQuery
		if err := rows.Scan(&q.ID, &q.Concept, &q.NumQuestions, &q.QuestionCount, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan query: %w", err)
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}
