package questions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/mcat-prep/backend/internal/generator"
	"github.com/mcat-prep/backend/internal/models"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoQuestionResponse = "```json\n" + `[
  {"question_text": "Which organelle produces ATP?",
   "answer_choices": ["A) Mitochondria", "B) Ribosome", "C) Golgi", "D) Lysosome"],
   "correct_answer": "A", "explanation": "Oxidative phosphorylation.",
   "subject": "Biology", "subject_subtopic": "Cell Biology"},
  {"question_text": "What is the charge of an electron?",
   "answer_choices": ["+1", "-1", "0", "+2"],
   "correct_answer": 1}
]` + "\n```"

func newTestRouter(t *testing.T, store QuestionStore, responses ...generator.MockResponse) *mux.Router {
	t.Helper()
	log, _ := test.NewNullLogger()
	gen := generator.NewGenerator(generator.NewMockClient(responses...), generator.Options{Provider: "mock", Logger: log})
	h := NewHandler(NewService(store, gen, log), log)

	r := mux.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func TestStatusEndpoints(t *testing.T) {
	r := newTestRouter(t, nil)

	for path, msg := range map[string]string{
		"/":           "MCAT Question Generator API is running",
		"/api/health": "API is healthy",
	} {
		rr := doRequest(r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rr.Code, path)

		var resp models.StatusResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, msg, resp.Message)
	}
}

func TestGenerateQuestionsHandler(t *testing.T) {
	store := newFakeStore()
	r := newTestRouter(t, store, generator.MockResponse{Content: twoQuestionResponse})

	rr := doRequest(r, http.MethodPost, "/api/generate-questions", `{"concept":"cell biology","num_questions":2}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var questions []models.Question
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &questions))
	require.Len(t, questions, 2)

	assert.Equal(t, 1, questions[0].QuestionID)
	assert.Equal(t, "Mitochondria", questions[0].AnswerChoices[0])
	assert.Equal(t, 0, questions[0].CorrectAnswer)
	assert.Equal(t, 1, questions[1].CorrectAnswer)
	assert.Equal(t, models.SubjectBiology, questions[1].Subject)
	assert.Equal(t, "General", questions[1].SubjectSubtopic)
	assert.Equal(t, []string{}, questions[1].ConceptTags)
	require.NotNil(t, questions[0].QueryID)
	assert.Equal(t, "query-1", *questions[0].QueryID)
	assert.Equal(t, 1, store.saves)
}

func TestGenerateQuestionsValidation(t *testing.T) {
	r := newTestRouter(t, newFakeStore())

	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed body", `{"concept":`, "Invalid request body"},
		{"blank concept", `{"concept":"   ","num_questions":3}`, "concept is required"},
		{"zero questions", `{"concept":"optics","num_questions":0}`, "num_questions must be at least 1"},
		{"too many questions", `{"concept":"optics","num_questions":21}`, "num_questions must be at most 20"},
		{"long concept", `{"concept":"` + strings.Repeat("x", 501) + `","num_questions":1}`, "concept must be at most 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(r, http.MethodPost, "/api/generate-questions", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, decodeError(t, rr), tt.want)
		})
	}
}

func TestGenerateQuestionsErrorStatuses(t *testing.T) {
	secret := "sk-or-v1-deadbeef"

	tests := []struct {
		name     string
		response generator.MockResponse
		status   int
		message  string
	}{
		{
			name: "auth failure",
			response: generator.MockResponse{Err: &generator.GenerationError{
				Cause:   generator.CauseAuth,
				Message: "The AI service rejected our credentials. Please try again later or contact support.",
				Err:     errors.New("invalid key " + secret),
			}},
			status:  http.StatusBadGateway,
			message: "rejected our credentials",
		},
		{
			name:     "timeout",
			response: generator.MockResponse{Err: context.DeadlineExceeded},
			status:   http.StatusGatewayTimeout,
			message:  "took too long",
		},
		{
			name:     "malformed response",
			response: generator.MockResponse{Content: "Sorry, I cannot help with that."},
			status:   http.StatusBadGateway,
			message:  "could not be read",
		},
		{
			name:     "invalid question",
			response: generator.MockResponse{Content: `[{"question_text":"Q","answer_choices":["a","b","c"],"correct_answer":0}]`},
			status:   http.StatusBadGateway,
			message:  "Failed to process question 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			r := newTestRouter(t, store, tt.response)

			rr := doRequest(r, http.MethodPost, "/api/generate-questions", `{"concept":"optics","num_questions":1}`)
			assert.Equal(t, tt.status, rr.Code)
			msg := decodeError(t, rr)
			assert.Contains(t, msg, tt.message)
			assert.NotContains(t, msg, secret)
			assert.Equal(t, 0, store.saves)
		})
	}
}

func TestGenerateQuestionsPersistenceFailureIs500(t *testing.T) {
	store := newFakeStore()
	store.saveErr = errors.New("pq: connection refused")
	r := newTestRouter(t, store, generator.MockResponse{Content: twoQuestionResponse})

	rr := doRequest(r, http.MethodPost, "/api/generate-questions", `{"concept":"optics","num_questions":2}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	msg := decodeError(t, rr)
	assert.Contains(t, msg, "could not be saved")
	assert.NotContains(t, msg, "pq:")
}

func TestListQueriesHandler(t *testing.T) {
	store := newFakeStore()
	store.queries["3f1c2a4e-8d5b-4c7a-9e6f-1a2b3c4d5e6f"] = models.StoredQuery{ID: "3f1c2a4e-8d5b-4c7a-9e6f-1a2b3c4d5e6f", Concept: "optics"}
	r := newTestRouter(t, store)

	tests := []struct {
		query string
		limit int
	}{
		{"", defaultQueryLimit},
		{"?limit=5", 5},
		{"?limit=0", defaultQueryLimit},
		{"?limit=-3", defaultQueryLimit},
		{"?limit=abc", defaultQueryLimit},
		{"?limit=1000", maxQueryLimit},
	}
	for _, tt := range tests {
		rr := doRequest(r, http.MethodGet, "/api/queries"+tt.query, "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, tt.limit, store.listLimit, tt.query)

		var resp models.QueryListResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Total)
	}
}

func TestGetQueryQuestionsHandler(t *testing.T) {
	id := "3f1c2a4e-8d5b-4c7a-9e6f-1a2b3c4d5e6f"
	store := newFakeStore()
	store.queries[id] = models.StoredQuery{ID: id, Concept: "cell biology"}
	store.questions[id] = sampleQuestions()
	r := newTestRouter(t, store)

	rr := doRequest(r, http.MethodGet, "/api/queries/"+id+"/questions", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var questions []models.Question
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &questions))
	assert.Len(t, questions, 2)

	rr = doRequest(r, http.MethodGet, "/api/queries/not-a-uuid/questions", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doRequest(r, http.MethodGet, "/api/queries/00000000-0000-0000-0000-000000000000/questions", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Query not found", decodeError(t, rr))
}

func TestSubmitFeedbackHandler(t *testing.T) {
	r := newTestRouter(t, nil)

	rr := doRequest(r, http.MethodPost, "/api/feedback", `{"question_id":2,"rating":5,"comment":"great"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var fb models.QuestionFeedback
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &fb))
	assert.Equal(t, 2, fb.QuestionID)
	assert.Equal(t, 5, fb.Rating)
	assert.False(t, fb.CreatedAt.IsZero())

	rr = doRequest(r, http.MethodPost, "/api/feedback", `{"question_id":2,"rating":9}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeError(t, rr), "rating must be at most 5")
}
