package questions

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mcat-prep/backend/internal/generator"
	"github.com/mcat-prep/backend/internal/logging"
	"github.com/mcat-prep/backend/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	defaultQueryLimit = 20
	maxQueryLimit     = 100
)

type Handler struct {
	service  *Service
	validate *validator.Validate
	log      logrus.FieldLogger
}

func NewHandler(service *Service, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{service: service, validate: v, log: log}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.Root).Methods(http.MethodGet)
	r.HandleFunc("/api/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/generate-questions", h.GenerateQuestions).Methods(http.MethodPost)
	r.HandleFunc("/api/queries", h.ListQueries).Methods(http.MethodGet)
	r.HandleFunc("/api/queries/{id}/questions", h.GetQueryQuestions).Methods(http.MethodGet)
	r.HandleFunc("/api/feedback", h.SubmitFeedback).Methods(http.MethodPost)
}

// ── Status ──────────────────────────────────────────────

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.StatusResponse{Status: "ok", Message: "MCAT Question Generator API is running"})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.StatusResponse{Status: "ok", Message: "API is healthy"})
}

// ── Generation ──────────────────────────────────────────

func (h *Handler) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	var req models.UserQuery
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	req.Concept = strings.TrimSpace(req.Concept)
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: validationMessage(err)})
		return
	}

	questions, err := h.service.GenerateQuestions(r.Context(), req)
	if err != nil {
		status := generationStatus(err)
		logging.FromContext(r.Context(), h.log).WithError(err).WithFields(logrus.Fields{
			"concept": req.Concept,
			"status":  status,
		}).Error("question generation request failed")
		writeJSON(w, status, models.ErrorResponse{Error: generationErrorMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, questions)
}

// generationStatus maps a generation failure onto an HTTP status. Upstream
// problems are reported as a bad gateway, persistence problems as ours.
func generationStatus(err error) int {
	var genErr *generator.GenerationError
	var malformed *generator.MalformedResponseError
	var invalid *generator.InvalidQuestionError
	switch {
	case errors.As(err, &genErr):
		if genErr.Cause == generator.CauseTimeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case errors.As(err, &malformed), errors.As(err, &invalid):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func generationErrorMessage(err error) string {
	if errors.Is(err, ErrPersistence) {
		return "Questions were generated but could not be saved. Please try again."
	}
	return generator.UserMessage(err)
}

// ── History ─────────────────────────────────────────────

func (h *Handler) ListQueries(w http.ResponseWriter, r *http.Request) {
	limit := intQueryParam(r.URL.Query(), "limit", defaultQueryLimit)
	if limit == 0 {
		limit = defaultQueryLimit
	}
	if limit > maxQueryLimit {
		limit = maxQueryLimit
	}

	resp, err := h.service.ListQueries(r.Context(), limit)
	if err != nil {
		logging.FromContext(r.Context(), h.log).WithError(err).Error("failed to list queries")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load query history"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetQueryQuestions(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Query not found"})
		return
	}

	questions, err := h.service.GetQueryQuestions(r.Context(), id)
	if errors.Is(err, ErrQueryNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Query not found"})
		return
	}
	if err != nil {
		logging.FromContext(r.Context(), h.log).WithError(err).WithField("query_id", id).Error("failed to load questions")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load questions"})
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

// ── Feedback ────────────────────────────────────────────

func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req models.FeedbackSubmission
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: validationMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, h.service.SubmitFeedback(r.Context(), req))
}

// ── Helpers ─────────────────────────────────────────────

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "min":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(parts, "; ")
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func intQueryParam(query url.Values, key string, defaultVal int) int {
	s := query.Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	return v
}
