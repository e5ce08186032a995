package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// FailureCause classifies why the completion service could not produce text.
type FailureCause string

const (
	CauseAuth        FailureCause = "auth"
	CauseRateLimit   FailureCause = "rate_limit"
	CauseUnavailable FailureCause = "unavailable"
	CauseServerError FailureCause = "server_error"
	CauseTimeout     FailureCause = "timeout"
	CauseCanceled    FailureCause = "canceled"
	CauseUnknown     FailureCause = "unknown"
)

var causeMessages = map[FailureCause]string{
	CauseAuth:        "The AI service rejected our credentials. Please try again later or contact support.",
	CauseRateLimit:   "Rate limit exceeded. Please try again in a moment.",
	CauseUnavailable: "The AI model is not available right now. Please try again later.",
	CauseServerError: "The AI service is temporarily unavailable. Please try again later.",
	CauseTimeout:     "The AI service took too long to respond. Please try again.",
	CauseCanceled:    "The request was canceled before questions were generated. Please try again.",
	CauseUnknown:     "Failed to generate questions. Please try again or contact support if the problem persists.",
}

const dataPolicyMessage = "The selected AI model requires privacy settings to be configured. Please try again later or choose a different model."

// GenerationError reports a failed completion call. Message is safe to show
// to users; Err carries the upstream detail and is only meant for logs.
type GenerationError struct {
	Cause   FailureCause
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed (%s): %v", e.Cause, e.Err)
	}
	return fmt.Sprintf("generation failed (%s)", e.Cause)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func newGenerationError(cause FailureCause, err error) *GenerationError {
	return &GenerationError{Cause: cause, Message: causeMessages[cause], Err: err}
}

// classifyStatus maps an upstream HTTP status code to a GenerationError.
// detail is the upstream error text; it only influences the message choice.
func classifyStatus(status int, detail string, err error) *GenerationError {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return newGenerationError(CauseAuth, err)
	case status == http.StatusNotFound:
		ge := newGenerationError(CauseUnavailable, err)
		lower := strings.ToLower(detail)
		if strings.Contains(lower, "data policy") || strings.Contains(lower, "privacy") {
			ge.Message = dataPolicyMessage
		}
		return ge
	case status == http.StatusTooManyRequests:
		return newGenerationError(CauseRateLimit, err)
	case status >= 500:
		return newGenerationError(CauseServerError, err)
	default:
		return newGenerationError(CauseUnknown, err)
	}
}

// classifyCompletionError normalizes whatever a client returned into a
// GenerationError.
func classifyCompletionError(err error) *GenerationError {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return newGenerationError(CauseTimeout, err)
	case errors.Is(err, context.Canceled):
		return newGenerationError(CauseCanceled, err)
	default:
		return newGenerationError(CauseUnknown, err)
	}
}

const maxExcerptLen = 500

// MalformedResponseError reports completion text that is not JSON after
// fence stripping.
type MalformedResponseError struct {
	Excerpt string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("failed to parse questions from completion response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func excerpt(s string) string {
	r := []rune(s)
	if len(r) <= maxExcerptLen {
		return s
	}
	return string(r[:maxExcerptLen]) + "..."
}

// ErrAnswerOutOfRange is returned when correct_answer is an explicit integer
// outside [0,3].
var ErrAnswerOutOfRange = errors.New("correct_answer index out of range (0-3)")

// InvalidQuestionError reports a record that violates the question structure.
// Position is the 1-based index of the record within the batch.
type InvalidQuestionError struct {
	Position int
	Reason   string
	Err      error
}

func (e *InvalidQuestionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("question %d: %s: %v", e.Position, e.Reason, e.Err)
	}
	return fmt.Sprintf("question %d: %s", e.Position, e.Reason)
}

func (e *InvalidQuestionError) Unwrap() error { return e.Err }

// UserMessage returns the text a caller may show for an error returned by
// Generator.Generate.
func UserMessage(err error) string {
	var ge *GenerationError
	if errors.As(err, &ge) {
		if ge.Message != "" {
			return ge.Message
		}
		return causeMessages[CauseUnknown]
	}
	var mr *MalformedResponseError
	if errors.As(err, &mr) {
		return "The AI service returned a response that could not be read. Please try again."
	}
	var iq *InvalidQuestionError
	if errors.As(err, &iq) {
		return fmt.Sprintf("Failed to process question %d. Please try generating questions again.", iq.Position)
	}
	return "An unexpected error occurred while generating questions. Please try again or contact support if the problem persists."
}
