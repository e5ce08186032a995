package models

import "time"

type Subject string

const (
	SubjectBiology          Subject = "Biology"
	SubjectBiochemistry     Subject = "Biochemistry"
	SubjectPsychSoc         Subject = "Psych/Soc"
	SubjectGeneralChemistry Subject = "General Chemistry"
	SubjectOrganicChemistry Subject = "Organic Chemistry"
	SubjectPhysics          Subject = "Physics"
)

// Subjects lists the MCAT subjects in the order they are presented to the model.
var Subjects = []Subject{
	SubjectBiology,
	SubjectBiochemistry,
	SubjectPsychSoc,
	SubjectGeneralChemistry,
	SubjectOrganicChemistry,
	SubjectPhysics,
}

var ValidSubjects = map[Subject]bool{
	SubjectBiology:          true,
	SubjectBiochemistry:     true,
	SubjectPsychSoc:         true,
	SubjectGeneralChemistry: true,
	SubjectOrganicChemistry: true,
	SubjectPhysics:          true,
}

const (
	DefaultSubject         = SubjectBiology
	DefaultSubjectSubtopic = "General"

	// ChoicesPerQuestion is the number of answer choices every question carries.
	ChoicesPerQuestion = 4
)

// ── Core Structs ───────────────────────────────────────

// Question is a validated multiple-choice question. DBID and QueryID are only
// set once the batch has been persisted.
type Question struct {
	QuestionID      int       `json:"question_id"`
	CreatedAt       time.Time `json:"created_at"`
	QuestionText    string    `json:"question_text"`
	AnswerChoices   []string  `json:"answer_choices"`
	CorrectAnswer   int       `json:"correct_answer"`
	Explanation     string    `json:"explanation"`
	ConceptTags     []string  `json:"concept_tags"`
	Subject         Subject   `json:"subject"`
	SubjectSubtopic string    `json:"subject_subtopic"`
	DBID            *string   `json:"db_id,omitempty"`
	QueryID         *string   `json:"query_id,omitempty"`
}

// StoredQuery is a persisted generation request.
type StoredQuery struct {
	ID            string    `json:"id"`
	Concept       string    `json:"concept"`
	NumQuestions  int       `json:"num_questions"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// ── Request Types ─────────────────────────────────────

type UserQuery struct {
	Concept      string `json:"concept" validate:"required,max=500"`
	NumQuestions int    `json:"num_questions" validate:"min=1,max=20"`
}

type FeedbackSubmission struct {
	QuestionID int    `json:"question_id" validate:"min=1"`
	Rating     int    `json:"rating" validate:"min=1,max=5"`
	Comment    string `json:"comment" validate:"max=1000"`
}

// ── Response Types ────────────────────────────────────

type QuestionFeedback struct {
	QuestionID int       `json:"question_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type QueryListResponse struct {
	Queries []StoredQuery `json:"queries"`
	Total   int           `json:"total"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
