package generator

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mcat-prep/backend/internal/models"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

const questionSchemaURL = "schema://question.json"

// questionSchemaJSON is the strict shape of a built question. The subject
// enum is filled from models.Subjects.
const questionSchemaJSON = `{
	"type": "object",
	"required": ["question_id", "created_at", "question_text", "answer_choices",
		"correct_answer", "explanation", "concept_tags", "subject", "subject_subtopic"],
	"properties": {
		"question_id":      {"type": "integer", "minimum": 1},
		"created_at":       {"type": "string"},
		"question_text":    {"type": "string", "minLength": 1},
		"answer_choices":   {"type": "array", "items": {"type": "string"}, "minItems": 4, "maxItems": 4},
		"correct_answer":   {"type": "integer", "minimum": 0, "maximum": 3},
		"explanation":      {"type": "string"},
		"concept_tags":     {"type": "array", "items": {"type": "string"}},
		"subject":          {"enum": %s},
		"subject_subtopic": {"type": "string"},
		"db_id":            {"type": "string"},
		"query_id":         {"type": "string"}
	}
}`

var (
	questionSchemaOnce sync.Once
	questionSchema     *jsonschema.Schema
	questionSchemaErr  error
)

func compiledQuestionSchema() (*jsonschema.Schema, error) {
	questionSchemaOnce.Do(func() {
		subjects, err := json.Marshal(models.Subjects)
		if err != nil {
			questionSchemaErr = fmt.Errorf("marshal subjects: %w", err)
			return
		}
		var doc any
		if err := json.Unmarshal([]byte(fmt.Sprintf(questionSchemaJSON, subjects)), &doc); err != nil {
			questionSchemaErr = fmt.Errorf("parse question schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(questionSchemaURL, doc); err != nil {
			questionSchemaErr = fmt.Errorf("add question schema: %w", err)
			return
		}
		questionSchema, questionSchemaErr = c.Compile(questionSchemaURL)
	})
	return questionSchema, questionSchemaErr
}

// CheckQuestionSchema validates q against the strict question schema. The
// builder only reports divergences; it never rejects on them.
func CheckQuestionSchema(q models.Question) error {
	sch, err := compiledQuestionSchema()
	if err != nil {
		return err
	}
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal question: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode question: %w", err)
	}
	return sch.Validate(doc)
}
