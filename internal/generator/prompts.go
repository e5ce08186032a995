package generator

import (
	"fmt"
	"strings"

	"github.com/mcat-prep/backend/internal/models"
)

// BuildPrompt returns the single user-role message asking for count questions
// about concept.
func BuildPrompt(concept string, count int) string {
	return fmt.Sprintf(`Generate %d discrete MCAT-style multiple choice questions about %s.

Each question should be:
- Discrete (standalone, not passage-based)
- At the difficulty level appropriate for the MCAT
- Unambiguous and clear in both the question stem and the answer choices
- Have exactly 4 answer choices
- Include a clear explanation for the correct answer, reasoned from first principles and containing a clear, relatable example
- Tagged with relevant concept tags
- Categorized by MCAT subject and subtopic

IMPORTANT FORMATTING RULES:
- answer_choices: Array of exactly 4 strings WITHOUT letter prefixes (A), B), etc.). Just the answer text.
- correct_answer: Integer 0, 1, 2, or 3 representing the index of the correct answer in the answer_choices array (0 = first choice, 1 = second choice, etc.)
- subject: One of: %s

Return the questions as a JSON array where each question has the following structure:
%s

Return ONLY valid JSON, no markdown formatting or additional text.`,
		count, concept, subjectList(), questionShape)
}

const questionShape = `{
  "question_text": "The question text here",
  "answer_choices": ["First answer choice text", "Second answer choice text", "Third answer choice text", "Fourth answer choice text"],
  "correct_answer": 0,
  "explanation": "Detailed explanation of why this is correct",
  "concept_tags": ["tag1", "tag2"],
  "subject": "Biology",
  "subject_subtopic": "Specific subtopic within the subject (e.g., 'Cell Biology', 'Enzyme Kinetics', 'Cognition', 'Acid-Base Chemistry', 'Reactions', 'Mechanics')"
}`

func subjectList() string {
	names := make([]string, len(models.Subjects))
	for i, s := range models.Subjects {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
