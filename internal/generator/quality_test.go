package generator

import (
	"fmt"
	"math"
	"testing"

	"github.com/mcat-prep/backend/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

func questionsWithAnswers(answers ...int) []models.Question {
	qs := make([]models.Question, len(answers))
	for i, a := range answers {
		qs[i] = models.Question{
			QuestionID:    i + 1,
			QuestionText:  fmt.Sprintf("Q%d", i+1),
			CorrectAnswer: a,
			Explanation:   "because",
		}
	}
	return qs
}

func TestInspectBatch_Clean(t *testing.T) {
	report := InspectBatch(questionsWithAnswers(0, 1, 2, 3, 0, 1))
	if !report.Clean() {
		t.Errorf("expected clean report, got %+v", report)
	}
	if report.AnswerCounts != [4]int{2, 2, 1, 1} {
		t.Errorf("unexpected answer counts %v", report.AnswerCounts)
	}
}

func TestInspectBatch_ClusteredAnswers(t *testing.T) {
	report := InspectBatch(questionsWithAnswers(2, 2, 2, 2, 0, 1))
	if len(report.ClusteredAnswers) != 1 || report.ClusteredAnswers[0] != 2 {
		t.Errorf("expected index 2 to be clustered, got %v", report.ClusteredAnswers)
	}
}

func TestInspectBatch_SmallBatchNotClustered(t *testing.T) {
	report := InspectBatch(questionsWithAnswers(1, 1, 1))
	if len(report.ClusteredAnswers) != 0 {
		t.Errorf("small batches should not be checked for clustering, got %v", report.ClusteredAnswers)
	}
}

func TestInspectBatch_OverlapAndMissingExplanations(t *testing.T) {
	qs := questionsWithAnswers(0, 1, 2)
	qs[0].QuestionText = "Which enzyme catalyzes glucose phosphorylation during glycolysis?"
	qs[1].QuestionText = "Which enzyme catalyzes glucose phosphorylation during glycolysis first?"
	qs[2].Explanation = "  "

	report := InspectBatch(qs)
	if len(report.OverlappingPairs) != 1 || report.OverlappingPairs[0] != [2]int{1, 2} {
		t.Errorf("expected questions 1 and 2 to overlap, got %v", report.OverlappingPairs)
	}
	if len(report.MissingExplanations) != 1 || report.MissingExplanations[0] != 3 {
		t.Errorf("expected question 3 missing explanation, got %v", report.MissingExplanations)
	}
}

func TestJaccardSimilarity(t *testing.T) {
	a := tokenize("enzyme kinetics michaelis menten")
	b := tokenize("enzyme kinetics lineweaver burk")
	// 2 shared of 6 distinct
	if got := jaccardSimilarity(a, b); !almostEqual(got, 2.0/6.0) {
		t.Errorf("expected ~0.333, got %f", got)
	}
	if got := jaccardSimilarity(map[string]bool{}, map[string]bool{}); got != 0 {
		t.Errorf("expected 0 for empty sets, got %f", got)
	}
}
