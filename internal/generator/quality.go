package generator

import (
	"strings"

	"github.com/mcat-prep/backend/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	// topicOverlapThreshold is the Jaccard keyword overlap above which two
	// question stems are reported as near-duplicates.
	topicOverlapThreshold = 0.60
	minBatchForClustering = 6
)

// QualityReport summarizes soft problems in a built batch. None of them
// reject the batch.
type QualityReport struct {
	AnswerCounts        [models.ChoicesPerQuestion]int
	ClusteredAnswers    []int
	OverlappingPairs    [][2]int
	MissingExplanations []int
}

func (r QualityReport) Clean() bool {
	return len(r.ClusteredAnswers) == 0 && len(r.OverlappingPairs) == 0 && len(r.MissingExplanations) == 0
}

// InspectBatch checks answer-position clustering, topic diversity and
// missing explanations. Question ids in the report are 1-based.
func InspectBatch(questions []models.Question) QualityReport {
	var report QualityReport

	for _, q := range questions {
		if q.CorrectAnswer >= 0 && q.CorrectAnswer < models.ChoicesPerQuestion {
			report.AnswerCounts[q.CorrectAnswer]++
		}
		if strings.TrimSpace(q.Explanation) == "" {
			report.MissingExplanations = append(report.MissingExplanations, q.QuestionID)
		}
	}

	// An answer index used by more than half the batch is suspicious.
	if len(questions) >= minBatchForClustering {
		for idx, count := range report.AnswerCounts {
			if count*2 > len(questions) {
				report.ClusteredAnswers = append(report.ClusteredAnswers, idx)
			}
		}
	}

	tokenSets := make([]map[string]bool, len(questions))
	for i, q := range questions {
		tokenSets[i] = tokenize(q.QuestionText)
	}
	for i := 0; i < len(questions); i++ {
		for j := i + 1; j < len(questions); j++ {
			if jaccardSimilarity(tokenSets[i], tokenSets[j]) > topicOverlapThreshold {
				report.OverlappingPairs = append(report.OverlappingPairs, [2]int{questions[i].QuestionID, questions[j].QuestionID})
			}
		}
	}

	return report
}

func logQualityReport(log logrus.FieldLogger, report QualityReport) {
	for _, idx := range report.ClusteredAnswers {
		log.WithFields(logrus.Fields{
			"answer_index": idx,
			"count":        report.AnswerCounts[idx],
		}).Warn("correct answers clustered on one position")
	}
	for _, pair := range report.OverlappingPairs {
		log.WithField("questions", pair).Warn("questions have high keyword overlap")
	}
	if len(report.MissingExplanations) > 0 {
		log.WithField("questions", report.MissingExplanations).Warn("questions missing explanations")
	}
}

func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(s)) {
		word = strings.Trim(word, ".,;:?!()\"'")
		// Skip very short words (articles, prepositions)
		if len(word) > 3 {
			tokens[word] = true
		}
	}
	return tokens
}

func jaccardSimilarity(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}
