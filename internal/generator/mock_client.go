package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MockResponse is one canned reply. Err, when set, is returned instead.
type MockResponse struct {
	Content string
	Err     error
}

// MockClient replays canned responses in FIFO order and records every request.
// Once the queue is empty it serves a demo payload.
type MockClient struct {
	mu        sync.Mutex
	responses []MockResponse
	calls     []CompletionRequest
}

func NewMockClient(responses ...MockResponse) *MockClient {
	return &MockClient{responses: responses}
}

func (m *MockClient) ModelID() string { return "mock" }

func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*LLMResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	var next *MockResponse
	if len(m.responses) > 0 {
		next = &m.responses[0]
		m.responses = m.responses[1:]
	}
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content := buildMockJSON()
	if next != nil {
		if next.Err != nil {
			return nil, next.Err
		}
		content = next.Content
	}

	return &LLMResponse{
		Content:      content,
		Model:        m.ModelID(),
		PromptTokens: 400,
		OutputTokens: 3000,
	}, nil
}

// Calls returns a copy of the requests seen so far.
func (m *MockClient) Calls() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CompletionRequest(nil), m.calls...)
}

// buildMockJSON returns a fenced batch of 20 questions that mixes every
// answer-choice and correct_answer format the pipeline has to tolerate.
func buildMockJSON() string {
	topics := []struct {
		subject  string
		subtopic string
		name     string
	}{
		{"Biology", "Cell Biology", "membrane transport"},
		{"Biochemistry", "Enzyme Kinetics", "competitive inhibition"},
		{"Psych/Soc", "Cognition", "working memory"},
		{"General Chemistry", "Acid-Base Chemistry", "buffer capacity"},
		{"Organic Chemistry", "Reactions", "SN2 substitution"},
		{"Physics", "Mechanics", "projectile motion"},
	}

	questions := make([]map[string]any, 0, 20)
	for i := 0; i < 20; i++ {
		topic := topics[i%len(topics)]
		correct := i % 4

		choices := make([]string, 4)
		for j := range choices {
			label := "a distractor"
			if j == correct {
				label = "the correct statement"
			}
			choices[j] = fmt.Sprintf("[Mock] Option %d on %s is %s", j+1, topic.name, label)
		}

		var answer any
		switch i % 5 {
		case 0:
			answer = correct
		case 1:
			for j := range choices {
				choices[j] = fmt.Sprintf("%c) %s", 'A'+j, choices[j])
			}
			answer = string(rune('A' + correct))
		case 2:
			for j := range choices {
				choices[j] = fmt.Sprintf("(%c) %s", 'A'+j, choices[j])
			}
			answer = fmt.Sprintf("(%c)", 'a'+correct)
		case 3:
			answer = choices[correct]
		case 4:
			for j := range choices {
				choices[j] = fmt.Sprintf("%c. %s", 'A'+j, choices[j])
			}
			answer = "the correct statement"
		}

		questions = append(questions, map[string]any{
			"question_text":    fmt.Sprintf("[Mock] Which statement about %s is accurate?", topic.name),
			"answer_choices":   choices,
			"correct_answer":   answer,
			"explanation":      fmt.Sprintf("[Mock] Reasoning from first principles about %s shows why option %d holds.", topic.name, correct+1),
			"concept_tags":     []string{topic.name, topic.subtopic},
			"subject":          topic.subject,
			"subject_subtopic": topic.subtopic,
		})
	}

	data, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		return "[]"
	}
	return "```json\n" + string(data) + "\n```"
}
