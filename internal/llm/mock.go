package llm

import (
	"context"

	"homophily-study/internal/domain"
)

// MockClient permite tests sin llamar a un LLM real.
type MockClient struct {
	Response string
	// Chunks simula los fragmentos del stream; si esta vacio se emite
	// Response como un unico fragmento.
	Chunks []string
	Err    error

	LastSystem  string
	LastHistory []domain.ChatTurn
}

func (m *MockClient) Complete(_ context.Context, systemPrompt string, history []domain.ChatTurn) (string, error) {
	m.LastSystem = systemPrompt
	m.LastHistory = history
	return m.Response, m.Err
}

func (m *MockClient) CompleteStream(_ context.Context, systemPrompt string, history []domain.ChatTurn, onDelta func(string) error) (string, error) {
	m.LastSystem = systemPrompt
	m.LastHistory = history
	if m.Err != nil {
		return "", m.Err
	}
	chunks := m.Chunks
	if len(chunks) == 0 {
		chunks = []string{m.Response}
	}
	var full string
	for _, chunk := range chunks {
		full += chunk
		if onDelta != nil {
			if err := onDelta(chunk); err != nil {
				return "", err
			}
		}
	}
	return full, nil
}
