package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"homophily-study/internal/domain"
	"homophily-study/internal/llm"
)

type mockMessageRepo struct {
	messages  []domain.Message
	appendErr error
}

func (m *mockMessageRepo) Append(ctx context.Context, msg domain.Message) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockMessageRepo) ListByPhase(ctx context.Context, participantID string, phase int) ([]domain.Message, error) {
	var out []domain.Message
	for _, msg := range m.messages {
		if msg.ParticipantID == participantID && msg.Phase == phase {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *mockMessageRepo) CountUserTurns(ctx context.Context, participantID string, phase int) (int, error) {
	count := 0
	for _, msg := range m.messages {
		if msg.ParticipantID == participantID && msg.Phase == phase && msg.Role == domain.RoleUser {
			count++
		}
	}
	return count, nil
}

func (m *mockMessageRepo) ListAll(ctx context.Context) ([]domain.Message, error) {
	return m.messages, nil
}

func newTestChatService(repo *mockMessageRepo, client llm.LLMClient, perBot int) *ChatService {
	return NewChatService(zap.NewNop(), client, repo, PromptBuilder{Turns: perBot}, "test-model", perBot)
}

func testChatRequest(msg string) ChatRequest {
	return ChatRequest{
		ParticipantID: "p1",
		Phase:         1,
		Message:       msg,
		BotType:       domain.BotHighMatch,
		Topic:         domain.Topic{ID: "friends", Title: "Friends topic"},
	}
}

func TestChatSendAppendsBothTurns(t *testing.T) {
	repo := &mockMessageRepo{}
	client := &llm.MockClient{Response: "hola, empecemos"}
	svc := newTestChatService(repo, client, 6)

	result, err := svc.Send(context.Background(), testChatRequest("primera idea"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Response != "hola, empecemos" {
		t.Fatalf("unexpected response: %q", result.Response)
	}

	if len(repo.messages) != 2 {
		t.Fatalf("expected 2 stored messages, got %d", len(repo.messages))
	}
	if repo.messages[0].Role != domain.RoleUser || repo.messages[0].Content != "primera idea" {
		t.Fatalf("first stored message should be the user turn, got %+v", repo.messages[0])
	}
	if repo.messages[1].Role != domain.RoleAssistant || repo.messages[1].Model != "test-model" {
		t.Fatalf("second stored message should be the assistant turn with model, got %+v", repo.messages[1])
	}

	// El historial enviado al LLM incluye el turno recien apendeado.
	if len(client.LastHistory) != 1 || client.LastHistory[0].Content != "primera idea" {
		t.Fatalf("unexpected history sent to llm: %+v", client.LastHistory)
	}
	if !strings.Contains(client.LastSystem, "Friends topic") {
		t.Fatalf("system prompt missing topic: %q", client.LastSystem)
	}
}

func TestChatSendCountsOnlyUserTurns(t *testing.T) {
	repo := &mockMessageRepo{}
	svc := newTestChatService(repo, &llm.MockClient{Response: "ok"}, 6)

	for i := 0; i < 3; i++ {
		result, err := svc.Send(context.Background(), testChatRequest("idea"))
		if err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
		if result.MessageCount != i+1 {
			t.Fatalf("turn %d: expected count %d, got %d", i, i+1, result.MessageCount)
		}
		if result.PhaseComplete {
			t.Fatalf("turn %d: phase should not be complete yet", i)
		}
	}
}

func TestChatSendPhaseComplete(t *testing.T) {
	repo := &mockMessageRepo{}
	svc := newTestChatService(repo, &llm.MockClient{Response: "ok"}, 2)

	first, err := svc.Send(context.Background(), testChatRequest("uno"))
	if err != nil {
		t.Fatalf("first turn: %v", err)
	}
	if first.PhaseComplete {
		t.Fatalf("phase complete after 1 of 2 turns")
	}

	second, err := svc.Send(context.Background(), testChatRequest("dos"))
	if err != nil {
		t.Fatalf("second turn: %v", err)
	}
	if !second.PhaseComplete {
		t.Fatalf("expected phase complete at threshold")
	}
	if second.MessagesRequired != 2 {
		t.Fatalf("expected messages_required 2, got %d", second.MessagesRequired)
	}
}

func TestChatSendLLMErrorBecomesTranscriptMarker(t *testing.T) {
	repo := &mockMessageRepo{}
	svc := newTestChatService(repo, &llm.MockClient{Err: errors.New("upstream down")}, 6)

	result, err := svc.Send(context.Background(), testChatRequest("idea"))
	if err != nil {
		t.Fatalf("llm failure should not fail the turn, got %v", err)
	}
	if !strings.Contains(result.Response, "[Error:") || !strings.Contains(result.Response, "upstream down") {
		t.Fatalf("expected error marker response, got %q", result.Response)
	}
	if len(repo.messages) != 2 {
		t.Fatalf("error marker should still be persisted, got %d messages", len(repo.messages))
	}
	if repo.messages[1].Content != result.Response {
		t.Fatalf("stored assistant turn should match the marker")
	}
}

func TestChatSendInvalidInput(t *testing.T) {
	repo := &mockMessageRepo{}
	svc := newTestChatService(repo, &llm.MockClient{Response: "ok"}, 6)

	cases := []ChatRequest{
		{ParticipantID: "", Message: "hola"},
		{ParticipantID: "p1", Message: "   "},
	}
	for _, req := range cases {
		if _, err := svc.Send(context.Background(), req); !errors.Is(err, ErrChatInvalidInput) {
			t.Fatalf("expected ErrChatInvalidInput, got %v", err)
		}
	}
	if len(repo.messages) != 0 {
		t.Fatalf("invalid input must not persist anything")
	}
}

func TestChatSendDefaults(t *testing.T) {
	repo := &mockMessageRepo{}
	client := &llm.MockClient{Response: "ok"}
	svc := newTestChatService(repo, client, 6)

	_, err := svc.Send(context.Background(), ChatRequest{ParticipantID: "p1", Message: "hola"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	stored := repo.messages[0]
	if stored.Phase != 1 || stored.BotType != domain.BotHighMatch || stored.TopicID != "unknown" {
		t.Fatalf("defaults not applied: %+v", stored)
	}
	if !strings.Contains(client.LastSystem, "general discussion") {
		t.Fatalf("expected default topic title in system prompt: %q", client.LastSystem)
	}
}

func TestChatStreamAssemblesAndPersists(t *testing.T) {
	repo := &mockMessageRepo{}
	client := &llm.MockClient{Chunks: []string{"hola", ", ", "empecemos"}}
	svc := newTestChatService(repo, client, 6)

	var deltas []string
	result, err := svc.Stream(context.Background(), testChatRequest("idea"), func(delta string) error {
		deltas = append(deltas, delta)
		return nil
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(deltas) != 3 {
		t.Fatalf("expected 3 deltas, got %d", len(deltas))
	}
	if result.Response != "hola, empecemos" {
		t.Fatalf("unexpected assembled response: %q", result.Response)
	}
	if len(repo.messages) != 2 || repo.messages[1].Content != "hola, empecemos" {
		t.Fatalf("assembled text should be persisted as the assistant turn")
	}
}

func TestChatStreamErrorDoesNotPersistAssistant(t *testing.T) {
	repo := &mockMessageRepo{}
	client := &llm.MockClient{Err: errors.New("stream broke")}
	svc := newTestChatService(repo, client, 6)

	_, err := svc.Stream(context.Background(), testChatRequest("idea"), func(string) error { return nil })
	if err == nil {
		t.Fatalf("expected stream error to propagate")
	}
	// El turno del usuario queda, la respuesta parcial no.
	if len(repo.messages) != 1 || repo.messages[0].Role != domain.RoleUser {
		t.Fatalf("expected only the user turn persisted, got %+v", repo.messages)
	}
}
