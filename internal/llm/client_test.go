package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"homophily-study/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPClient(server.URL, "test-key", "test-model", 0.7, 500, zap.NewNop())
}

func TestCompleteSendsSystemAndHistory(t *testing.T) {
	var captured struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		Stream bool `json:"stream"`
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"hola"}}]}`)
	})

	history := []domain.ChatTurn{
		{Role: domain.RoleUser, Content: "first"},
		{Role: domain.RoleAssistant, Content: "reply"},
		{Role: domain.RoleUser, Content: "second"},
	}
	got, err := client.Complete(context.Background(), "system prompt", history)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got != "hola" {
		t.Fatalf("expected hola, got %q", got)
	}

	if captured.Model != "test-model" || captured.Stream {
		t.Fatalf("unexpected request: %+v", captured)
	}
	if len(captured.Messages) != 4 {
		t.Fatalf("expected system + 3 turns, got %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" || captured.Messages[0].Content != "system prompt" {
		t.Fatalf("system message must go first: %+v", captured.Messages[0])
	}
	if captured.Messages[3].Content != "second" {
		t.Fatalf("history order lost: %+v", captured.Messages)
	}
}

func TestCompleteAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"message":"rate limited"}}`)
	})
	_, err := client.Complete(context.Background(), "s", nil)
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestCompleteHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})
	_, err := client.Complete(context.Background(), "s", nil)
	if err == nil || !strings.Contains(err.Error(), "status=401") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestCompleteEmptyResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	})
	if _, err := client.Complete(context.Background(), "s", nil); err == nil {
		t.Fatalf("expected error for empty choices")
	}
}

func TestCompleteStreamAssemblesChunks(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"ho\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"la\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	var deltas []string
	full, err := client.CompleteStream(context.Background(), "s", nil, func(d string) error {
		deltas = append(deltas, d)
		return nil
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if full != "hola" {
		t.Fatalf("expected assembled hola, got %q", full)
	}
	if len(deltas) != 2 {
		t.Fatalf("empty deltas must be skipped, got %v", deltas)
	}
}

func TestCompleteStreamErrorChunk(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"error\":{\"message\":\"overloaded\"}}\n\n")
	})
	_, err := client.CompleteStream(context.Background(), "s", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "overloaded") {
		t.Fatalf("expected error chunk to fail the stream, got %v", err)
	}
}

func TestCompleteStreamCallbackErrorAborts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})
	wantErr := fmt.Errorf("client went away")
	_, err := client.CompleteStream(context.Background(), "s", nil, func(string) error {
		return wantErr
	})
	if err == nil || !strings.Contains(err.Error(), "client went away") {
		t.Fatalf("expected callback error to propagate, got %v", err)
	}
}
