package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/clinvault/document-assistant/internal/core/domain"
)

func TestEmbedderReturnsVector(t *testing.T) {
	var captured struct {
		Model string `json:"model"`
		Input string `json:"input"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{0.1, 0.2, 0.3}}},
		})
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "test-key", "text-embedding-3-small", "gpt-4o-mini"))
	vector, err := embedder.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vector) != 3 || vector[1] != 0.2 {
		t.Fatalf("unexpected vector %v", vector)
	}
	if captured.Model != "text-embedding-3-small" || captured.Input != "hello world" {
		t.Fatalf("unexpected request payload %+v", captured)
	}
}

func TestSynthesizerSendsSystemAndUserMessages(t *testing.T) {
	var captured struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "  the answer  "}},
			},
		})
	}))
	defer server.Close()

	synthesizer := NewSynthesizer(New(server.URL, "test-key", "text-embedding-3-small", "gpt-4o-mini"))
	answer, err := synthesizer.Complete(context.Background(), "stay grounded", "what is up?")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if answer != "the answer" {
		t.Fatalf("expected trimmed answer, got %q", answer)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" || captured.Messages[0].Content != "stay grounded" {
		t.Fatalf("unexpected system message %+v", captured.Messages[0])
	}
	if captured.Messages[1].Role != "user" || captured.Messages[1].Content != "what is up?" {
		t.Fatalf("unexpected user message %+v", captured.Messages[1])
	}
}

func TestClientSurfacesErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "wrong-key", "text-embedding-3-small", "gpt-4o-mini"))
	_, err := embedder.Embed(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error for unauthorized response")
	}
	if !strings.Contains(err.Error(), "invalid api key") {
		t.Fatalf("expected response body in error, got %v", err)
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("401 must not be marked temporary: %v", err)
	}
}

func TestClientMarksServerErrorsTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	synthesizer := NewSynthesizer(New(server.URL, "test-key", "text-embedding-3-small", "gpt-4o-mini"))
	_, err := synthesizer.Complete(context.Background(), "system", "user")
	if err == nil {
		t.Fatal("expected error for unavailable upstream")
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}
