package verifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func completionBody(t *testing.T, content string, tokens int) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
		"usage": map[string]any{"total_tokens": tokens},
	})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return body
}

func TestCompleteJSON(t *testing.T) {
	var gotAuth string
	var gotRequest chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write(completionBody(t, `{"ok": true}`, 123))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{APIKey: "test-key", BaseURL: server.URL, Model: "test-model"})

	completion, err := client.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("CompleteJSON failed: %v", err)
	}
	if completion.Content != `{"ok": true}` {
		t.Errorf("Content = %q", completion.Content)
	}
	if completion.TotalTokens != 123 {
		t.Errorf("TotalTokens = %d, want 123", completion.TotalTokens)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotRequest.Model != "test-model" {
		t.Errorf("Model = %q", gotRequest.Model)
	}
	if gotRequest.Temperature != 0 {
		t.Errorf("Temperature = %v, want 0", gotRequest.Temperature)
	}
	if gotRequest.ResponseFormat["type"] != jsonResponseType {
		t.Errorf("ResponseFormat = %v", gotRequest.ResponseFormat)
	}
}

func TestCompleteJSONRetriesServerError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "temporary", http.StatusInternalServerError)
			return
		}
		w.Write(completionBody(t, `{"ok": true}`, 10))
	}))
	defer server.Close()

	client := NewClient(
		ClientConfig{APIKey: "test-key", BaseURL: server.URL, Model: "m"},
		WithRetryMaxAttempts(3),
		WithSleeper(func(time.Duration) {}),
	)

	if _, err := client.CompleteJSON(context.Background(), "system", "user"); err != nil {
		t.Fatalf("CompleteJSON failed: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestCompleteJSONDoesNotRetryClientError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(
		ClientConfig{APIKey: "test-key", BaseURL: server.URL, Model: "m"},
		WithRetryMaxAttempts(3),
		WithSleeper(func(time.Duration) {}),
	)

	if _, err := client.CompleteJSON(context.Background(), "system", "user"); err == nil {
		t.Fatal("expected error for http 400")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retry on 4xx)", attempts)
	}
}

func TestCompleteJSONExhaustsRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "overloaded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(
		ClientConfig{APIKey: "test-key", BaseURL: server.URL, Model: "m"},
		WithRetryMaxAttempts(3),
		WithSleeper(func(time.Duration) {}),
	)

	if _, err := client.CompleteJSON(context.Background(), "system", "user"); err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestCompleteJSONRequiresAPIKey(t *testing.T) {
	client := NewClient(ClientConfig{Model: "m"})
	if _, err := client.CompleteJSON(context.Background(), "system", "user"); err == nil {
		t.Error("expected error without api key")
	}
}

func TestCompleteJSONRequiresPrompts(t *testing.T) {
	client := NewClient(ClientConfig{APIKey: "k", Model: "m"})
	if _, err := client.CompleteJSON(context.Background(), "", "user"); err == nil {
		t.Error("expected error without system prompt")
	}
	if _, err := client.CompleteJSON(context.Background(), "system", ""); err == nil {
		t.Error("expected error without user prompt")
	}
}

func TestCompleteJSONAPIErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": {"message": "model not found"}}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{APIKey: "k", BaseURL: server.URL, Model: "m"})
	if _, err := client.CompleteJSON(context.Background(), "system", "user"); err == nil {
		t.Error("expected error for api error body")
	}
}
