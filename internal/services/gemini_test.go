package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerateText_RoundTrip(t *testing.T) {
	var gotReq geminiGenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if key := r.URL.Query().Get("key"); key != "test-key" {
			t.Errorf("key param wrong: %q", key)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates": [{"content": {"parts": [{"text": "  Recycling helps.  "}]}}]
		}`))
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", "gemini-1.5-flash")
	client.Endpoint = server.URL

	text, err := client.GenerateText(context.Background(), "Why recycle?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Recycling helps." {
		t.Errorf("expected trimmed text, got %q", text)
	}

	if len(gotReq.Contents) != 1 || len(gotReq.Contents[0].Parts) != 1 {
		t.Fatalf("request shape wrong: %+v", gotReq)
	}
	if gotReq.Contents[0].Parts[0].Text != "Why recycle?" {
		t.Errorf("prompt wrong: %q", gotReq.Contents[0].Parts[0].Text)
	}
	if gotReq.GenerationConfig.TopK != 40 {
		t.Errorf("generation config not sent: %+v", gotReq.GenerationConfig)
	}
}

func TestGenerateText_NoCandidatesIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", "")
	client.Endpoint = server.URL

	_, err := client.GenerateText(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected error for empty candidates")
	}
}

func TestGenerateText_HTTPFailureIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", "")
	client.Endpoint = server.URL

	_, err := client.GenerateText(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected error for http 429")
	}
}
