package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGroqProvider_Generate(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","model":"openai/gpt-oss-120b",` +
			`"choices":[{"index":0,"message":{"role":"assistant","content":"4"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	client := NewCompletionClient(NewGroqProvider(srv.URL))
	reply, err := client.Complete(context.Background(), "2+2?", validOpts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "4" {
		t.Fatalf("expected %q, got %q", "4", reply)
	}
	if gotAuth != "Bearer gsk_test" {
		t.Errorf("unexpected Authorization header %q", gotAuth)
	}
	if gotBody["model"] != "openai/gpt-oss-120b" {
		t.Errorf("unexpected model %v", gotBody["model"])
	}
}

func TestGroqProvider_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid API Key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	client := NewCompletionClient(NewGroqProvider(srv.URL))
	_, err := client.Complete(context.Background(), "2+2?", validOpts())

	if _, ok := err.(*ProviderError); !ok {
		t.Fatalf("expected *ProviderError, got %T: %v", err, err)
	}
	if client.ProviderName() != "groq" {
		t.Errorf("unexpected provider name %q", client.ProviderName())
	}
}
