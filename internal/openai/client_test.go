package openai

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/config"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/llm"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := &config.Config{OpenAI: config.OpenAIConfig{BaseURL: baseURL}}
	client, err := NewClient(cfg, http.DefaultClient)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestChatCompletionSendsHeadersAndBody(t *testing.T) {
	var (
		gotPath   string
		gotAuth   string
		gotType   string
		gotRawReq map[string]any
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotRawReq)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","model":"gpt-3.5-turbo","choices":[{"index":0,"message":{"role":"assistant","content":"hello"}}],"usage":{"prompt_tokens":12,"completion_tokens":8,"total_tokens":20}}`))
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL+"/")
	resp, err := client.ChatCompletion(context.Background(), "sk-test", ChatRequest{
		Model:       "gpt-3.5-turbo",
		Messages:    []llm.Message{{Role: "system", Content: "s"}, {Role: "user", Content: "u"}},
		Temperature: 0.9,
		MaxTokens:   1000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/v1/chat/completions" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("unexpected authorization header: %q", gotAuth)
	}
	if gotType != "application/json" {
		t.Fatalf("unexpected content type: %q", gotType)
	}
	if gotRawReq["model"] != "gpt-3.5-turbo" || gotRawReq["temperature"] != 0.9 || gotRawReq["max_tokens"] != float64(1000) {
		t.Fatalf("unexpected request body: %+v", gotRawReq)
	}
	messages, ok := gotRawReq["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %+v", gotRawReq["messages"])
	}

	if resp.Content() != "hello" {
		t.Fatalf("unexpected content: %q", resp.Content())
	}
	usage := resp.LLMUsage()
	if usage.InputTokens != 12 || usage.OutputTokens != 8 || usage.TotalTokens != 20 {
		t.Fatalf("unexpected usage: %+v", usage)
	}
}

func TestChatCompletionOmitsZeroMaxTokens(t *testing.T) {
	var raw map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &raw)
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL)
	resp, err := client.ChatCompletion(context.Background(), "sk-test", ChatRequest{Model: "gpt-4", Temperature: 0.7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := raw["max_tokens"]; ok {
		t.Fatalf("did not expect max_tokens in request: %+v", raw)
	}
	if resp.Content() != "" {
		t.Fatalf("expected empty content for no choices")
	}
}

func TestChatCompletionAPIError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantCode    string
	}{
		{
			name:        "provider message",
			status:      http.StatusUnauthorized,
			body:        `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`,
			wantMessage: "Incorrect API key provided",
			wantCode:    "invalid_api_key",
		},
		{
			name:   "no envelope",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
		},
		{
			name:   "null code",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"message":"Rate limit reached","code":null}}`,

			wantMessage: "Rate limit reached",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer ts.Close()

			client := newTestClient(t, ts.URL)
			_, err := client.ChatCompletion(context.Background(), "sk-test", ChatRequest{Model: "gpt-4"})
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.StatusCode != tc.status {
				t.Fatalf("unexpected status: %d", apiErr.StatusCode)
			}
			if apiErr.Message != tc.wantMessage {
				t.Fatalf("unexpected message: %q", apiErr.Message)
			}
			if apiErr.Code != tc.wantCode {
				t.Fatalf("unexpected code: %q", apiErr.Code)
			}
		})
	}
}

func TestChatCompletionMissingCredential(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:1")
	_, err := client.ChatCompletion(context.Background(), "  ", ChatRequest{Model: "gpt-4"})
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestChatCompletionInvalidJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL)
	_, err := client.ChatCompletion(context.Background(), "sk-test", ChatRequest{Model: "gpt-4"})
	if err == nil {
		t.Fatalf("expected decode error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("did not expect APIError for 2xx decode failure")
	}
}

func TestNewHTTPClientWrapsTransportWhenTelemetryEnabled(t *testing.T) {
	plain := NewHTTPClient(&config.Config{})
	if plain.Transport != http.DefaultTransport {
		t.Fatalf("expected default transport without telemetry")
	}
	traced := NewHTTPClient(&config.Config{Telemetry: config.TelemetryConfig{Enabled: true}})
	if traced.Transport == http.DefaultTransport {
		t.Fatalf("expected wrapped transport with telemetry")
	}
}
