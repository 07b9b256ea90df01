package handler

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/config"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		OpenAI: config.OpenAIConfig{
			BaseURL:        baseURL,
			Primary:        config.ModelProfile{Model: "gpt-4", Temperature: 0.7},
			Secondary:      config.ModelProfile{Model: "gpt-3.5-turbo", Temperature: 0.9, MaxTokens: 1000},
			TimeoutSeconds: 5,
		},
		MCP: config.MCPConfig{Enabled: true, Path: "/mcp"},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(router http.Handler, method string, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

