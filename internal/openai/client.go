package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/config"
)

const (
	chatCompletionsPath = "/v1/chat/completions"
	maxResponseBytes    = 4 << 20
)

// ErrMissingCredential 는 요청에 API 키가 없을 때 반환된다.
var ErrMissingCredential = errors.New("missing openai api key")

// Client 는 OpenAI Chat Completions 호출을 담당한다.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient 는 아웃바운드 호출용 http.Client 를 만든다.
// 텔레메트리가 켜져 있으면 otelhttp 트랜스포트로 감싼다.
func NewHTTPClient(cfg *config.Config) *http.Client {
	transport := http.DefaultTransport
	if cfg != nil && cfg.Telemetry.Enabled {
		transport = otelhttp.NewTransport(transport)
	}
	return &http.Client{Transport: transport}
}

// NewClient 는 OpenAI 클라이언트를 생성한다.
func NewClient(cfg *config.Config, httpClient *http.Client) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if httpClient == nil {
		httpClient = NewHTTPClient(cfg)
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.OpenAI.BaseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// ChatCompletion 은 chat completion 요청을 보내고 응답을 디코딩한다.
// 2xx 가 아니면 *APIError 를 반환한다.
func (c *Client) ChatCompletion(ctx context.Context, credential string, req ChatRequest) (*ChatResponse, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, ErrMissingCredential
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatCompletionsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+credential)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, decodeAPIError(resp.StatusCode, body)
	}

	var decoded ChatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &decoded, nil
}

func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == nil {
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(envelope.Error.Message)
	apiErr.Type = envelope.Error.Type
	if envelope.Error.Code != nil {
		apiErr.Code = fmt.Sprint(envelope.Error.Code)
	}
	return apiErr
}
