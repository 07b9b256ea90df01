package openai

import (
	"fmt"

	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/llm"
)

// ChatRequest: /v1/chat/completions 요청 본문입니다.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// ChatResponse: /v1/chat/completions 응답 본문입니다.
type ChatResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice: 응답 후보 한 건입니다.
type Choice struct {
	Index        int          `json:"index"`
	Message      ReplyMessage `json:"message"`
	FinishReason string       `json:"finish_reason"`
}

// ReplyMessage: 응답 메시지입니다. content 는 null 일 수 있습니다.
type ReplyMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

// Usage: 제공자 토큰 사용량입니다.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Content: 첫 번째 후보의 본문을 반환합니다. 없으면 빈 문자열입니다.
func (r *ChatResponse) Content() string {
	if r == nil || len(r.Choices) == 0 || r.Choices[0].Message.Content == nil {
		return ""
	}
	return *r.Choices[0].Message.Content
}

// LLMUsage: 공용 사용량 타입으로 변환합니다.
func (r *ChatResponse) LLMUsage() llm.Usage {
	if r == nil {
		return llm.Usage{}
	}
	total := r.Usage.TotalTokens
	if total == 0 {
		total = r.Usage.PromptTokens + r.Usage.CompletionTokens
	}
	return llm.Usage{
		InputTokens:  r.Usage.PromptTokens,
		OutputTokens: r.Usage.CompletionTokens,
		TotalTokens:  total,
	}
}

type errorEnvelope struct {
	Error *errorBody `json:"error"`
}

type errorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

// APIError: 2xx 가 아닌 응답입니다. Message 는 제공자가 보낸 error.message 이며 없으면 비어 있습니다.
type APIError struct {
	StatusCode int
	Message    string
	Type       string
	Code       string
}

// Error: 오류 메시지를 반환합니다.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("openai api error (status=%d)", e.StatusCode)
	}
	return fmt.Sprintf("openai api error (status=%d): %s", e.StatusCode, e.Message)
}
