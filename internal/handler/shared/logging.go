package shared

import (
	"context"
	"errors"
	"log/slog"

	ideasdomain "github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/domain/ideas"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/httperror"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/openai"
)

// LogError: 표면(HTTP, MCP)에서 돌려준 에러를 한 번 로깅합니다.
// 응답 코드와 생성 실패의 kind, tier 를 함께 남기며, 호출자 잘못(4xx)은 info 로 낮춥니다.
func LogError(ctx context.Context, logger *slog.Logger, domain string, err error) {
	if logger == nil || err == nil {
		return
	}

	apiErr := httperror.FromError(err)
	attrs := []any{
		"error_code", string(apiErr.Code),
		"status", apiErr.Status,
		"err", err,
	}

	var genErr *ideasdomain.GenerationError
	if errors.As(err, &genErr) {
		attrs = append(attrs, "kind", string(genErr.Kind))
		if genErr.Tier != "" {
			attrs = append(attrs, "tier", string(genErr.Tier))
		}
	}
	var providerErr *openai.APIError
	if errors.As(err, &providerErr) {
		attrs = append(attrs, "provider_status", providerErr.StatusCode)
	}

	level := slog.LevelWarn
	if apiErr.Status < 500 {
		level = slog.LevelInfo
	}
	logger.Log(ctx, level, domain+"_error", attrs...)
}
