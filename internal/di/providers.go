package di

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/config"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/health"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/logging"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/mcpserver"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/telemetry"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/usage"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/usecase/ideas"
)

// ProvideLogger: 로거를 구성해 반환합니다.
// OTel이 활성화된 경우 로그에 trace_id/span_id가 자동으로 추가됩니다.
func ProvideLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.NewLoggerWithOTel(cfg.Logging, cfg.Telemetry.Enabled)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

// ProvideCLILogger: stderr 로만 기록하는 로거를 반환합니다.
func ProvideCLILogger(cfg *config.Config) *slog.Logger {
	return logging.NewStderrLogger(cfg.Logging)
}

// ProvideTelemetry: 트레이서 프로바이더를 초기화합니다. 비활성화면 no-op 입니다.
func ProvideTelemetry(cfg *config.Config) (*telemetry.Provider, error) {
	provider, err := telemetry.NewProvider(context.Background(), cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	return provider, nil
}

// ProvideUsageStore: 집계가 켜져 있을 때만 저장소를 반환합니다.
// 꺼져 있으면 nil 인터페이스를 돌려주어 핸들러가 503 으로 응답하게 합니다.
func ProvideUsageStore(repo *usage.Repository) usage.Store {
	if !repo.Enabled() {
		return nil
	}
	return repo
}

// ProvideHealthChecker: 사용량 DB 를 포함한 헬스 체커를 생성합니다.
func ProvideHealthChecker(cfg *config.Config, store usage.Store) *health.Checker {
	return health.NewChecker(cfg, store)
}

// ProvideNoUsageRecorder: 사용량을 기록하지 않는 Recorder 를 반환합니다(CLI 용).
func ProvideNoUsageRecorder() *usage.Recorder {
	return nil
}

// ProvideMCPHandler: MCP Streamable HTTP 핸들러를 생성합니다. 비활성화면 nil 입니다.
func ProvideMCPHandler(cfg *config.Config, service *ideas.Service, logger *slog.Logger) http.Handler {
	if !cfg.MCP.Enabled {
		return nil
	}
	return mcpserver.New(service, serviceVersion(cfg), logger).HTTPHandler()
}

func serviceVersion(cfg *config.Config) string {
	if cfg.Telemetry.ServiceVersion != "" {
		return cfg.Telemetry.ServiceVersion
	}
	return "dev"
}
