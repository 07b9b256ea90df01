package di

import (
	"fmt"

	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/config"
	ideasdomain "github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/domain/ideas"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/guard"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/handler"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/metrics"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/openai"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/server"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/usage"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/usecase/ideas"
)

// InitializeApp 은 애플리케이션 의존성을 초기화하고 App 인스턴스를 반환한다.
func InitializeApp() (*App, error) {
	cfg, err := config.ProvideConfig()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	telemetryProvider, err := ProvideTelemetry(cfg)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	metricsStore := metrics.NewStore()

	usageRepository := usage.NewRepository(cfg, logger)
	usageStore := ProvideUsageStore(usageRepository)
	usageRecorder := usage.NewRecorderFromRepository(usageRepository, logger)

	injectionGuard, err := guard.NewGuard(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("guard: %w", err)
	}

	httpClient := openai.NewHTTPClient(cfg)
	openaiClient, err := openai.NewClient(cfg, httpClient)
	if err != nil {
		return nil, fmt.Errorf("openai client: %w", err)
	}

	prompts, err := ideasdomain.NewPrompts()
	if err != nil {
		return nil, fmt.Errorf("ideas prompts: %w", err)
	}

	service, err := ideas.New(cfg, openaiClient, injectionGuard, prompts, metricsStore, usageRecorder, logger)
	if err != nil {
		return nil, fmt.Errorf("ideas service: %w", err)
	}

	ideasHandler := handler.NewIdeasHandler(service, logger)
	guardHandler := handler.NewGuardHandler(injectionGuard)
	usageHandler := handler.NewUsageHandler(usageStore, logger)
	checker := ProvideHealthChecker(cfg, usageStore)
	mcpHandler := ProvideMCPHandler(cfg, service, logger)

	router := handler.NewRouter(cfg, logger, ideasHandler, guardHandler, usageHandler, checker, metricsStore, mcpHandler)
	httpServer := server.NewHTTPServer(cfg, router, logger)

	return NewApp(httpServer, logger, cfg, telemetryProvider, usageRepository), nil
}

// InitializeService 는 HTTP 계층 없이 아이디어 생성 유스케이스만 구성한다(CLI 용).
func InitializeService() (*ideas.Service, error) {
	cfg, err := config.ProvideConfig()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger := ProvideCLILogger(cfg)

	injectionGuard, err := guard.NewGuard(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("guard: %w", err)
	}

	openaiClient, err := openai.NewClient(cfg, openai.NewHTTPClient(cfg))
	if err != nil {
		return nil, fmt.Errorf("openai client: %w", err)
	}

	prompts, err := ideasdomain.NewPrompts()
	if err != nil {
		return nil, fmt.Errorf("ideas prompts: %w", err)
	}

	service, err := ideas.New(cfg, openaiClient, injectionGuard, prompts, metrics.NewStore(), ProvideNoUsageRecorder(), logger)
	if err != nil {
		return nil, fmt.Errorf("ideas service: %w", err)
	}
	return service, nil
}
