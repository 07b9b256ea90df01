//go:build wireinject

package di

import (
	"github.com/google/wire"

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

var serviceSet = wire.NewSet(
	config.ProvideConfig,
	metrics.NewStore,
	guard.NewGuard,
	wire.Bind(new(guard.Guard), new(*guard.InjectionGuard)),
	openai.NewHTTPClient,
	openai.NewClient,
	wire.Bind(new(openai.ChatCompleter), new(*openai.Client)),
	ideasdomain.NewPrompts,
	ideas.New,
)

func InitializeApp() (*App, error) {
	wire.Build(
		serviceSet,
		ProvideLogger,
		ProvideTelemetry,
		usage.NewRepository,
		usage.NewRecorderFromRepository,
		ProvideUsageStore,
		ProvideHealthChecker,
		ProvideMCPHandler,
		handler.NewIdeasHandler,
		handler.NewGuardHandler,
		handler.NewUsageHandler,
		handler.NewRouter,
		server.NewHTTPServer,
		NewApp,
	)
	return nil, nil
}

func InitializeService() (*ideas.Service, error) {
	wire.Build(
		serviceSet,
		ProvideCLILogger,
		ProvideNoUsageRecorder,
	)
	return nil, nil
}
