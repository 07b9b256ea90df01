package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/config"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/telemetry"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/usage"
)

const telemetryShutdownTimeout = 5 * time.Second

// App: 애플리케이션 구성 요소를 묶는다.
type App struct {
	Server          *http.Server
	Logger          *slog.Logger
	Config          *config.Config
	Telemetry       *telemetry.Provider
	UsageRepository *usage.Repository
}

// NewApp: App 인스턴스를 생성합니다.
func NewApp(
	server *http.Server,
	logger *slog.Logger,
	cfg *config.Config,
	telemetryProvider *telemetry.Provider,
	usageRepository *usage.Repository,
) *App {
	return &App{
		Server:          server,
		Logger:          logger,
		Config:          cfg,
		Telemetry:       telemetryProvider,
		UsageRepository: usageRepository,
	}
}

// LogStartup: 실제로 구성된 엔드포인트와 부가 기능을 기록합니다.
func (a *App) LogStartup() {
	if a == nil || a.Logger == nil || a.Config == nil || a.Server == nil {
		return
	}
	cfg := a.Config

	mcpPath := ""
	if cfg.MCP.Enabled {
		mcpPath = cfg.MCP.Path
	}
	a.Logger.Info(
		"http_server_start",
		"addr", a.Server.Addr,
		"http2", cfg.HTTP.HTTP2Enabled,
		"gzip", cfg.HTTP.GzipEnabled,
		"mcp_path", mcpPath,
		"usage_db", a.UsageRepository.Enabled(),
		"guard", cfg.Guard.Enabled,
		"telemetry", a.Telemetry != nil,
		"primary_model", cfg.OpenAI.Primary.Model,
		"secondary_model", cfg.OpenAI.Secondary.Model,
		"trusted_proxies", len(cfg.HTTP.TrustedProxies),
	)
	if cfg.HTTPAuth.APIKey == "" {
		a.Logger.Warn("http_auth_disabled", "reason", "HTTP_API_KEY not set")
	}
}

// Close: 앱 리소스를 정리합니다.
func (a *App) Close() {
	if a.UsageRepository != nil {
		a.UsageRepository.Close()
	}
	if a.Telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := a.Telemetry.Shutdown(ctx); err != nil && a.Logger != nil {
			a.Logger.Warn("telemetry_shutdown_failed", "err", err)
		}
	}
}
