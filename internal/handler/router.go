package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/config"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/health"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/metrics"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/middleware"
)

// NewRouter 는 HTTP 라우터를 구성한다. mcpHandler 가 nil 이면 MCP 엔드포인트를 등록하지 않는다.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	ideasHandler *IdeasHandler,
	guardHandler *GuardHandler,
	usageHandler *UsageHandler,
	checker *health.Checker,
	metricsStore *metrics.Store,
	mcpHandler http.Handler,
) *gin.Engine {
	setGinMode(cfg.Logging.Level)

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		logger.Warn("trusted_proxies_invalid", "proxies", cfg.HTTP.TrustedProxies, "err", err)
		_ = router.SetTrustedProxies(nil)
	}

	// OTel 미들웨어는 가장 앞에 둔다.
	if cfg.Telemetry.Enabled {
		serviceName := cfg.Telemetry.ServiceName
		if serviceName == "" {
			serviceName = "idea-llm-server"
		}
		router.Use(otelgin.Middleware(serviceName))
	}

	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		gin.Recovery(),
		middleware.APIKeyAuth(cfg),
		middleware.RateLimit(cfg),
	)
	if cfg.HTTP.GzipEnabled {
		router.Use(newGzipMiddleware(cfg.MCP.Path))
	}

	RegisterHealthRoutes(router, cfg, checker, metricsStore)
	ideasHandler.RegisterRoutes(router)
	guardHandler.RegisterRoutes(router)
	usageHandler.RegisterRoutes(router)

	if mcpHandler != nil && cfg.MCP.Enabled && cfg.MCP.Path != "" {
		router.Any(cfg.MCP.Path, gin.WrapH(mcpHandler))
		logger.Info("mcp_endpoint_enabled", "path", cfg.MCP.Path)
	}

	return router
}

// MCP 스트림과 헬스/메트릭 응답은 압축하지 않는다.
func newGzipMiddleware(mcpPath string) gin.HandlerFunc {
	return gzip.Gzip(gzip.DefaultCompression, gzip.WithCustomShouldCompressFn(func(c *gin.Context) bool {
		path := c.Request.URL.Path
		if mcpPath != "" && strings.HasPrefix(path, mcpPath) {
			return false
		}
		if strings.HasPrefix(path, "/health") || path == "/metrics" {
			return false
		}
		return strings.Contains(c.GetHeader("Accept-Encoding"), "gzip")
	}))
}

func setGinMode(level string) {
	if strings.EqualFold(strings.TrimSpace(level), "debug") {
		gin.SetMode(gin.DebugMode)
		return
	}
	gin.SetMode(gin.ReleaseMode)
}
