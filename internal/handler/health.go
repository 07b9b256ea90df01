package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/config"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/health"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/metrics"
)

// ModelProfileResponse: 계층 하나의 모델 설정입니다.
type ModelProfileResponse struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// ModelConfigResponse: 모델 설정 응답입니다.
type ModelConfigResponse struct {
	Primary        ModelProfileResponse `json:"primary"`
	Secondary      ModelProfileResponse `json:"secondary"`
	TimeoutSeconds int                  `json:"timeout_seconds"`
	HTTP2Enabled   bool                 `json:"http2_enabled"`
	TransportMode  string               `json:"transport_mode"`
}

// RegisterHealthRoutes: 상태 확인 라우트를 등록합니다.
func RegisterHealthRoutes(router *gin.Engine, cfg *config.Config, checker *health.Checker, store *metrics.Store) {
	router.GET("/health", func(c *gin.Context) {
		// Liveness: 사용량 DB 상태로 인해 다운 판정되지 않도록 shallow로 유지합니다.
		c.JSON(http.StatusOK, checker.Collect(c.Request.Context(), false))
	})

	router.GET("/health/ready", func(c *gin.Context) {
		payload := checker.Collect(c.Request.Context(), true)
		status := http.StatusOK
		if payload.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, payload)
	})

	if store != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(store.Registry(), promhttp.HandlerOpts{})))
		router.GET("/health/stats", func(c *gin.Context) {
			c.JSON(http.StatusOK, store.Snapshot())
		})
	}

	router.GET("/health/models", func(c *gin.Context) {
		transportMode := "h1"
		if cfg.HTTP.HTTP2Enabled {
			transportMode = "h2c"
		}

		c.JSON(http.StatusOK, ModelConfigResponse{
			Primary:        profileResponse(cfg.OpenAI.Primary),
			Secondary:      profileResponse(cfg.OpenAI.Secondary),
			TimeoutSeconds: cfg.OpenAI.TimeoutSeconds,
			HTTP2Enabled:   cfg.HTTP.HTTP2Enabled,
			TransportMode:  transportMode,
		})
	})
}

func profileResponse(profile config.ModelProfile) ModelProfileResponse {
	return ModelProfileResponse{
		Model:       profile.Model,
		Temperature: profile.Temperature,
		MaxTokens:   profile.MaxTokens,
	}
}
