package server

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/config"
)

const (
	readHeaderTimeout = 5 * time.Second
	// 아이디어 요청 본문은 작다. 큰 본문을 천천히 보내는 연결을 끊는다.
	readTimeout    = 15 * time.Second
	idleTimeout    = 120 * time.Second
	maxHeaderBytes = 64 << 10
)

// NewHTTPServer 는 아이디어 API 와 MCP 엔드포인트를 서빙할 HTTP 서버를 만든다.
// 응답은 두 번의 순차 모델 호출과 MCP 스트림을 기다려야 하므로 WriteTimeout 을 두지 않는다.
// HTTP2Enabled 이면 h2c 로 평문 HTTP/2 를 허용한다.
func NewHTTPServer(cfg *config.Config, router *gin.Engine, logger *slog.Logger) *http.Server {
	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.HTTP.Host, strconv.Itoa(cfg.HTTP.Port)),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
		MaxHeaderBytes:    maxHeaderBytes,
	}
	if logger != nil {
		server.ErrorLog = slog.NewLogLogger(logger.Handler(), slog.LevelWarn)
	}

	if cfg.HTTP.HTTP2Enabled {
		server.Handler = h2c.NewHandler(router, &http2.Server{IdleTimeout: idleTimeout})
	}

	return server
}
