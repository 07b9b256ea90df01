package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/cache"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/config"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/httperror"
)

// RateLimit 는 호출자별 분당 요청 제한 미들웨어다.
// 이 서비스 자체를 보호하며 OpenAI 쪽 한도와는 무관하다.
func RateLimit(cfg *config.Config) gin.HandlerFunc {
	return rateLimitWithClock(cfg, time.Now)
}

func rateLimitWithClock(cfg *config.Config, now func() time.Time) gin.HandlerFunc {
	limit := 0
	cacheSize := 0
	cacheTTL := time.Duration(0)
	if cfg != nil {
		limit = cfg.HTTPRateLimit.RequestsPerMinute
		cacheSize = cfg.HTTPRateLimit.CacheSize
		cacheTTL = time.Duration(cfg.HTTPRateLimit.CacheTTLSeconds) * time.Second
	}
	counter := cache.NewTTLCache[string, int](cacheSize, cacheTTL)
	protected := protectedPrefixes(cfg)

	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}
		if c.Request.Method == http.MethodOptions || !shouldProtectPath(c.Request.URL.Path, protected) {
			c.Next()
			return
		}

		identity := rateLimitIdentity(c)
		current := now()
		window := current.Unix() / 60
		key := fmt.Sprintf("%s:%d", identity, window)

		count, ok := counter.Modify(key, func(value int, _ bool) int { return value + 1 })
		if !ok {
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(limit-count, 0)))

		if count > limit {
			retryAfter := 60 - current.Unix()%60
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			details := map[string]any{
				"path":             c.Request.URL.Path,
				"identity":         identity,
				"limit_per_minute": limit,
			}
			status, payload := httperror.Response(httperror.NewRateLimitExceeded(details), GetRequestID(c))
			c.AbortWithStatusJSON(status, payload)
			return
		}

		c.Next()
	}
}

func rateLimitIdentity(c *gin.Context) string {
	if key := extractAPIKey(c); key != "" {
		return "key:" + hashKey(key)
	}

	// 전달 헤더는 엔진의 신뢰 프록시 설정을 거친 ClientIP 로만 반영된다.
	if ip := c.ClientIP(); ip != "" {
		return "ip:" + ip
	}
	return "ip:unknown"
}

func hashKey(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:8])
}
