package health

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/config"
)

var startTime = time.Now()

const pingTimeout = 2 * time.Second

// Component 는 상태 구성 요소다.
type Component struct {
	Status string         `json:"status"`
	Detail map[string]any `json:"detail"`
}

// Response 는 상태 응답 본문이다.
type Response struct {
	Status     string               `json:"status"`
	Components map[string]Component `json:"components"`
}

// Pinger 는 연결 확인이 가능한 외부 의존성이다.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker 는 헬스 상태를 수집한다. usageDB 가 nil 이면 사용량 집계가 꺼진 것으로 본다.
type Checker struct {
	cfg     *config.Config
	usageDB Pinger
}

// NewChecker 는 Checker 를 생성한다.
func NewChecker(cfg *config.Config, usageDB Pinger) *Checker {
	return &Checker{cfg: cfg, usageDB: usageDB}
}

// Collect 는 헬스 상태를 수집한다. deepChecks 가 true 일 때만 외부 의존성에 접속한다.
func (c *Checker) Collect(ctx context.Context, deepChecks bool) Response {
	if ctx == nil {
		ctx = context.Background()
	}

	components := map[string]Component{
		"app":      buildAppStatus(ctx, deepChecks),
		"openai":   buildOpenAIStatus(c.cfg),
		"usage_db": c.buildUsageDBStatus(ctx, deepChecks),
	}

	overall := "ok"
	for _, component := range components {
		if component.Status != "ok" {
			overall = "degraded"
			break
		}
	}

	return Response{
		Status:     overall,
		Components: components,
	}
}

func buildAppStatus(ctx context.Context, deepChecks bool) Component {
	detail := map[string]any{
		"uptime_seconds": int(time.Since(startTime).Seconds()),
		"goroutines":     runtime.NumGoroutine(),
	}

	// 시스템 지표는 readiness 에서만 수집한다.
	if deepChecks {
		if v, err := mem.VirtualMemoryWithContext(ctx); err == nil {
			detail["memory_used_percent"] = v.UsedPercent
		}
		if cpus, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(cpus) > 0 {
			detail["cpu_percent"] = cpus[0]
		}
	}

	return Component{Status: "ok", Detail: detail}
}

// 서버 키가 없어도 요청별 키로 동작할 수 있으므로 상태는 항상 ok 다.
func buildOpenAIStatus(cfg *config.Config) Component {
	detail := map[string]any{
		"server_key_present": false,
		"primary_model":      "",
		"secondary_model":    "",
		"timeout_seconds":    0,
	}
	if cfg != nil {
		detail["server_key_present"] = cfg.OpenAI.APIKey != ""
		detail["primary_model"] = cfg.OpenAI.Primary.Model
		detail["secondary_model"] = cfg.OpenAI.Secondary.Model
		detail["timeout_seconds"] = cfg.OpenAI.TimeoutSeconds
	}
	return Component{Status: "ok", Detail: detail}
}

func (c *Checker) buildUsageDBStatus(ctx context.Context, deepChecks bool) Component {
	enabled := c.usageDB != nil
	detail := map[string]any{
		"enabled":      enabled,
		"connected":    false,
		"deep_checked": deepChecks,
	}
	if !enabled || !deepChecks {
		return Component{Status: "ok", Detail: detail}
	}

	pingCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pingTimeout)
	defer cancel()

	if err := c.usageDB.Ping(pingCtx); err != nil {
		detail["error"] = err.Error()
		return Component{Status: "degraded", Detail: detail}
	}
	detail["connected"] = true
	return Component{Status: "ok", Detail: detail}
}
