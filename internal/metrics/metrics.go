package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/llm"
)

const namespace = "idea_llm"

// Store 는 모델 호출 통계를 저장하고 Prometheus 수집기로도 노출한다.
type Store struct {
	totalCalls        int64
	totalErrors       int64
	totalInputTokens  int64
	totalOutputTokens int64
	totalDurationMs   int64
	totalGenerations  int64
	failedGenerations int64

	registry    *prometheus.Registry
	calls       *prometheus.CounterVec
	tokens      *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	generations *prometheus.CounterVec
}

// NewStore 는 통계 저장소와 전용 레지스트리를 생성한다.
func NewStore() *Store {
	s := &Store{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_calls_total",
			Help:      "Chat completion calls by tier, model and outcome.",
		}, []string{"tier", "model", "outcome"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_tokens_total",
			Help:      "Tokens reported by the provider.",
		}, []string{"tier", "model", "direction"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_call_duration_seconds",
			Help:      "Chat completion call latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		}, []string{"tier", "model"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Idea generation requests by outcome.",
		}, []string{"outcome"}),
	}
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		s.calls, s.tokens, s.latency, s.generations,
	)
	return s
}

// Registry 는 /metrics 에 노출할 레지스트리를 반환한다.
func (s *Store) Registry() *prometheus.Registry {
	return s.registry
}

// RecordSuccess 는 성공 호출 통계를 기록한다.
func (s *Store) RecordSuccess(tier string, model string, duration time.Duration, usage llm.Usage) {
	atomic.AddInt64(&s.totalCalls, 1)
	atomic.AddInt64(&s.totalInputTokens, int64(usage.InputTokens))
	atomic.AddInt64(&s.totalOutputTokens, int64(usage.OutputTokens))
	atomic.AddInt64(&s.totalDurationMs, duration.Milliseconds())

	s.calls.WithLabelValues(tier, model, "success").Inc()
	s.tokens.WithLabelValues(tier, model, "input").Add(float64(usage.InputTokens))
	s.tokens.WithLabelValues(tier, model, "output").Add(float64(usage.OutputTokens))
	s.latency.WithLabelValues(tier, model).Observe(duration.Seconds())
}

// RecordError 는 실패 호출 통계를 기록한다.
func (s *Store) RecordError(tier string, model string, duration time.Duration) {
	atomic.AddInt64(&s.totalCalls, 1)
	atomic.AddInt64(&s.totalErrors, 1)
	atomic.AddInt64(&s.totalDurationMs, duration.Milliseconds())

	s.calls.WithLabelValues(tier, model, "error").Inc()
	s.latency.WithLabelValues(tier, model).Observe(duration.Seconds())
}

// RecordGeneration 은 생성 요청 하나의 최종 결과를 기록한다.
func (s *Store) RecordGeneration(ok bool) {
	atomic.AddInt64(&s.totalGenerations, 1)
	outcome := "success"
	if !ok {
		atomic.AddInt64(&s.failedGenerations, 1)
		outcome = "error"
	}
	s.generations.WithLabelValues(outcome).Inc()
}

// Snapshot 는 통계 스냅샷을 반환한다.
func (s *Store) Snapshot() map[string]float64 {
	totalCalls := atomic.LoadInt64(&s.totalCalls)
	totalErrors := atomic.LoadInt64(&s.totalErrors)
	input := atomic.LoadInt64(&s.totalInputTokens)
	output := atomic.LoadInt64(&s.totalOutputTokens)
	durationMs := atomic.LoadInt64(&s.totalDurationMs)

	avgDuration := 0.0
	if totalCalls > 0 {
		avgDuration = float64(durationMs) / float64(totalCalls)
	}

	return map[string]float64{
		"total_calls":         float64(totalCalls),
		"total_errors":        float64(totalErrors),
		"total_input_tokens":  float64(input),
		"total_output_tokens": float64(output),
		"total_tokens":        float64(input + output),
		"total_duration_ms":   float64(durationMs),
		"avg_duration_ms":     avgDuration,
		"total_generations":   float64(atomic.LoadInt64(&s.totalGenerations)),
		"failed_generations":  float64(atomic.LoadInt64(&s.failedGenerations)),
	}
}
