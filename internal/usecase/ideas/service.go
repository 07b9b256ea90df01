package ideas

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/config"
	ideasdomain "github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/domain/ideas"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/guard"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/llm"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/metrics"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/openai"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/usage"
)

const tracerName = "github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/usecase/ideas"

// stage 는 파이프라인 한 단계(계층과 모델 설정)다.
type stage struct {
	tier    ideasdomain.Tier
	profile config.ModelProfile
}

// Service: 주제 하나로 두 모델 계층의 아이디어 목록을 만드는 유스케이스입니다(HTTP/MCP/CLI 공용).
type Service struct {
	cfg      *config.Config
	client   openai.ChatCompleter
	guard    guard.Guard
	prompts  *ideasdomain.Prompts
	metrics  *metrics.Store
	recorder *usage.Recorder
	logger   *slog.Logger
	stages   []stage
	timeout  time.Duration
}

// New: Service 인스턴스를 생성합니다. injectionGuard 와 recorder 는 nil 이어도 됩니다.
func New(
	cfg *config.Config,
	client openai.ChatCompleter,
	injectionGuard guard.Guard,
	prompts *ideasdomain.Prompts,
	metricsStore *metrics.Store,
	recorder *usage.Recorder,
	logger *slog.Logger,
) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if client == nil {
		return nil, errors.New("chat client is nil")
	}
	if prompts == nil {
		return nil, errors.New("prompts are nil")
	}
	if metricsStore == nil {
		metricsStore = metrics.NewStore()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		cfg:      cfg,
		client:   client,
		guard:    injectionGuard,
		prompts:  prompts,
		metrics:  metricsStore,
		recorder: recorder,
		logger:   logger,
		stages: []stage{
			{tier: ideasdomain.TierPrimary, profile: cfg.OpenAI.Primary},
			{tier: ideasdomain.TierSecondary, profile: cfg.OpenAI.Secondary},
		},
		timeout: time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second,
	}, nil
}

// Models: 계층별 모델 이름을 반환합니다.
func (s *Service) Models() (primary string, secondary string) {
	return s.cfg.OpenAI.Primary.Model, s.cfg.OpenAI.Secondary.Model
}

// Generate: 고성능 계층을 먼저 호출하고, 성공했을 때만 고속 계층을 호출합니다.
// 어느 단계든 실패하면 부분 결과 없이 *ideas.GenerationError 를 반환합니다.
func (s *Service) Generate(ctx context.Context, topic string, credential string) (ideasdomain.ResultSet, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ideas.Generate")
	defer span.End()

	startedAt := time.Now()
	result, tokens, err := s.generate(ctx, topic, credential)
	s.metrics.RecordGeneration(err == nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ideasdomain.ResultSet{}, err
	}

	s.logger.Info("idea_generation_completed",
		"primary_count", len(result.Primary),
		"secondary_count", len(result.Secondary),
		"total_tokens", tokens.TotalTokens,
		"duration_ms", time.Since(startedAt).Milliseconds(),
	)
	return result, nil
}

func (s *Service) generate(ctx context.Context, topic string, credential string) (ideasdomain.ResultSet, llm.Usage, error) {
	var total llm.Usage

	key := s.resolveCredential(credential)
	if key == "" {
		return ideasdomain.ResultSet{}, total, &ideasdomain.GenerationError{
			Kind:    ideasdomain.KindMissingCredential,
			Message: "Missing OpenAI API key",
			Err:     openai.ErrMissingCredential,
		}
	}

	if s.guard != nil {
		if err := s.guard.EnsureSafe(topic); err != nil {
			s.logger.Warn("idea_topic_blocked", "err", err)
			return ideasdomain.ResultSet{}, total, &ideasdomain.GenerationError{
				Kind:    ideasdomain.KindBlockedInput,
				Message: err.Error(),
				Err:     err,
			}
		}
	}

	messages, err := s.buildMessages(topic)
	if err != nil {
		return ideasdomain.ResultSet{}, total, err
	}

	var result ideasdomain.ResultSet
	for _, st := range s.stages {
		items, tokens, err := s.runStage(ctx, st, key, messages)
		total = total.Add(tokens)
		if err != nil {
			return ideasdomain.ResultSet{}, total, err
		}
		result.Set(st.tier, items)
	}
	return result, total, nil
}

func (s *Service) resolveCredential(credential string) string {
	if key := strings.TrimSpace(credential); key != "" {
		return key
	}
	return strings.TrimSpace(s.cfg.OpenAI.APIKey)
}

func (s *Service) buildMessages(topic string) ([]llm.Message, error) {
	system, err := s.prompts.System()
	if err != nil {
		return nil, fmt.Errorf("system prompt: %w", err)
	}
	user, err := s.prompts.User(topic)
	if err != nil {
		return nil, fmt.Errorf("user prompt: %w", err)
	}
	return []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, nil
}

func (s *Service) runStage(ctx context.Context, st stage, credential string, messages []llm.Message) ([]ideasdomain.Idea, llm.Usage, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ideas.stage")
	defer span.End()
	span.SetAttributes(
		attribute.String("idea.tier", string(st.tier)),
		attribute.String("llm.model", st.profile.Model),
	)

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	startedAt := time.Now()
	resp, err := s.client.ChatCompletion(callCtx, credential, openai.ChatRequest{
		Model:       st.profile.Model,
		Messages:    messages,
		Temperature: st.profile.Temperature,
		MaxTokens:   st.profile.MaxTokens,
	})
	elapsed := time.Since(startedAt)
	if err != nil {
		s.metrics.RecordError(string(st.tier), st.profile.Model, elapsed)
		genErr := classifyCallError(st.tier, err)
		s.stageFailed(span, st, genErr, elapsed)
		return nil, llm.Usage{}, genErr
	}

	tokens := resp.LLMUsage()
	s.metrics.RecordSuccess(string(st.tier), st.profile.Model, elapsed, tokens)
	s.recorder.Record(ctx, st.profile.Model, tokens)

	items, err := ideasdomain.ParseIdeas(resp.Content())
	if err != nil {
		var genErr *ideasdomain.GenerationError
		if !errors.As(err, &genErr) {
			genErr = &ideasdomain.GenerationError{Kind: ideasdomain.KindParse, Message: err.Error(), Err: err}
		}
		genErr.Tier = st.tier
		s.stageFailed(span, st, genErr, elapsed)
		return nil, tokens, genErr
	}

	span.SetAttributes(attribute.Int("idea.count", len(items)))
	s.logger.Info("idea_stage_completed",
		"tier", st.tier,
		"model", st.profile.Model,
		"ideas", len(items),
		"input_tokens", tokens.InputTokens,
		"output_tokens", tokens.OutputTokens,
		"duration_ms", elapsed.Milliseconds(),
	)
	return items, tokens, nil
}

func (s *Service) stageFailed(span trace.Span, st stage, genErr *ideasdomain.GenerationError, elapsed time.Duration) {
	span.RecordError(genErr)
	span.SetStatus(codes.Error, genErr.Message)
	s.logger.Warn("idea_stage_failed",
		"tier", st.tier,
		"model", st.profile.Model,
		"kind", genErr.Kind,
		"duration_ms", elapsed.Milliseconds(),
		"err", genErr.Message,
	)
}

// classifyCallError 는 호출 단계 오류를 GenerationError 로 바꾼다.
// 제공자가 error.message 를 주지 않으면 계층별 기본 메시지를 쓴다.
func classifyCallError(tier ideasdomain.Tier, err error) *ideasdomain.GenerationError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" {
			message = tier.FallbackMessage()
		}
		return &ideasdomain.GenerationError{Kind: ideasdomain.KindProvider, Tier: tier, Message: message, Err: err}
	}

	if errors.Is(err, openai.ErrMissingCredential) {
		return &ideasdomain.GenerationError{Kind: ideasdomain.KindMissingCredential, Tier: tier, Message: "Missing OpenAI API key", Err: err}
	}

	return &ideasdomain.GenerationError{Kind: ideasdomain.KindTransport, Tier: tier, Message: err.Error(), Err: err}
}
