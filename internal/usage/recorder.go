package usage

import (
	"context"
	"log/slog"
	"time"

	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/llm"
)

// Recorder 는 모델 호출 1회의 토큰 사용량을 저장한다. 저장 실패는 경고 로그만 남긴다.
type Recorder struct {
	store  Store
	logger *slog.Logger
}

// NewRecorder 는 Recorder 를 생성한다. store 가 nil 이면 기록하지 않는다.
func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

// NewRecorderFromRepository 는 집계가 꺼져 있으면 기록하지 않는 Recorder 를 만든다.
func NewRecorderFromRepository(repo *Repository, logger *slog.Logger) *Recorder {
	if !repo.Enabled() {
		return NewRecorder(nil, logger)
	}
	return NewRecorder(repo, logger)
}

// Record 는 1회 호출의 토큰 사용량을 기록한다.
func (r *Recorder) Record(ctx context.Context, model string, tokens llm.Usage) {
	if r == nil || r.store == nil {
		return
	}
	if tokens.InputTokens <= 0 && tokens.OutputTokens <= 0 {
		return
	}

	err := r.store.RecordUsage(ctx, model, int64(tokens.InputTokens), int64(tokens.OutputTokens), 1, time.Time{})
	if err != nil && r.logger != nil {
		r.logger.Warn("usage_db_save_failed", "model", model, "err", err)
	}
}
