package usage

import (
	"context"
	"time"
)

// Store: 사용량 저장소 인터페이스입니다.
// 테스트에서 mock 구현을 주입할 수 있도록 합니다.
type Store interface {
	RecordUsage(ctx context.Context, model string, inputTokens int64, outputTokens int64, requestCount int64, usageDate time.Time) error
	GetDailyUsage(ctx context.Context, usageDate time.Time) (*DailyUsage, error)
	GetRecentUsage(ctx context.Context, days int) ([]DailyUsage, error)
	GetTotalUsage(ctx context.Context, days int) (DailyUsage, error)
	Ping(ctx context.Context) error
	Close()
}

var _ Store = (*Repository)(nil)
