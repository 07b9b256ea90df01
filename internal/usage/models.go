package usage

import "time"

const dayLayout = "2006-01-02"

// TokenUsage 는 일자·모델별 토큰 사용량 집계를 저장하는 DB 모델이다.
// 주제나 생성 결과는 저장하지 않는다.
type TokenUsage struct {
	ID           int64  `gorm:"column:id;primaryKey;autoIncrement"`
	UsageDay     string `gorm:"column:usage_day;type:varchar(10);not null;uniqueIndex:idx_token_usage_day_model"`
	Model        string `gorm:"column:model;type:varchar(100);not null;uniqueIndex:idx_token_usage_day_model"`
	InputTokens  int64  `gorm:"column:input_tokens;not null;default:0"`
	OutputTokens int64  `gorm:"column:output_tokens;not null;default:0"`
	RequestCount int64  `gorm:"column:request_count;not null;default:0"`
	Version      int64  `gorm:"column:version;not null;default:0"`
}

// TableName 은 GORM에서 사용할 테이블명을 반환한다.
func (TokenUsage) TableName() string {
	return "token_usage"
}

// ModelUsage 는 모델 하나의 사용량 합계다.
type ModelUsage struct {
	Model        string `json:"model"`
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
	RequestCount int64  `json:"request_count"`
}

// TotalTokens 는 입력+출력 토큰 합계를 반환한다.
func (m ModelUsage) TotalTokens() int64 {
	return m.InputTokens + m.OutputTokens
}

// DailyUsage 는 API/집계용 일자별 사용량 뷰 모델이다.
type DailyUsage struct {
	UsageDay     string
	InputTokens  int64
	OutputTokens int64
	RequestCount int64
	Models       []ModelUsage
}

// TotalTokens 는 입력+출력 토큰 합계를 반환한다.
func (d DailyUsage) TotalTokens() int64 {
	return d.InputTokens + d.OutputTokens
}

func dayOf(t time.Time) string {
	return t.Format(dayLayout)
}
