package ideas

// Tier 는 모델 계층(고성능/고속)을 나타낸다.
type Tier string

const (
	// TierPrimary 는 고성능 모델 계층이다.
	TierPrimary Tier = "primary"
	// TierSecondary 는 고속 모델 계층이다.
	TierSecondary Tier = "secondary"
)

// FallbackMessage 는 제공자가 error.message 를 주지 않았을 때 쓰는 계층별 메시지다.
func (t Tier) FallbackMessage() string {
	switch t {
	case TierPrimary:
		return "GPT-4 API error"
	case TierSecondary:
		return "GPT Mini API error"
	default:
		return "API request failed"
	}
}

// Idea 는 블로그 글 제목과 짧은 설명 한 쌍이다.
type Idea struct {
	Title       string `json:"title" mapstructure:"title"`
	Description string `json:"description" mapstructure:"description"`
}

// ResultSet 은 두 계층의 결과를 분리해 담는다. 두 목록은 병합하거나 중복 제거하지 않는다.
type ResultSet struct {
	Primary   []Idea `json:"primary"`
	Secondary []Idea `json:"secondary"`
}

// Set 은 계층에 해당하는 목록을 채운다.
func (r *ResultSet) Set(tier Tier, ideas []Idea) {
	switch tier {
	case TierPrimary:
		r.Primary = ideas
	case TierSecondary:
		r.Secondary = ideas
	}
}
