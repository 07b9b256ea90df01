package ideas

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"
)

// 여는 ```json(뒤 개행 선택)과 닫는 ```(앞 개행 선택)을 모두 제거한다.
var codeFencePattern = regexp.MustCompile("```json\n?|\n?```")

// StripCodeFence 는 마크다운 코드 펜스를 제거하고 앞뒤 공백을 다듬는다.
func StripCodeFence(content string) string {
	return strings.TrimSpace(codeFencePattern.ReplaceAllString(content, ""))
}

// ParseIdeas 는 모델 응답 본문을 검증된 아이디어 목록으로 변환한다.
// 한 항목이라도 잘못되면 전체를 거부한다.
func ParseIdeas(content string) ([]Idea, error) {
	if content == "" {
		return nil, &GenerationError{Kind: KindEmptyResponse, Message: ErrEmptyResponse.Error(), Err: ErrEmptyResponse}
	}

	cleaned := StripCodeFence(content)

	var parsed any
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, newParseError(fmt.Errorf("%w: %s", ErrMalformedJSON, err.Error()))
	}

	document, ok := parsed.(map[string]any)
	if !ok {
		return nil, newParseError(ErrMissingIdeas)
	}
	entries, ok := document["ideas"].([]any)
	if !ok || len(entries) == 0 {
		return nil, newParseError(ErrMissingIdeas)
	}

	result := make([]Idea, 0, len(entries))
	for index, entry := range entries {
		idea, err := decodeIdea(entry, index)
		if err != nil {
			return nil, newParseError(err)
		}
		result = append(result, idea)
	}
	return result, nil
}

func decodeIdea(entry any, index int) (Idea, error) {
	fields, ok := entry.(map[string]any)
	if !ok || !present(fields["title"]) || !present(fields["description"]) {
		return Idea{}, &IdeaFormatError{Index: index}
	}

	var idea Idea
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &idea,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Idea{}, fmt.Errorf("new decoder: %w", err)
	}
	if err := decoder.Decode(fields); err != nil {
		return Idea{}, &IdeaFormatError{Index: index}
	}
	if idea.Title == "" || idea.Description == "" {
		return Idea{}, &IdeaFormatError{Index: index}
	}
	return idea, nil
}

// present 는 값이 비어 있지 않은지 판정한다. 빈 문자열, 0, false, null 은 누락으로 본다.
func present(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case float64:
		return v != 0 && !math.IsNaN(v)
	default:
		return true
	}
}
