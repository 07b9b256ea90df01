package shared

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

type noEscapeHTMLJSON struct{}

func (noEscapeHTMLJSON) Marshal(v any) ([]byte, error) {
	var builder strings.Builder
	enc := json.NewEncoder(&builder)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return []byte(strings.TrimRight(builder.String(), "\n")), nil
}

var jsonNoEscapeHTML = noEscapeHTMLJSON{}

// SerializeDetails 는 details map을 JSON 문자열로 직렬화한다.
func SerializeDetails(details map[string]any) (string, error) {
	if len(details) == 0 {
		return "", nil
	}

	data, err := jsonNoEscapeHTML.Marshal(details)
	if err != nil {
		return "", fmt.Errorf("encode details: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// TrimRunes 는 문자열을 최대 maxRunes 개의 룬으로 자른다.
func TrimRunes(value string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(value)
	if len(runes) <= maxRunes {
		return value
	}
	return string(runes[:maxRunes])
}

// FirstNonEmpty 는 공백을 제거한 값 중 처음으로 비어 있지 않은 것을 반환한다.
func FirstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
