package guard

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/forPelevin/gomoji"
	"github.com/mtibben/confusables"
	"golang.org/x/text/unicode/norm"
)

// 이보다 짧은 base64 시퀀스는 의미 있는 페이로드로 보지 않는다.
const minBase64Run = 20

func isASCIIOnly(text string) bool {
	for i := 0; i < len(text); i++ {
		if text[i] > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// isBase64Char: 표준/URL-safe Base64 문자셋 검사
func isBase64Char(c byte) bool {
	return (c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9') ||
		c == '+' || c == '/' || c == '-' || c == '_'
}

// containsSuspiciousBase64: 주제 안에 숨겨진 Base64 지시문이 있는지 탐지합니다.
// 디코딩 결과가 읽을 수 있는 텍스트일 때만 의심 입력으로 봅니다.
func containsSuspiciousBase64(input string) bool {
	n := len(input)
	i := 0

	for i < n {
		if !isBase64Char(input[i]) {
			i++
			continue
		}

		start := i
		for i < n && isBase64Char(input[i]) {
			i++
		}
		for padding := 0; i < n && input[i] == '=' && padding < 2; padding++ {
			i++
		}

		if i-start < minBase64Run {
			continue
		}

		decoded, err := tryDecodeBase64(input[start:i])
		if err != nil {
			continue
		}
		if isReadableText(decoded) {
			return true
		}
	}

	return false
}

// tryDecodeBase64: URL-safe 문자 치환과 패딩 보정 후 디코딩합니다.
func tryDecodeBase64(s string) ([]byte, error) {
	n := len(s)
	if n == 0 {
		return nil, fmt.Errorf("base64 decode: empty input")
	}

	trimmed := strings.TrimRight(s, "=")
	padNeeded := (4 - len(trimmed)%4) % 4
	buf := make([]byte, len(trimmed)+padNeeded)
	for i := 0; i < len(trimmed); i++ {
		switch trimmed[i] {
		case '-':
			buf[i] = '+'
		case '_':
			buf[i] = '/'
		default:
			buf[i] = trimmed[i]
		}
	}
	for i := len(trimmed); i < len(buf); i++ {
		buf[i] = '='
	}

	decoded := make([]byte, base64.StdEncoding.DecodedLen(len(buf)))
	written, err := base64.StdEncoding.Decode(decoded, buf)
	if err != nil {
		return nil, fmt.Errorf("base64 decode: %w", err)
	}
	return decoded[:written], nil
}

// isReadableText: 유효한 UTF-8 이고 90% 초과가 출력 가능 문자인지 판별합니다.
func isReadableText(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	printable := 0
	total := 0
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return false
		}
		i += size
		total++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
	}
	return printable*100 > total*90
}

// latinLetters 는 skeleton 변환 없이 보존할 터키어 문자다.
const latinLetters = "çğıöşüÇĞİÖŞÜ"

// normalizeText: 전각 문자와 homoglyph 를 기본 라틴 문자로 접고 제어 문자를 제거합니다.
// ASCII 와 터키어 문자는 skeleton 변환에서 제외합니다. skeleton 은 "m" 같은 ASCII 도 바꾸기 때문입니다.
func normalizeText(text string) string {
	if isASCIIOnly(text) {
		return stripControlChars(text)
	}

	// NFD 입력 우회 방지 후 전각 문자 접기
	folded := norm.NFKC.String(norm.NFC.String(text))
	return stripControlChars(skeletonForeignRunes(folded))
}

func skeletonForeignRunes(text string) string {
	var result strings.Builder
	var foreign strings.Builder
	result.Grow(len(text))

	flush := func() {
		if foreign.Len() == 0 {
			return
		}
		result.WriteString(norm.NFKC.String(confusables.Skeleton(foreign.String())))
		foreign.Reset()
	}

	for _, r := range text {
		if r <= unicode.MaxASCII || strings.ContainsRune(latinLetters, r) {
			flush()
			result.WriteRune(r)
			continue
		}
		foreign.WriteRune(r)
	}
	flush()

	return result.String()
}

func stripControlChars(text string) string {
	hasControl := false
	for _, r := range text {
		if isControl(r) {
			hasControl = true
			break
		}
	}
	if !hasControl {
		return text
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range text {
		if isControl(r) {
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

func isControl(r rune) bool {
	if r == '\n' || r == '\t' {
		return false
	}
	return unicode.Is(unicode.Cf, r) || unicode.Is(unicode.Cc, r)
}

// stripEmoji: 이모지는 주제의 일부로 허용하되 규칙 매칭 전에 제거합니다.
func stripEmoji(text string) string {
	if isASCIIOnly(text) || !gomoji.ContainsEmoji(text) {
		return text
	}
	return gomoji.RemoveEmojis(text)
}
