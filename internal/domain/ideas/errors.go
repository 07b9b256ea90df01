package ideas

import (
	"errors"
	"fmt"
)

const parseFailurePrefix = "Failed to parse API response: "

var (
	// ErrEmptyResponse 는 응답 본문이 비었을 때의 오류다.
	ErrEmptyResponse = errors.New("Empty API response")
	// ErrMissingIdeas 는 ideas 배열이 없거나 비었을 때의 오류다.
	ErrMissingIdeas = errors.New("Invalid response format - missing ideas array")
	// ErrInvalidIdea 는 title/description 이 빠진 항목이 있을 때의 오류다.
	ErrInvalidIdea = errors.New("invalid idea format")
	// ErrMalformedJSON 은 본문이 JSON 이 아닐 때의 오류다.
	ErrMalformedJSON = errors.New("malformed json")
)

// ErrorKind 는 생성 실패 분류다.
type ErrorKind string

const (
	KindMissingCredential ErrorKind = "missing_credential"
	KindBlockedInput      ErrorKind = "blocked_input"
	KindProvider          ErrorKind = "provider"
	KindTransport         ErrorKind = "transport"
	KindEmptyResponse     ErrorKind = "empty_response"
	KindParse             ErrorKind = "parse"
)

// GenerationError 는 아이디어 생성 실패 한 건이다. Message 가 사용자에게 보이는 문구다.
type GenerationError struct {
	Kind    ErrorKind
	Tier    Tier
	Message string
	Err     error
}

// Error 는 사람이 읽을 수 있는 메시지를 반환한다.
func (e *GenerationError) Error() string {
	return e.Message
}

// Unwrap 은 원인 오류를 반환한다.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IdeaFormatError 는 index 번째 항목에 필수 필드가 없다는 오류다.
type IdeaFormatError struct {
	Index int
}

func (e *IdeaFormatError) Error() string {
	return fmt.Sprintf("Invalid idea format at index %d - missing required fields", e.Index)
}

// Is 는 ErrInvalidIdea 와 비교할 수 있게 한다.
func (e *IdeaFormatError) Is(target error) bool {
	return target == ErrInvalidIdea
}

func newParseError(cause error) *GenerationError {
	return &GenerationError{
		Kind:    KindParse,
		Message: parseFailurePrefix + cause.Error(),
		Err:     cause,
	}
}
