package openai

import "context"

// ChatCompleter 는 chat completion 호출 인터페이스다.
// 테스트에서 mock 구현을 주입할 수 있도록 한다.
type ChatCompleter interface {
	ChatCompletion(ctx context.Context, credential string, req ChatRequest) (*ChatResponse, error)
}

// Client가 ChatCompleter 인터페이스를 구현하는지 컴파일 타임 확인
var _ ChatCompleter = (*Client)(nil)
