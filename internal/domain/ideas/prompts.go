package ideas

import (
	"embed"
	"fmt"

	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/prompt"
)

//go:embed prompts/*.yml
var promptsFS embed.FS

const promptName = "ideas"

// Prompts 는 아이디어 생성 프롬프트 모음이다.
type Prompts struct {
	bundle *prompt.Bundle
}

// NewPrompts 는 내장 프롬프트를 로드한다.
func NewPrompts() (*Prompts, error) {
	bundle, err := prompt.LoadBundle(promptsFS, "prompts", promptName, "system", "user")
	if err != nil {
		return nil, fmt.Errorf("load ideas prompts: %w", err)
	}
	return &Prompts{bundle: bundle}, nil
}

// System 은 고정 시스템 프롬프트를 반환한다.
func (p *Prompts) System() (string, error) {
	return p.bundle.Text(promptName, "system")
}

// User 는 주제를 가공 없이 끼워 넣은 사용자 프롬프트를 반환한다.
func (p *Prompts) User(topic string) (string, error) {
	return p.bundle.Render(promptName, "user", map[string]string{"topic": topic})
}
