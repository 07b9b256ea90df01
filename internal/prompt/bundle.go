package prompt

import (
	"fmt"
	"io/fs"
)

// Bundle: 한 도메인의 프롬프트 모음과 에러 메시지 라벨을 함께 관리합니다.
type Bundle struct {
	label   string
	prompts map[string]Prompt
}

// LoadBundle: fs 내 dir 디렉터리의 YAML 프롬프트들을 로드하여 Bundle로 반환합니다.
// 모든 파일은 required 필드를 가져야 합니다.
func LoadBundle(fsys fs.FS, dir string, label string, required ...string) (*Bundle, error) {
	loaded, err := LoadDir(fsys, dir, required...)
	if err != nil {
		return nil, fmt.Errorf("load %s prompts: %w", label, err)
	}
	if len(loaded) == 0 {
		return nil, fmt.Errorf("%s prompts not found in %s", label, dir)
	}
	return &Bundle{label: label, prompts: loaded}, nil
}

// Prompt: 이름으로 프롬프트를 조회합니다.
func (b *Bundle) Prompt(name string) (Prompt, error) {
	if b == nil || b.prompts == nil {
		return nil, fmt.Errorf("prompts not initialized")
	}
	found, ok := b.prompts[name]
	if !ok {
		return nil, fmt.Errorf("%s prompt not found: %s", b.label, name)
	}
	return found, nil
}

// Text: name 프롬프트의 key 필드를 그대로 반환합니다.
func (b *Bundle) Text(name string, key string) (string, error) {
	found, err := b.Prompt(name)
	if err != nil {
		return "", err
	}
	value, ok := found[key]
	if !ok {
		return "", fmt.Errorf("prompt field missing: %s.%s", name, key)
	}
	return value, nil
}

// Render: name 프롬프트의 key 필드를 values 로 치환해 반환합니다.
func (b *Bundle) Render(name string, key string, values map[string]string) (string, error) {
	template, err := b.Text(name, key)
	if err != nil {
		return "", err
	}
	formatted, err := FormatTemplate(template, values)
	if err != nil {
		return "", fmt.Errorf("format %s.%s: %w", name, key, err)
	}
	return formatted, nil
}
