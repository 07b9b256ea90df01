package prompt

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Prompt: 프롬프트 파일 하나의 필드(system, user 등) 모음입니다.
type Prompt map[string]string

// LoadFile: YAML 프롬프트 파일 하나를 읽습니다.
// 필드 값은 문자열이어야 하며, required 필드가 없거나 비어 있으면 실패합니다.
// system 필드는 템플릿 변수를 가질 수 없습니다.
func LoadFile(fsys fs.FS, filePath string, required ...string) (Prompt, error) {
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("read prompt file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse prompt yaml %s: %w", filePath, err)
	}

	loaded := make(Prompt, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			loaded[key] = ""
		case string:
			loaded[key] = v
		default:
			return nil, fmt.Errorf("%s: field %q must be text, got %T", filePath, key, value)
		}
	}

	for _, key := range required {
		if strings.TrimSpace(loaded[key]) == "" {
			return nil, fmt.Errorf("%s: required field %q is missing or empty", filePath, key)
		}
	}

	if system := loaded["system"]; strings.TrimSpace(system) != "" {
		if err := ValidateSystemStatic(filePath, system); err != nil {
			return nil, err
		}
	}
	return loaded, nil
}

// LoadDir: dir 의 *.yml, *.yaml 파일을 확장자를 뗀 이름으로 모읍니다.
// 같은 이름이 두 확장자로 모두 있으면 어느 쪽을 쓸지 모호하므로 실패합니다.
func LoadDir(fsys fs.FS, dir string, required ...string) (map[string]Prompt, error) {
	var paths []string
	for _, pattern := range []string{"*.yml", "*.yaml"} {
		matched, err := fs.Glob(fsys, path.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob prompt dir: %w", err)
		}
		paths = append(paths, matched...)
	}
	sort.Strings(paths)

	prompts := make(map[string]Prompt, len(paths))
	for _, filePath := range paths {
		name := strings.TrimSuffix(path.Base(filePath), path.Ext(filePath))
		if _, dup := prompts[name]; dup {
			return nil, fmt.Errorf("duplicate prompt %q in %s", name, dir)
		}
		loaded, err := LoadFile(fsys, filePath, required...)
		if err != nil {
			return nil, err
		}
		prompts[name] = loaded
	}
	return prompts, nil
}
