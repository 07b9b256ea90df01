package guard

import (
	"errors"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/cache"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/config"
)

// InjectionGuard: 주제 문자열에 섞인 프롬프트 인젝션을 점수화하는 가드입니다.
type InjectionGuard struct {
	cfg    *config.Config
	logger *slog.Logger
	packs  []compiledPack
	cache  *cache.TTLCache[string, Evaluation]
	group  singleflight.Group
}

// NewGuard: 입력 검증 가드를 생성합니다.
// RulepacksDir 가 비어 있으면 바이너리에 내장된 기본 룰팩을 사용합니다.
func NewGuard(cfg *config.Config, logger *slog.Logger) (*InjectionGuard, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	cacheTTL := time.Duration(cfg.Guard.CacheTTLSeconds) * time.Second
	guard := &InjectionGuard{
		cfg:    cfg,
		logger: logger,
		cache:  cache.NewTTLCache[string, Evaluation](cfg.Guard.CacheMaxSize, cacheTTL),
	}

	if cfg.Guard.Enabled {
		guard.loadRulepacks()
	}

	return guard, nil
}

// Evaluate: 입력 문자열을 평가합니다. 같은 입력의 동시 평가는 한 번만 수행합니다.
func (g *InjectionGuard) Evaluate(input string) Evaluation {
	if g == nil || g.cfg == nil || !g.cfg.Guard.Enabled {
		return Evaluation{Score: 0, Hits: nil, Threshold: math.Inf(1)}
	}

	if cached, ok := g.cache.Get(input); ok {
		return cached
	}

	value, _, _ := g.group.Do(input, func() (any, error) {
		result := g.evaluateInternal(input)
		g.cache.Set(input, result)
		return result, nil
	})

	if evaluation, ok := value.(Evaluation); ok {
		return evaluation
	}
	return Evaluation{Score: 0, Hits: nil, Threshold: g.threshold()}
}

// EnsureSafe: 위험 입력을 *BlockedError 로 반환합니다.
func (g *InjectionGuard) EnsureSafe(input string) error {
	evaluation := g.Evaluate(input)
	if evaluation.Malicious() {
		return &BlockedError{Score: evaluation.Score, Threshold: evaluation.Threshold, Hits: evaluation.Hits}
	}
	return nil
}

// PackCount: 로드된 룰팩 수를 반환합니다.
func (g *InjectionGuard) PackCount() int {
	if g == nil {
		return 0
	}
	return len(g.packs)
}

func (g *InjectionGuard) loadRulepacks() {
	var (
		fsys fs.FS = embeddedRulepacks
		dir        = "rulepacks"
	)
	if custom := strings.TrimSpace(g.cfg.Guard.RulepacksDir); custom != "" {
		fsys = os.DirFS(custom)
		dir = "."
	}

	g.packs = loadRulepacks(fsys, dir, g.logger)
	if g.logger != nil {
		g.logger.Info("guard_ready", "packs", len(g.packs), "threshold", g.threshold())
	}
}

func (g *InjectionGuard) threshold() float64 {
	if g.cfg != nil && g.cfg.Guard.Threshold > 0 {
		return g.cfg.Guard.Threshold
	}

	maxThreshold := 0.0
	for _, pack := range g.packs {
		if pack.Threshold > maxThreshold {
			maxThreshold = pack.Threshold
		}
	}
	if maxThreshold > 0 {
		return maxThreshold
	}
	return defaultThreshold
}

func (g *InjectionGuard) evaluateInternal(input string) Evaluation {
	threshold := g.threshold()

	if containsSuspiciousBase64(input) {
		if g.logger != nil {
			g.logger.Warn("guard_base64_payload_blocked", "input", trimForLog(input))
		}
		return Evaluation{
			Score:     threshold,
			Hits:      []Match{{ID: "base64_payload", Weight: threshold}},
			Threshold: threshold,
		}
	}

	// 이모지 제거 후 homoglyph + NFKC 정규화
	normalized := normalizeText(stripEmoji(input))
	score, hits := g.evaluatePacks(normalized)
	if score >= threshold && g.logger != nil {
		g.logger.Warn("guard_topic_blocked", "score", score, "hits", len(hits), "input", trimForLog(input))
	}
	return Evaluation{Score: score, Hits: hits, Threshold: threshold}
}

func (g *InjectionGuard) evaluatePacks(text string) (float64, []Match) {
	total := 0.0
	hits := make([]Match, 0)
	textLower := strings.ToLower(text)

	for _, pack := range g.packs {
		for _, rule := range pack.RegexRules {
			if rule.Pattern.MatchString(text) {
				total += rule.Weight
				hits = append(hits, Match{ID: rule.ID, Weight: rule.Weight})
			}
		}

		if pack.PhraseMatcher == nil {
			continue
		}
		for _, index := range pack.PhraseMatcher.MatchThreadSafe([]byte(textLower)) {
			if index < 0 || index >= len(pack.Phrases) {
				continue
			}
			phrase := pack.Phrases[index]
			weight := pack.PhraseWeights[phrase]
			if weight <= 0 {
				continue
			}
			total += weight
			hits = append(hits, Match{ID: "phrase:" + phrase, Weight: weight})
		}
	}

	return total, hits
}

func trimForLog(value string) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if len(runes) <= 50 {
		return value
	}
	return string(runes[:50])
}
