package ideas

import (
	"strings"
	"testing"
)

func TestPrompts(t *testing.T) {
	prompts, err := NewPrompts()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	system, err := prompts.System()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(system, "Sen bir SEO ve içerik uzmanısın.") {
		t.Fatalf("unexpected system prompt: %s", system)
	}

	user, err := prompts.User("uzay turizmi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(user, "Konu: uzay turizmi\n\nBu konuyla ilgili 5 adet blog yazısı başlığı üret.") {
		t.Fatalf("unexpected user prompt: %s", user)
	}
	if !strings.HasSuffix(user, `{ "ideas": [{ "title": "başlık", "description": "açıklama" }] }`) {
		t.Fatalf("unexpected format instruction: %s", user)
	}
}

func TestPromptsTopicVerbatim(t *testing.T) {
	prompts, err := NewPrompts()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	user, err := prompts.User("{x} <b>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(user, "Konu: {x} <b>\n") {
		t.Fatalf("topic not verbatim: %s", user)
	}
}

func TestTierFallbackMessage(t *testing.T) {
	if TierPrimary.FallbackMessage() != "GPT-4 API error" {
		t.Fatalf("unexpected primary fallback")
	}
	if TierSecondary.FallbackMessage() != "GPT Mini API error" {
		t.Fatalf("unexpected secondary fallback")
	}
}
