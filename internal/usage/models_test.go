package usage

import (
	"testing"
	"time"
)

func TestTotals(t *testing.T) {
	if (DailyUsage{InputTokens: 2, OutputTokens: 3}).TotalTokens() != 5 {
		t.Fatalf("unexpected daily total")
	}
	if (ModelUsage{InputTokens: 4, OutputTokens: 1}).TotalTokens() != 5 {
		t.Fatalf("unexpected model total")
	}
	if dayOf(time.Date(2026, 3, 7, 23, 0, 0, 0, time.UTC)) != "2026-03-07" {
		t.Fatalf("unexpected day format")
	}
}
