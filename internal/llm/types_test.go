package llm

import "testing"

func TestUsageAdd(t *testing.T) {
	total := Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}.Add(Usage{InputTokens: 3, OutputTokens: 2, TotalTokens: 5})
	if total.InputTokens != 13 || total.OutputTokens != 7 || total.TotalTokens != 20 {
		t.Fatalf("unexpected sum: %+v", total)
	}
}
