package answer

import (
	"strings"

	"github.com/sableworks/findex/pkg/utils"
)

// Quality scores a generated answer in [0,1]. Length, query-word coverage,
// and structural cues add; hedging and extreme lengths subtract.
func Quality(answer, query string) float64 {
	score := 0.0
	length := len(answer)
	lower := strings.ToLower(answer)

	if length > 50 && length < 1000 {
		score += 0.3
	}
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if strings.Contains(lower, w) {
			score += 0.4
			break
		}
	}
	if strings.ContainsAny(answer, ":-") || strings.Contains(answer, "•") {
		score += 0.2
	}
	if !strings.Contains(lower, "i cannot") && !strings.Contains(lower, "not available") {
		score += 0.3
	}
	if strings.Contains(lower, "guid") || strings.Contains(lower, "character") || strings.Contains(lower, "name") {
		score += 0.2
	}
	if length < 20 {
		score -= 0.3
	}
	if length > 1500 {
		score -= 0.2
	}
	if strings.Contains(lower, "based on the content") && length < 100 {
		score -= 0.4
	}
	return utils.Clamp01(score)
}
