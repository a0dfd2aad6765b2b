package analyze

import (
	"regexp"
	"strings"

	"github.com/sableworks/findex/internal/models"
)

// Patterns the mode detector and the level-benefit predicates share.
var (
	frequencyPattern = regexp.MustCompile(`(?i)\b(frequency|frequencies|occurrence|occurrences|how many times|count of)\b`)
	sentencePattern  = regexp.MustCompile(`(?i)\b(sentence|context|explain|what does|meaning of)\b`)
	semanticPattern  = regexp.MustCompile(`(?i)\b(similar to|related to|like|about)\b`)
	contextPattern   = regexp.MustCompile(`(?i)\b(context|explain|what|where|when|who|why|how)\b`)
)

// DetectOptimalMode picks the retrieval mode for a query. Checks run in the
// stated order and the first match wins.
func DetectOptimalMode(query string) models.SearchMode {
	tokens := strings.Fields(query)
	switch {
	case len(tokens) == 1 || frequencyPattern.MatchString(query):
		return models.ModeWordLevel
	case strings.ContainsAny(query, `"'`) || sentencePattern.MatchString(query) ||
		(len(tokens) >= 3 && len(tokens) <= 8):
		return models.ModeSentenceLevel
	case semanticPattern.MatchString(query) || len(tokens) > 8:
		return models.ModeSemantic
	case len(tokens) > 2:
		return models.ModeHybrid
	default:
		return models.ModeComprehensive
	}
}

// WordLevelBeneficial reports whether a word-level pass adds value: single
// tokens and frequency/occurrence questions.
func WordLevelBeneficial(query string) bool {
	return len(strings.Fields(query)) == 1 || frequencyPattern.MatchString(query)
}

// SentenceLevelBeneficial reports whether a sentence-level pass adds value:
// multi-token queries, quoted phrases, and context/wh-word questions.
func SentenceLevelBeneficial(query string) bool {
	if strings.ContainsAny(query, `"'`) {
		return true
	}
	if contextPattern.MatchString(query) {
		return true
	}
	return len(strings.Fields(query)) > 1
}
