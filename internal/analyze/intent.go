package analyze

import (
	"regexp"
	"strings"
)

// SearchClass is the coarse query classification. It overlaps with Intent on
// purpose: the two classifiers feed different call sites (strategy routing vs.
// identifier-first scanning) and their scoring rules differ.
type SearchClass int

const (
	// ClassHybrid mixes keyword and semantic retrieval. Default on ties.
	ClassHybrid SearchClass = iota
	// ClassExactSearch favors identifier and keyword matching.
	ClassExactSearch
	// ClassNatural favors semantic retrieval for natural-language questions.
	ClassNatural
)

// String returns a string representation of the search class.
func (c SearchClass) String() string {
	switch c {
	case ClassHybrid:
		return "hybrid"
	case ClassExactSearch:
		return "exact"
	case ClassNatural:
		return "natural"
	default:
		return "unknown"
	}
}

// indicator is one scored classification signal.
type indicator struct {
	pattern *regexp.Regexp
	weight  int
}

// Exact-search indicators.
var exactIndicators = []indicator{
	{regexp.MustCompile(`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`), 3},
	{regexp.MustCompile(`\b(?:[A-Z]+\d|\d+[A-Z])[A-Z0-9]{4,}\b`), 2},
	{regexp.MustCompile(`(?i)\b(find|locate|which file)\b`), 1},
	{regexp.MustCompile(`(?i)\b(exact|specifically)\b`), 2},
}

// Natural-language indicators.
var naturalIndicators = []indicator{
	{regexp.MustCompile(`(?i)^\s*(what|where|when|who|why|how)\b`), 2},
	{regexp.MustCompile(`(?i)\b(tell me about|describe|summary|summarize)\b`), 2},
}

// Hybrid indicators.
var hybridIndicators = []indicator{
	{regexp.MustCompile(`(?i)\babout\s+[A-Z][a-z]+`), 2},
	{regexp.MustCompile(`\b[A-Z][a-z]+\s+[A-Z][a-z]+\b`), 1},
}

// Normalizing constants for coarse confidence.
const (
	exactNormalizer   = 5.0
	naturalNormalizer = 5.0
	hybridNormalizer  = 3.0
)

// ClassifyCoarse scores the three indicator buckets and returns the winning
// class with its normalized confidence. Ties and all-zero scores default to
// ClassHybrid.
func ClassifyCoarse(query string) (SearchClass, float64) {
	tokens := strings.Fields(query)

	exactScore := scoreIndicators(exactIndicators, query)
	naturalScore := scoreIndicators(naturalIndicators, query)
	if len(tokens) > 5 {
		naturalScore++
	}
	hybridScore := scoreIndicators(hybridIndicators, query)
	if len(tokens) >= 3 && len(tokens) <= 5 && !startsWithWhWord(query) {
		hybridScore++
	}

	switch {
	case exactScore > naturalScore && exactScore > hybridScore:
		return ClassExactSearch, clampConfidence(float64(exactScore) / exactNormalizer)
	case naturalScore > exactScore && naturalScore > hybridScore:
		return ClassNatural, clampConfidence(float64(naturalScore) / naturalNormalizer)
	default:
		return ClassHybrid, clampConfidence(float64(hybridScore) / hybridNormalizer)
	}
}

func scoreIndicators(inds []indicator, query string) int {
	score := 0
	for _, ind := range inds {
		if ind.pattern.MatchString(query) {
			score += ind.weight
		}
	}
	return score
}

var whWordStart = regexp.MustCompile(`(?i)^\s*(what|where|when|who|why|how|which)\b`)

func startsWithWhWord(query string) bool {
	return whWordStart.MatchString(query)
}

func clampConfidence(c float64) float64 {
	if c > 1.0 {
		return 1.0
	}
	if c < 0 {
		return 0
	}
	return c
}
