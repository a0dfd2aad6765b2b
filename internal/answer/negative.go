// Package answer turns ranked document candidates into a single generated
// answer under a strict model-call budget, filtering out hedge/refusal
// responses and terminating as soon as a good enough answer appears.
package answer

import (
	"regexp"
	"strings"
)

// negativePhrases are hedge/refusal substrings that disqualify a generated
// answer. Matching is case-insensitive.
var negativePhrases = []string{
	"information is not available",
	"the information is not available in the document",
	"i cannot find",
	"i can't find",
	"cannot find any",
	"could not find",
	"couldn't find",
	"does not contain",
	"doesn't contain",
	"does not include",
	"doesn't include",
	"does not mention",
	"doesn't mention",
	"no information about",
	"no information on",
	"no information available",
	"no mention of",
	"no reference to",
	"no relevant information",
	"not mentioned in",
	"not found in the",
	"not present in the",
	"not referenced in",
	"not specified in",
	"not provided in",
	"not included in",
	"unable to determine",
	"unable to find",
	"unable to locate",
	"unable to answer",
	"unable to provide",
	"i'm sorry, but",
	"i am sorry, but",
	"i apologize, but",
	"i don't have",
	"i do not have",
	"i don't know",
	"i do not know",
	"there is no",
	"there are no",
	"there isn't any",
	"this document does not",
	"the document does not",
	"the text does not",
	"the content does not",
	"cannot be determined",
	"cannot be found",
	"insufficient information",
}

// formalNegation matches "<entity> does not appear" style statements.
var formalNegation = regexp.MustCompile(`(?i)\b[\w'-]+(?:\s+[\w'-]+){0,3}\s+does\s+not\s+appear\b`)

// subjectNegation matches "(name|term|...) ... (does not|don't) ...
// (appear|exist|found|mentioned|present)" statements.
var subjectNegation = regexp.MustCompile(
	`(?i)\b(name|term|word|entity|person|item)\b.*\b(does\s+not|do\s+not|doesn't|don't)\b.*\b(appear|exist|found|mentioned|present)\b`)

// IsNegative reports whether a generated answer is a non-answer: empty,
// hedging, or a formal statement that the subject is absent.
func IsNegative(answer string) bool {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return true
	}
	lower := strings.ToLower(trimmed)

	for _, phrase := range negativePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	if formalNegation.MatchString(trimmed) || subjectNegation.MatchString(trimmed) {
		return true
	}
	if len(trimmed) < 20 {
		for _, w := range []string{"no", "not", "cannot", "unable"} {
			if strings.Contains(lower, w) {
				return true
			}
		}
	}
	if strings.HasPrefix(lower, "based on the content") && len(trimmed) < 50 {
		return true
	}
	return false
}
