// Package analyze classifies search queries and extracts structured signals
// (identifiers, named entities, important words, fuzzy variants) that drive
// strategy selection and scoring.
package analyze

import (
	"regexp"
	"strings"
	"unicode"
)

// Identifier extraction patterns, applied in order. A query matching any of
// them carries a high-precision search term.
var identifierPatterns = []*regexp.Regexp{
	// Hex GUID-like runs, optionally hyphen-grouped.
	regexp.MustCompile(`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`),
	regexp.MustCompile(`\b[0-9a-fA-F]{8,}\b`),
	// Email addresses.
	regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
	// Phone numbers (3-3-4 digit groups).
	regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`),
	// Generic alphanumeric codes: >=6 chars mixing uppercase and digits.
	regexp.MustCompile(`\b(?:[A-Z]+\d|\d+[A-Z])[A-Z0-9]{4,}\b`),
	// Long digit runs.
	regexp.MustCompile(`\b\d{8,}\b`),
	regexp.MustCompile(`\b\d{6,}\b`),
	// Hyphenated code patterns (e.g. invoice-2024-ABCD99).
	regexp.MustCompile(`\b[A-Za-z0-9]+(?:-[A-Za-z0-9]+){2,}\b`),
}

// namedEntityPattern matches sequences of capitalized words.
var namedEntityPattern = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)

// stopwords dropped during important-word extraction. Capitalized tokens are
// kept even when stoplisted (proper nouns win).
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "about": true, "into": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"what": true, "where": true, "when": true, "which": true, "who": true,
	"how": true, "why": true, "does": true, "do": true, "did": true,
	"can": true, "could": true, "would": true, "should": true,
	"this": true, "that": true, "these": true, "those": true,
	"file": true, "files": true, "document": true, "documents": true,
	"find": true, "show": true, "get": true, "me": true, "all": true,
}

// Intent is the fine-grained query classification.
type Intent int

const (
	// IntentInformational is the default: a natural-language question.
	IntentInformational Intent = iota
	// IntentNavigational is a short query naming a specific entity.
	IntentNavigational
	// IntentExactIdentifier is a query carrying a GUID, code, email, phone
	// number, or long digit run.
	IntentExactIdentifier
)

// String returns a string representation of the intent.
func (i Intent) String() string {
	switch i {
	case IntentInformational:
		return "informational"
	case IntentNavigational:
		return "navigational"
	case IntentExactIdentifier:
		return "exact_identifier"
	default:
		return "unknown"
	}
}

// QueryAnalysis holds everything extracted from a raw query. Created fresh per
// query and never mutated afterwards.
type QueryAnalysis struct {
	Original string
	// Identifiers are high-precision terms (GUIDs, codes, emails, digits).
	Identifiers        []string
	HasExactIdentifier bool
	// NamedEntities are capitalized-word sequences.
	NamedEntities []string
	// ImportantWords are stopword-filtered tokens, first occurrence kept.
	ImportantWords []string
	// FuzzyVariants are case folds, plural toggles, and suffix strips of the
	// important words.
	FuzzyVariants []string
	// Intent is the fine classification; SearchClass is the coarse one. They
	// overlap deliberately: different call sites consume each, and unifying
	// them would change downstream behavior.
	Intent      Intent
	SearchClass SearchClass
	// Confidence belongs to the coarse classification, in [0,1].
	Confidence float64
}

// Analyzer extracts signals and classifies queries. Stateless and safe for
// concurrent use.
type Analyzer struct{}

// NewAnalyzer returns a new Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze parses a raw query. It never fails; empty or whitespace input
// yields a low-confidence informational classification.
func (a *Analyzer) Analyze(query string) *QueryAnalysis {
	analysis := &QueryAnalysis{
		Original:       query,
		Identifiers:    []string{},
		NamedEntities:  []string{},
		ImportantWords: []string{},
		FuzzyVariants:  []string{},
	}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		analysis.Intent = IntentInformational
		analysis.SearchClass = ClassNatural
		analysis.Confidence = 0.1
		return analysis
	}

	analysis.Identifiers = ExtractIdentifiers(trimmed)
	analysis.HasExactIdentifier = len(analysis.Identifiers) > 0
	analysis.NamedEntities = ExtractNamedEntities(trimmed)
	analysis.ImportantWords = ExtractImportantWords(trimmed)
	analysis.FuzzyVariants = GenerateFuzzyVariants(analysis.ImportantWords)

	analysis.SearchClass, analysis.Confidence = ClassifyCoarse(trimmed)
	analysis.Intent = ClassifyIntent(trimmed, analysis.Identifiers, analysis.NamedEntities)
	return analysis
}

// ExtractIdentifiers returns the deduplicated identifier-like terms in query,
// applying the patterns in order.
func ExtractIdentifiers(query string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, re := range identifierPatterns {
		for _, m := range re.FindAllString(query, -1) {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// ExtractNamedEntities returns capitalized-word sequences in query.
func ExtractNamedEntities(query string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range namedEntityPattern.FindAllString(query, -1) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// ExtractImportantWords tokenizes on whitespace, strips trailing punctuation,
// and drops short tokens and stopwords. Capitalized tokens survive the
// stoplist. First occurrence order is preserved.
func ExtractImportantWords(query string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tok := range strings.Fields(query) {
		tok = strings.TrimRightFunc(tok, func(r rune) bool {
			return unicode.IsPunct(r)
		})
		if len(tok) <= 2 {
			continue
		}
		capitalized := unicode.IsUpper(rune(tok[0]))
		if stopwords[strings.ToLower(tok)] && !capitalized {
			continue
		}
		key := strings.ToLower(tok)
		if !seen[key] {
			seen[key] = true
			out = append(out, tok)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// GenerateFuzzyVariants produces case folds, a plural/singular toggle for
// words longer than 4 characters, and common suffix strips.
func GenerateFuzzyVariants(words []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, w := range words {
		add(strings.ToLower(w))
		add(strings.ToUpper(w))
		if len(w) > 4 {
			lower := strings.ToLower(w)
			if strings.HasSuffix(lower, "s") {
				add(strings.TrimSuffix(lower, "s"))
			} else {
				add(lower + "s")
			}
			if strings.HasSuffix(lower, "ing") {
				add(strings.TrimSuffix(lower, "ing"))
			}
			if strings.HasSuffix(lower, "ed") {
				add(strings.TrimSuffix(lower, "ed"))
			}
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// ClassifyIntent is the fine classifier: identifier queries beat entity
// queries beat everything else.
func ClassifyIntent(query string, identifiers, entities []string) Intent {
	if len(identifiers) > 0 {
		return IntentExactIdentifier
	}
	if len(entities) > 0 && len(strings.Fields(query)) <= 6 {
		return IntentNavigational
	}
	return IntentInformational
}
