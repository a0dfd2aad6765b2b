// Package models defines core data structures for queries, per-strategy
// results, and consolidated output.
package models

// Metadata keys recognized across the pipeline. The Metadata map is open,
// but these are the keys components read and write.
const (
	// MetaDocType tags an indexed unit as "document", "word", or "sentence".
	// Absent means "document".
	MetaDocType = "doc_type"
	// MetaFrequency is the occurrence count on word sub-documents.
	MetaFrequency = "frequency"
	// MetaSentenceIndex is the ordinal of a sentence within its file.
	MetaSentenceIndex = "sentence_index"
	// MetaSearchLevels records which levels matched after consolidation
	// (comma-joined, e.g. "Document-level, Word-level").
	MetaSearchLevels = "SearchLevels"
	// MetaTotalMatches is the number of per-strategy results merged into one
	// consolidated result.
	MetaTotalMatches = "TotalMatches"
	// MetaWordAnalysis carries parsed word analysis when requested.
	MetaWordAnalysis = "WordAnalysis"
	// MetaSentenceContext carries parsed sentence context when requested.
	MetaSentenceContext = "SentenceContext"
)

// Match type tags carried on SearchResult.MatchType.
const (
	MatchExact           = "exact_match"
	MatchExactIdentifier = "exact_identifier"
	MatchPartialName     = "partial_name"
	MatchKeyword         = "keyword_match"
	MatchFuzzy           = "fuzzy_match"
	MatchSemantic        = "semantic"
	MatchHybrid          = "hybrid"
)

// SearchResult is a single per-strategy hit, one per (file, strategy) pair
// before fusion. FilePath is the identity key at every later stage.
type SearchResult struct {
	FileName string `json:"file_name"`
	FilePath string `json:"file_path"`
	Content  string `json:"content,omitempty"`
	// Score is strategy-local; range conventions vary by strategy and are
	// normalized during fusion.
	Score    float64  `json:"score"`
	Snippets []string `json:"snippets,omitempty"`
	// ModifiedDate is an ISO-ish date string ("2006-01-02T15:04:05Z07:00" or
	// "2006-01-02"); unparsable values sort as earliest.
	ModifiedDate string            `json:"modified_date,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	MatchType    string            `json:"match_type,omitempty"`
	// EntityMatches lists named entities from the query found in this file.
	EntityMatches []string `json:"entity_matches,omitempty"`
	// SemanticSimilarity is the cosine similarity when set by semantic search.
	SemanticSimilarity float64 `json:"semantic_similarity,omitempty"`
	// Confidence is an optional strategy confidence in [0,1].
	Confidence float64 `json:"confidence,omitempty"`
}

// DocType returns the doc_type metadata tag, or "document" when absent.
func (r *SearchResult) DocType() string {
	if r.Metadata == nil {
		return "document"
	}
	if t, ok := r.Metadata[MetaDocType]; ok && t != "" {
		return t
	}
	return "document"
}

// ConsolidatedResult is the terminal, externally visible unit: one per unique
// file path, carrying the best member's display fields and the group maximum
// score.
type ConsolidatedResult struct {
	FileName      string            `json:"file_name"`
	FilePath      string            `json:"file_path"`
	Content       string            `json:"content,omitempty"`
	Score         float64           `json:"score"`
	Snippets      []string          `json:"snippets,omitempty"`
	ModifiedDate  string            `json:"modified_date,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	MatchType     string            `json:"match_type,omitempty"`
	EntityMatches []string          `json:"entity_matches,omitempty"`
}

// SearchResponse is the caller-facing result of a search.
type SearchResponse struct {
	Results []*ConsolidatedResult `json:"results"`
	Total   int                   `json:"total"`
	Query   string                `json:"query"`
	// Status is informational; "ok" normally, or an explanation for empty
	// result sets (e.g. an empty query).
	Status  string                    `json:"status,omitempty"`
	Metrics *SearchPerformanceMetrics `json:"metrics,omitempty"`
}

// RelevantFile summarizes one ranked candidate in an answer's metadata.
type RelevantFile struct {
	FileName  string  `json:"file_name"`
	Score     float64 `json:"score"`
	MatchType string  `json:"match_type,omitempty"`
}

// AnswerResult is the caller-facing result of a question, with search
// metadata alongside the generated answer.
type AnswerResult struct {
	Answer        string          `json:"answer"`
	SearchTypes   []string        `json:"search_types,omitempty"`
	ResultCount   int             `json:"result_count"`
	AverageScore  float64         `json:"average_score"`
	TopScore      float64         `json:"top_score"`
	RelevantFiles []*RelevantFile `json:"relevant_files,omitempty"`
	// GenerateCalls is how many model invocations the controller spent.
	GenerateCalls int                       `json:"generate_calls"`
	Metrics       *SearchPerformanceMetrics `json:"metrics,omitempty"`
}
