package models

// SearchMode selects which retrieval strategies run for a query.
type SearchMode int

const (
	// ModeComprehensive runs document, word, and sentence strategies together.
	ModeComprehensive SearchMode = iota
	// ModeWordLevel searches word sub-documents only.
	ModeWordLevel
	// ModeSentenceLevel searches sentence sub-documents only.
	ModeSentenceLevel
	// ModeDocumentLevel searches whole documents only.
	ModeDocumentLevel
	// ModeSemantic runs embedding-similarity search only.
	ModeSemantic
	// ModeHybrid runs document search plus word/sentence strategies when beneficial.
	ModeHybrid
)

// String returns a string representation of the search mode.
func (m SearchMode) String() string {
	switch m {
	case ModeComprehensive:
		return "comprehensive"
	case ModeWordLevel:
		return "word_level"
	case ModeSentenceLevel:
		return "sentence_level"
	case ModeDocumentLevel:
		return "document_level"
	case ModeSemantic:
		return "semantic"
	case ModeHybrid:
		return "hybrid"
	default:
		return "unknown"
	}
}

// SortKey selects the ordering of consolidated results.
type SortKey int

const (
	// SortByRelevance orders by descending combined score (default).
	SortByRelevance SortKey = iota
	// SortByDate orders by descending parsed document date.
	SortByDate
	// SortByFileName orders by ascending file name.
	SortByFileName
	// SortByFileSize orders by descending on-disk file size.
	SortByFileSize
	// SortByWordFrequency orders by descending metadata "frequency".
	SortByWordFrequency
	// SortBySentenceIndex orders by ascending metadata "sentence_index".
	SortBySentenceIndex
)

// String returns a string representation of the sort key.
func (k SortKey) String() string {
	switch k {
	case SortByRelevance:
		return "relevance"
	case SortByDate:
		return "date"
	case SortByFileName:
		return "file_name"
	case SortByFileSize:
		return "file_size"
	case SortByWordFrequency:
		return "word_frequency"
	case SortBySentenceIndex:
		return "sentence_index"
	default:
		return "unknown"
	}
}

// Query is a search request. Immutable once constructed; every pipeline
// stage reads it and none may modify it.
type Query struct {
	Text string `json:"query"`
	// Mode selects the retrieval strategies. Zero value is ModeComprehensive.
	Mode SearchMode `json:"mode,omitempty"`
	// AutoMode lets the optimal-mode detector pick Mode from the query text,
	// overriding whatever Mode holds.
	AutoMode bool    `json:"auto_mode,omitempty"`
	SortBy   SortKey `json:"sort_by,omitempty"`
	// FileTypeFilter keeps only results whose file extension matches (e.g. ".pdf").
	FileTypeFilter string `json:"file_type,omitempty"`
	// DateFrom and DateTo bound the document date, inclusive (ISO-ish strings).
	DateFrom string `json:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty"`
	// MinWordCount drops results whose stored content has fewer words.
	MinWordCount int `json:"min_word_count,omitempty"`
	// MaxResults caps the consolidated output. Zero means the default (50).
	MaxResults int `json:"max_results,omitempty"`
	// IncludeWordAnalysis attaches parsed word frequency/position metadata.
	IncludeWordAnalysis bool `json:"include_word_analysis,omitempty"`
	// IncludeSentenceContext attaches parsed sentence context metadata.
	IncludeSentenceContext bool `json:"include_sentence_context,omitempty"`
}

// DefaultMaxResults is the consolidation cap when Query.MaxResults is unset.
const DefaultMaxResults = 50

// Limit returns the effective result cap.
func (q *Query) Limit() int {
	if q.MaxResults <= 0 {
		return DefaultMaxResults
	}
	return q.MaxResults
}
