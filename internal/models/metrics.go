package models

import "time"

// StrategyTiming is the elapsed time and match count one strategy reports.
// Each strategy returns its own value; the executor merges them after the
// join, so there is no shared mutable metrics state across goroutines.
type StrategyTiming struct {
	Strategy string        `json:"strategy"`
	Elapsed  time.Duration `json:"elapsed"`
	Matches  int           `json:"matches"`
}

// SearchPerformanceMetrics is the merged per-query timing breakdown.
type SearchPerformanceMetrics struct {
	DocumentTime time.Duration `json:"document_time"`
	WordTime     time.Duration `json:"word_time"`
	SentenceTime time.Duration `json:"sentence_time"`
	SemanticTime time.Duration `json:"semantic_time"`
	TotalTime    time.Duration `json:"total_time"`

	DocumentMatches int `json:"document_matches"`
	WordMatches     int `json:"word_matches"`
	SentenceMatches int `json:"sentence_matches"`
	SemanticMatches int `json:"semantic_matches"`
}

// Merge folds a strategy's timing into the accumulator. Unknown strategy
// names contribute only to totals.
func (m *SearchPerformanceMetrics) Merge(t StrategyTiming) {
	switch t.Strategy {
	case "document":
		m.DocumentTime = t.Elapsed
		m.DocumentMatches = t.Matches
	case "word":
		m.WordTime = t.Elapsed
		m.WordMatches = t.Matches
	case "sentence":
		m.SentenceTime = t.Elapsed
		m.SentenceMatches = t.Matches
	case "semantic":
		m.SemanticTime = t.Elapsed
		m.SemanticMatches = t.Matches
	}
}

// TotalMatches returns the sum of per-strategy match counts.
func (m *SearchPerformanceMetrics) TotalMatches() int {
	return m.DocumentMatches + m.WordMatches + m.SentenceMatches + m.SemanticMatches
}
