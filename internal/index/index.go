// Package index provides the lexical index boundary used by search: full-text
// query search, path-scoped search, and embedding-similarity search over
// indexed documents and their word/sentence sub-documents.
package index

import (
	"context"
	"time"

	"github.com/sableworks/findex/internal/models"
)

// Entry is a unit of indexed text. A source file produces one "document"
// entry plus optional "word" and "sentence" sub-entries that carry the
// doc_type, frequency, and sentence_index fields the level-aware strategies
// filter on.
type Entry struct {
	ID            string    `json:"id"`
	Path          string    `json:"path"`
	Name          string    `json:"name"`
	Content       string    `json:"content"`
	DocType       string    `json:"doc_type"`
	Frequency     int       `json:"frequency"`
	SentenceIndex int       `json:"sentence_index"`
	Modified      time.Time `json:"modified"`
}

// Provider defines the index operations the search layer depends on. All
// search methods return an empty slice, not an error, when the index holds
// nothing relevant.
type Provider interface {
	Index(ctx context.Context, entry *Entry) error
	Delete(ctx context.Context, id string) error
	DeleteByPath(ctx context.Context, path string) error

	Search(ctx context.Context, query string) ([]*models.SearchResult, error)
	SearchInPaths(ctx context.Context, query string, paths []string) ([]*models.SearchResult, error)
	SemanticSearch(ctx context.Context, query string, paths []string, maxResults int) ([]*models.SearchResult, error)

	DocCount() (uint64, error)
	Close() error
}
