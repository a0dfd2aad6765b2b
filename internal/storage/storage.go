// Package storage persists documents and their embedding chunks.
package storage

import (
	"context"

	"github.com/sableworks/findex/internal/models"
)

// Storage is the persistence surface the indexer and the semantic search path
// depend on: whole documents keyed by ID, the chunks their embeddings were
// computed from, and corpus counts for the status endpoint.
type Storage interface {
	// UpsertDocument inserts a document or replaces it when the ID exists.
	// Re-indexing a file keeps the same ID, so replace is the common case.
	UpsertDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	DeleteDocument(ctx context.Context, id string) error

	BatchCreateChunks(ctx context.Context, chunks []*models.DocumentChunk) error
	GetChunk(ctx context.Context, id string) (*models.DocumentChunk, error)
	GetChunksByDocumentID(ctx context.Context, docID string) ([]*models.DocumentChunk, error)
	DeleteChunksByDocumentID(ctx context.Context, docID string) error

	CountDocuments(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)

	Close() error
}
