// Package indexer indexes documents into storage, the lexical index (with
// word and sentence sub-documents), and the vector index.
package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sableworks/findex/internal/config"
	"github.com/sableworks/findex/internal/embedding"
	"github.com/sableworks/findex/internal/extract"
	"github.com/sableworks/findex/internal/fileid"
	"github.com/sableworks/findex/internal/index"
	"github.com/sableworks/findex/internal/models"
	"github.com/sableworks/findex/internal/storage"
	"github.com/sableworks/findex/internal/vector"
)

// maxSentenceEntries caps sentence sub-documents per file.
const maxSentenceEntries = 1000

// Indexer indexes documents into storage, the lexical index, and the vector
// index.
type Indexer struct {
	storage     storage.Storage
	embedder    embedding.Embedder
	vectorIndex vector.VectorIndex
	provider    index.Provider
	chunker     *Chunker
	config      *config.SearchConfig
	extractor   *extract.Extractor
	logger      *zap.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output (file indexed, document deleted,
// etc.).
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// NewIndexer creates an indexer with the given dependencies. extractor may be
// nil; when nil, IndexFile treats all files as plain text.
func NewIndexer(
	storage storage.Storage,
	embedder embedding.Embedder,
	vectorIndex vector.VectorIndex,
	provider index.Provider,
	cfg *config.SearchConfig,
	extractor *extract.Extractor,
	opts ...IndexerOption,
) *Indexer {
	idx := &Indexer{
		storage:     storage,
		embedder:    embedder,
		vectorIndex: vectorIndex,
		provider:    provider,
		chunker:     NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		config:      cfg,
		extractor:   extractor,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// IndexDocument indexes a document: store, chunk, embed, index vectors, then
// the document entry and its word/sentence sub-entries in the lexical index.
func (idx *Indexer) IndexDocument(ctx context.Context, input *models.DocumentInput) error {
	if input.ID == "" {
		input.ID = uuid.New().String()
	}
	doc := &models.Document{
		ID:       input.ID,
		Title:    input.Title,
		Content:  Preprocess(input.Content),
		Metadata: input.Metadata,
	}
	if err := idx.storage.UpsertDocument(ctx, doc); err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}
	chunks := idx.chunker.Chunk(doc.ID, doc.Content)
	if len(chunks) == 0 {
		chunks = []*models.DocumentChunk{{
			ID:         doc.ID + "_0",
			DocumentID: doc.ID,
			Content:    doc.Content,
			ChunkIndex: 0,
		}}
	}
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Content
	}
	embeddings, err := idx.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}
	if err := idx.storage.BatchCreateChunks(ctx, chunks); err != nil {
		return fmt.Errorf("failed to store chunks: %w", err)
	}
	chunkIDs := make([]string, len(chunks))
	for i, ch := range chunks {
		chunkIDs[i] = ch.ID
	}
	if err := idx.vectorIndex.Add(ctx, chunkIDs, embeddings); err != nil {
		return fmt.Errorf("failed to index vectors: %w", err)
	}

	sourcePath, _ := doc.Metadata[metaKeySourcePath].(string)
	modified := sourceModTime(doc.Metadata)

	// Normalize the name for lexical search: underscores as spaces so
	// "q3_revenue_report.pdf" is searchable as "q3 revenue report" (the
	// standard analyzer does not split on underscore).
	entry := &index.Entry{
		ID:       doc.ID,
		Path:     sourcePath,
		Name:     normalizeNameForSearch(doc.Title),
		Content:  doc.Content,
		DocType:  "document",
		Modified: modified,
	}
	if err := idx.provider.Index(ctx, entry); err != nil {
		return fmt.Errorf("failed to index document entry: %w", err)
	}

	if idx.config.IndexWordLevelOrDefault() {
		if err := idx.indexWordEntries(ctx, doc, sourcePath, modified); err != nil {
			return err
		}
	}
	if idx.config.IndexSentenceLevelOrDefault() {
		if err := idx.indexSentenceEntries(ctx, doc, sourcePath, modified); err != nil {
			return err
		}
	}
	return nil
}

// indexWordEntries indexes one sub-entry per distinct word carrying its
// frequency and labeled analysis content.
func (idx *Indexer) indexWordEntries(ctx context.Context, doc *models.Document, sourcePath string, modified time.Time) error {
	stats := collectWordStats(doc.Content, idx.config.MaxWordEntries)
	for _, st := range stats {
		entry := &index.Entry{
			ID:        doc.ID + "_w_" + st.Word,
			Path:      sourcePath,
			Name:      doc.Title,
			Content:   labeledWordContent(st),
			DocType:   "word",
			Frequency: st.Frequency,
			Modified:  modified,
		}
		if err := idx.provider.Index(ctx, entry); err != nil {
			return fmt.Errorf("failed to index word entry %q: %w", st.Word, err)
		}
	}
	if idx.logger != nil {
		idx.logger.Debug("indexed word entries",
			zap.String("doc_id", doc.ID), zap.Int("count", len(stats)))
	}
	return nil
}

// indexSentenceEntries indexes one sub-entry per sentence with its neighbor
// context.
func (idx *Indexer) indexSentenceEntries(ctx context.Context, doc *models.Document, sourcePath string, modified time.Time) error {
	sentences := splitSentences(doc.Content)
	if len(sentences) > maxSentenceEntries {
		sentences = sentences[:maxSentenceEntries]
	}
	for i := range sentences {
		entry := &index.Entry{
			ID:            doc.ID + "_s_" + strconv.Itoa(i+1),
			Path:          sourcePath,
			Name:          doc.Title,
			Content:       labeledSentenceContent(sentences, i, doc.Title),
			DocType:       "sentence",
			SentenceIndex: i + 1,
			Modified:      modified,
		}
		if err := idx.provider.Index(ctx, entry); err != nil {
			return fmt.Errorf("failed to index sentence entry %d: %w", i+1, err)
		}
	}
	if idx.logger != nil {
		idx.logger.Debug("indexed sentence entries",
			zap.String("doc_id", doc.ID), zap.Int("count", len(sentences)))
	}
	return nil
}

// normalizeNameForSearch returns the name with underscores replaced by spaces
// so multi-word queries match filenames like "q3_revenue_report.pdf".
func normalizeNameForSearch(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

const (
	metaKeySourcePath  = "source_path"
	metaKeySourceMtime = "source_mtime"
	metaKeySourceSize  = "source_size"
)

// IndexFile reads a file from path and indexes it. The document ID is derived
// from the absolute path so re-indexing updates the same document. If
// allowedExts is non-nil and non-empty, the file's extension must be in the
// list (case-insensitive). Skips indexing if the file is already indexed with
// the same mtime and size (incremental sync).
func (idx *Indexer) IndexFile(ctx context.Context, path string, allowedExts []string) error {
	if idx.logger != nil {
		idx.logger.Debug("indexer indexing file", zap.String("path", path))
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(absPath))
	if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
		return fmt.Errorf("extension %q not in allowed list", ext)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", absPath)
	}
	docID := fileid.FileDocID(absPath)
	if skip, err := idx.shouldSkipFile(ctx, absPath, docID, info); err != nil {
		return err
	} else if skip {
		if idx.logger != nil {
			idx.logger.Debug("indexer skipping unchanged file", zap.String("path", absPath))
		}
		return nil
	}
	text, err := idx.extractContent(absPath)
	if err != nil {
		return fmt.Errorf("extract content: %w", err)
	}
	_ = idx.DeleteDocument(ctx, docID)
	input := &models.DocumentInput{
		ID:      docID,
		Title:   filepath.Base(absPath),
		Content: text,
		Metadata: map[string]interface{}{
			metaKeySourcePath:  absPath,
			metaKeySourceMtime: info.ModTime().UnixNano(),
			metaKeySourceSize:  info.Size(),
		},
	}
	if err := idx.IndexDocument(ctx, input); err != nil {
		return err
	}
	if idx.logger != nil {
		idx.logger.Debug("indexer file indexed", zap.String("path", absPath), zap.String("doc_id", docID))
	}
	return nil
}

// shouldSkipFile returns true if the file is already indexed with the same
// mtime and size.
func (idx *Indexer) shouldSkipFile(ctx context.Context, absPath, docID string, info os.FileInfo) (bool, error) {
	doc, err := idx.storage.GetDocument(ctx, docID)
	if err != nil {
		return false, nil
	}
	if doc.Metadata == nil {
		return false, nil
	}
	if doc.Metadata[metaKeySourcePath] != absPath {
		return false, nil
	}
	wantMtime := info.ModTime().UnixNano()
	wantSize := info.Size()
	if metadataInt64(doc.Metadata, metaKeySourceMtime) != wantMtime || metadataInt64(doc.Metadata, metaKeySourceSize) != wantSize {
		return false, nil
	}
	return true, nil
}

func metadataInt64(m map[string]interface{}, key string) int64 {
	v, ok := m[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case string:
		x, _ := strconv.ParseInt(n, 10, 64)
		return x
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func sourceModTime(metadata map[string]interface{}) time.Time {
	if nanos := metadataInt64(metadata, metaKeySourceMtime); nanos > 0 {
		return time.Unix(0, nanos)
	}
	return time.Now()
}

// IndexDirectory walks dir recursively and indexes each regular file whose
// extension is in allowedExts (if non-nil and non-empty; otherwise all
// files). Returns the number of files indexed and the first error
// encountered, if any.
func (idx *Indexer) IndexDirectory(ctx context.Context, dir string, allowedExts []string) (n int, err error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
			return nil
		}
		// Resolve symlinks so we only index regular files
		finfo, statErr := os.Stat(path)
		if statErr != nil {
			return nil
		}
		if !finfo.Mode().IsRegular() {
			return nil
		}
		if indexErr := idx.IndexFile(ctx, path, allowedExts); indexErr != nil {
			return indexErr
		}
		n++
		return nil
	})
	return n, err
}

func (idx *Indexer) extractContent(path string) (string, error) {
	if idx.extractor != nil {
		return idx.extractor.Extract(path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}

// DeleteDocument removes a document, its sub-entries, chunks, and vectors.
func (idx *Indexer) DeleteDocument(ctx context.Context, id string) error {
	if idx.logger != nil {
		idx.logger.Debug("indexer deleting document", zap.String("id", id))
	}
	if doc, err := idx.storage.GetDocument(ctx, id); err == nil {
		if sourcePath, ok := doc.Metadata[metaKeySourcePath].(string); ok && sourcePath != "" {
			if err := idx.provider.DeleteByPath(ctx, sourcePath); err != nil {
				return fmt.Errorf("failed to delete index entries: %w", err)
			}
		}
	}
	if err := idx.provider.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document entry: %w", err)
	}
	chunks, err := idx.storage.GetChunksByDocumentID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get chunks: %w", err)
	}
	chunkIDs := make([]string, len(chunks))
	for i, ch := range chunks {
		chunkIDs[i] = ch.ID
	}
	if err := idx.vectorIndex.Remove(ctx, chunkIDs); err != nil {
		return fmt.Errorf("failed to delete from vector index: %w", err)
	}
	if err := idx.storage.DeleteChunksByDocumentID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	if err := idx.storage.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}
