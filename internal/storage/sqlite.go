package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sableworks/findex/internal/models"
)

// File provenance keys the indexer writes into Document.Metadata. They are
// stored as dedicated columns rather than inside the metadata JSON: the
// skip-unchanged check compares mtime and size on every sync pass, and
// source_path is the identity key the rest of the pipeline groups by.
const (
	metaSourcePath  = "source_path"
	metaSourceMtime = "source_mtime"
	metaSourceSize  = "source_size"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do not
// exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		title TEXT,
		content TEXT NOT NULL,
		source_path TEXT,
		source_mtime INTEGER,
		source_size INTEGER,
		extra TEXT,
		updated_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_documents_source_path ON documents(source_path);

	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		content TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id, chunk_index);
	`
	_, err := db.Exec(schema)
	return err
}

// UpsertDocument inserts or replaces a document. The promoted file columns
// come out of doc.Metadata; any remaining keys go into the extra JSON column.
func (s *SQLiteStorage) UpsertDocument(ctx context.Context, doc *models.Document) error {
	sourcePath, mtime, size, extra := splitFileMeta(doc.Metadata)
	var extraJSON interface{}
	if len(extra) > 0 {
		b, err := json.Marshal(extra)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		extraJSON = string(b)
	}

	doc.UpdatedAt = time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, title, content, source_path, source_mtime, source_size, extra, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			source_path = excluded.source_path,
			source_mtime = excluded.source_mtime,
			source_size = excluded.source_size,
			extra = excluded.extra,
			updated_at = excluded.updated_at`,
		doc.ID, doc.Title, doc.Content,
		nullString(sourcePath), nullInt64(mtime), nullInt64(size),
		extraJSON, doc.UpdatedAt,
	)
	return err
}

// GetDocument returns a document by ID with its metadata map reassembled from
// the file columns and the extra JSON.
func (s *SQLiteStorage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	var sourcePath, extraJSON sql.NullString
	var mtime, size sql.NullInt64

	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, content, source_path, source_mtime, source_size, extra, updated_at
		 FROM documents WHERE id = ?`, id,
	).Scan(&doc.ID, &doc.Title, &doc.Content, &sourcePath, &mtime, &size, &extraJSON, &doc.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document not found: %s", id)
	}
	if err != nil {
		return nil, err
	}

	if extraJSON.Valid && extraJSON.String != "" {
		if err := json.Unmarshal([]byte(extraJSON.String), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	if sourcePath.Valid || mtime.Valid || size.Valid {
		if doc.Metadata == nil {
			doc.Metadata = make(map[string]interface{})
		}
		if sourcePath.Valid {
			doc.Metadata[metaSourcePath] = sourcePath.String
		}
		if mtime.Valid {
			doc.Metadata[metaSourceMtime] = mtime.Int64
		}
		if size.Valid {
			doc.Metadata[metaSourceSize] = size.Int64
		}
	}
	return &doc, nil
}

// DeleteDocument removes a document by ID.
func (s *SQLiteStorage) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	return err
}

// BatchCreateChunks inserts chunks in a single transaction.
func (s *SQLiteStorage) BatchCreateChunks(ctx context.Context, chunks []*models.DocumentChunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (id, document_id, content, chunk_index) VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.Content, chunk.ChunkIndex); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetChunk returns a chunk by ID. The semantic path resolves vector hits back
// to their chunk text through this.
func (s *SQLiteStorage) GetChunk(ctx context.Context, id string) (*models.DocumentChunk, error) {
	var chunk models.DocumentChunk
	err := s.db.QueryRowContext(ctx,
		`SELECT id, document_id, content, chunk_index FROM chunks WHERE id = ?`, id,
	).Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content, &chunk.ChunkIndex)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("chunk not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// GetChunksByDocumentID returns all chunks for a document ordered by
// chunk_index.
func (s *SQLiteStorage) GetChunksByDocumentID(ctx context.Context, docID string) ([]*models.DocumentChunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_id, content, chunk_index
		 FROM chunks WHERE document_id = ? ORDER BY chunk_index`,
		docID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*models.DocumentChunk
	for rows.Next() {
		var chunk models.DocumentChunk
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content, &chunk.ChunkIndex); err != nil {
			return nil, err
		}
		chunks = append(chunks, &chunk)
	}
	return chunks, rows.Err()
}

// DeleteChunksByDocumentID removes all chunks for a document.
func (s *SQLiteStorage) DeleteChunksByDocumentID(ctx context.Context, docID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, docID)
	return err
}

// CountDocuments returns the total number of documents.
func (s *SQLiteStorage) CountDocuments(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// CountChunks returns the total number of chunks.
func (s *SQLiteStorage) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// splitFileMeta pulls the promoted file columns out of a metadata map and
// returns whatever is left over.
func splitFileMeta(m map[string]interface{}) (sourcePath string, mtime, size int64, extra map[string]interface{}) {
	for k, v := range m {
		switch k {
		case metaSourcePath:
			sourcePath, _ = v.(string)
		case metaSourceMtime:
			mtime = toInt64(v)
		case metaSourceSize:
			size = toInt64(v)
		default:
			if extra == nil {
				extra = make(map[string]interface{})
			}
			extra[k] = v
		}
	}
	return sourcePath, mtime, size, extra
}

// toInt64 accepts the representations a metadata value can arrive in: int64
// from the indexer, float64 from decoded JSON, string from older callers.
func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case string:
		x, _ := strconv.ParseInt(n, 10, 64)
		return x
	default:
		return 0
	}
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullInt64(n int64) interface{} {
	if n == 0 {
		return nil
	}
	return n
}
