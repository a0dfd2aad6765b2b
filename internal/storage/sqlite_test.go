package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sableworks/findex/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "db.sqlite"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestUpsertDocument_FileMetadataRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.UpsertDocument(ctx, &models.Document{
		ID:      "d1",
		Title:   "report.txt",
		Content: "The quarterly budget was approved.",
		Metadata: map[string]interface{}{
			"source_path":  "/docs/report.txt",
			"source_mtime": int64(1724800000123456789),
			"source_size":  int64(34),
			"department":   "finance",
		},
	})
	if err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}

	got, err := store.GetDocument(ctx, "d1")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got.Title != "report.txt" || got.Content != "The quarterly budget was approved." {
		t.Errorf("document fields: got %q / %q", got.Title, got.Content)
	}
	if got.Metadata["source_path"] != "/docs/report.txt" {
		t.Errorf("source_path: got %v", got.Metadata["source_path"])
	}
	// Nanosecond mtimes exceed float64 precision, so the round trip must
	// come back as int64, not through JSON.
	if mtime, ok := got.Metadata["source_mtime"].(int64); !ok || mtime != 1724800000123456789 {
		t.Errorf("source_mtime: got %v (%T)", got.Metadata["source_mtime"], got.Metadata["source_mtime"])
	}
	if size, ok := got.Metadata["source_size"].(int64); !ok || size != 34 {
		t.Errorf("source_size: got %v (%T)", got.Metadata["source_size"], got.Metadata["source_size"])
	}
	if got.Metadata["department"] != "finance" {
		t.Errorf("extra metadata: got %v", got.Metadata["department"])
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}
}

func TestUpsertDocument_ReindexReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := &models.Document{
		ID:      "d1",
		Title:   "notes.txt",
		Content: "first version",
		Metadata: map[string]interface{}{
			"source_path":  "/docs/notes.txt",
			"source_mtime": int64(100),
			"source_size":  int64(13),
		},
	}
	if err := store.UpsertDocument(ctx, doc); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	doc.Content = "second version"
	doc.Metadata["source_mtime"] = int64(200)
	if err := store.UpsertDocument(ctx, doc); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := store.GetDocument(ctx, "d1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "second version" {
		t.Errorf("content after re-index: got %q", got.Content)
	}
	if mtime, _ := got.Metadata["source_mtime"].(int64); mtime != 200 {
		t.Errorf("mtime after re-index: got %v", got.Metadata["source_mtime"])
	}

	n, err := store.CountDocuments(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("documents after re-index: got %d, want 1", n)
	}
}

func TestUpsertDocument_NoFileMetadata(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.UpsertDocument(ctx, &models.Document{ID: "d1", Content: "api ingest"}); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	got, err := store.GetDocument(ctx, "d1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Metadata != nil {
		t.Errorf("metadata: got %v, want nil", got.Metadata)
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetDocument(context.Background(), "missing")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("err: got %v, want not found", err)
	}
}

func TestDeleteDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_ = store.UpsertDocument(ctx, &models.Document{ID: "d1", Content: "c"})
	if err := store.DeleteDocument(ctx, "d1"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if _, err := store.GetDocument(ctx, "d1"); err == nil {
		t.Error("expected not found after delete")
	}
}

func TestChunkLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_ = store.UpsertDocument(ctx, &models.Document{ID: "d1", Content: "chunked content"})
	chunks := []*models.DocumentChunk{
		{ID: "d1_1", DocumentID: "d1", Content: "part two", ChunkIndex: 1},
		{ID: "d1_0", DocumentID: "d1", Content: "part one", ChunkIndex: 0},
	}
	if err := store.BatchCreateChunks(ctx, chunks); err != nil {
		t.Fatalf("BatchCreateChunks: %v", err)
	}

	list, err := store.GetChunksByDocumentID(ctx, "d1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("chunks: got %d, want 2", len(list))
	}
	if list[0].ChunkIndex != 0 || list[1].ChunkIndex != 1 {
		t.Errorf("chunks out of order: %d, %d", list[0].ChunkIndex, list[1].ChunkIndex)
	}

	got, err := store.GetChunk(ctx, "d1_1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "part two" {
		t.Errorf("chunk content: got %q", got.Content)
	}

	n, _ := store.CountChunks(ctx)
	if n != 2 {
		t.Errorf("chunk count: got %d, want 2", n)
	}

	if err := store.DeleteChunksByDocumentID(ctx, "d1"); err != nil {
		t.Fatal(err)
	}
	list, _ = store.GetChunksByDocumentID(ctx, "d1")
	if len(list) != 0 {
		t.Errorf("chunks after delete: got %d, want 0", len(list))
	}
}

func TestReopenKeepsDocuments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.sqlite")
	ctx := context.Background()

	store, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = store.UpsertDocument(ctx, &models.Document{ID: "d1", Content: "persisted"})
	_ = store.Close()

	reopened, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	got, err := reopened.GetDocument(ctx, "d1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "persisted" {
		t.Errorf("content after reopen: got %q", got.Content)
	}
}
